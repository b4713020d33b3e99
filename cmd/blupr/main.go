package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blupr/internal/app"
	"blupr/internal/config"
)

var (
	catalogPath string
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "blupr",
	Short: "BluPr - belief blueprint survey in the terminal",
	Long: `Answer the BluPr battery, see your color barcode and compare it with other respondents.

Run "blupr survey" to start the interactive questionnaire.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if catalogPath != "" {
			loaded.Engine.CatalogPath = catalogPath
		}
		cfg = loaded

		if verbose {
			logger = zap.NewExample()
		} else {
			logger = zap.NewNop()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a YAML question catalog (defaults to the built-in battery)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(surveyCmd, matchCmd, catalogCmd, seedCmd)
}

func loadEngine() (*app.Engine, error) {
	eng, err := app.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	eng.LogCatalog(logger)
	return eng, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
