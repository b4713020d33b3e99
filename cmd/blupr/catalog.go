package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the questions of the active catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, q := range eng.Catalog.Questions() {
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(q.BaseColor.Hex())).Render("  ")
			fmt.Fprintf(out, "%s %2d  %-22s %-6s %s\n", swatch, q.ID, q.Trait, q.Intensity, q.Text)
		}
		fmt.Fprintf(out, "\n%d questions, onboarding target %d\n", eng.Catalog.Len(), eng.Survey.Target())
		return nil
	},
}
