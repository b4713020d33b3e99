package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"blupr/internal/app"
	"blupr/internal/catalog"
	"blupr/internal/db"
	"blupr/internal/domain"
	"blupr/internal/engine"
	"blupr/internal/render"
	"blupr/internal/repository"
	"blupr/internal/service"
)

var (
	matchResponses string
	matchFromDB    bool
	matchLimit     int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank a set of answers against the demo population or the saved profiles",
	Long: `Scores are given in catalog order, comma separated, 1..5. Use 0 to leave a question unanswered.

Example:
  blupr match --responses 4,5,4,4,2,2,5,4,2,4
  blupr match --responses 4,5,4,4,2,2,5,4,2,4 --db`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchResponses, "responses", "", "comma separated scores in catalog order")
	matchCmd.Flags().BoolVar(&matchFromDB, "db", false, "rank against profiles stored in DATABASE_URL")
	matchCmd.Flags().IntVar(&matchLimit, "limit", 10, "maximum matches to print")
	_ = matchCmd.MarkFlagRequired("responses")
}

func runMatch(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	responses, err := parseResponses(eng.Catalog, matchResponses)
	if err != nil {
		return err
	}

	var report service.MatchReport
	if matchFromDB {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		matcher := service.NewMatchService(logger, eng.Encoder, eng.Classifier, repository.NewPgProfileRepository(pool), cfg.Engine.MatchPoolSize)
		report, err = matcher.Match(ctx, "", responses, matchLimit)
		if err != nil {
			return err
		}
	} else {
		report, err = rankDemo(eng, responses, matchLimit)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if err := printBarcode(out, eng, responses); err != nil {
		return err
	}
	printReport(out, report)
	return nil
}

// parseResponses lee "4,5,0,..." en orden de catálogo. 0 o vacío deja la pregunta sin responder.
func parseResponses(c *catalog.Catalog, raw string) (domain.ResponseSet, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > c.Len() {
		return nil, fmt.Errorf("got %d scores for %d questions", len(parts), c.Len())
	}
	responses := domain.NewResponseSet()
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "0" {
			continue
		}
		score, err := strconv.Atoi(p)
		if err != nil || !domain.ValidScore(score) {
			return nil, fmt.Errorf("%w: position %d has %q", engine.ErrInvalidScore, i+1, p)
		}
		responses = responses.With(c.At(i).ID, score)
	}
	return responses, nil
}

func rankDemo(eng *app.Engine, responses domain.ResponseSet, limit int) (service.MatchReport, error) {
	matches, err := engine.Rank(eng.Encoder.Encode(responses), eng.Candidates(catalog.DemoProfiles()))
	if err != nil {
		return service.MatchReport{}, err
	}
	report := service.MatchReport{
		Matches:        matches,
		Classification: eng.Classifier.Classify(matches),
	}
	if limit > 0 && len(report.Matches) > limit {
		report.Matches = report.Matches[:limit]
	}
	return report, nil
}

func printBarcode(out io.Writer, eng *app.Engine, responses domain.ResponseSet) error {
	bar, err := render.NewTerminal().Render(eng.Encoder.Colorize(responses))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n\n", bar)
	return nil
}

func printReport(out io.Writer, report service.MatchReport) {
	if len(report.Matches) == 0 {
		fmt.Fprintln(out, "No other respondents yet.")
	}
	for i, m := range report.Matches {
		name := m.DisplayName
		if name == "" {
			name = m.Identity
		}
		fmt.Fprintf(out, "%2d. %-20s %6.2f%%\n", i+1, name, m.Similarity)
	}
	c := report.Classification
	fmt.Fprintf(out, "\nClan: %s (top %.2f%%)\n", c.Cohort, c.TopSimilarity)
	if c.Unlocked {
		fmt.Fprintf(out, "Unlocked: %d close match(es)\n", c.UnlockedCount)
	} else {
		fmt.Fprintln(out, "Locked: no match above the unlock threshold yet")
	}
}
