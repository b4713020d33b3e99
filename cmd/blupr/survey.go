package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"blupr/internal/app"
	"blupr/internal/domain"
	"blupr/internal/engine"
)

var errSurveyAborted = errors.New("survey aborted")

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Answer the questionnaire interactively",
	Long: `Shows one statement at a time. Type 1-5 to answer, "n"/"p" to move, "q" to quit.
When the onboarding target is reached the barcode and the closest demo respondents are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		st, err := runSurvey(bufio.NewReader(cmd.InOrStdin()), out, eng)
		if err != nil {
			return err
		}
		if err := printBarcode(out, eng, st.Responses); err != nil {
			return err
		}
		report, err := rankDemo(eng, st.Responses, 0)
		if err != nil {
			return err
		}
		printReport(out, report)
		return nil
	},
}

var (
	traitStyle  = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Faint(true)
	answerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// runSurvey corre el bucle de preguntas hasta alcanzar el objetivo de onboarding.
func runSurvey(reader *bufio.Reader, out io.Writer, eng *app.Engine) (engine.State, error) {
	survey := eng.Survey
	st := engine.NewState()
	for !survey.IsComplete(st) {
		printQuestion(out, survey, st)
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return st, errSurveyAborted
		}
		input := strings.ToLower(strings.TrimSpace(line))

		switch input {
		case "q", "quit", "exit":
			return st, errSurveyAborted
		case "":
			continue
		}
		if dir, ok := engine.ParseDirection(input); ok {
			st = survey.Move(st, dir)
			continue
		}
		if input == "n" {
			st = survey.Move(st, engine.Next)
			continue
		}
		if input == "p" {
			st = survey.Move(st, engine.Previous)
			continue
		}

		score, convErr := strconv.Atoi(input)
		if convErr != nil {
			fmt.Fprintln(out, hintStyle.Render("type 1-5, n, p or q"))
			continue
		}
		next, err := survey.Answer(st, survey.Current(st).ID, score)
		if err != nil {
			fmt.Fprintln(out, hintStyle.Render(err.Error()))
			continue
		}
		st = next
		if q, ok := survey.NextUnanswered(st); ok {
			idx, _ := survey.Catalog().IndexOf(q.ID)
			st.Cursor = idx
		}
	}
	fmt.Fprintf(out, "\nDone: %d/%d answered.\n", st.Responses.Len(), survey.Catalog().Len())
	return st, nil
}

func printQuestion(out io.Writer, survey *engine.Survey, st engine.State) {
	q := survey.Current(st)
	fmt.Fprintf(out, "\n[%d/%d] %s  %s\n", st.Cursor+1, survey.Catalog().Len(),
		traitStyle.Foreground(lipgloss.Color(q.BaseColor.Hex())).Render(q.Trait),
		hintStyle.Render(fmt.Sprintf("%.0f%% complete", survey.Progress(st)*100)))
	fmt.Fprintln(out, q.Text)

	current, answered := st.Responses.Get(q.ID)
	for score := domain.MinScore; score <= domain.MaxScore; score++ {
		label := fmt.Sprintf("  %d. %s", score, domain.AnswerOptions[score])
		if answered && score == current {
			label = answerStyle.Render(label)
		}
		fmt.Fprintln(out, label)
	}
}
