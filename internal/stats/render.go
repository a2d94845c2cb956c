package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	defaultRenderWidth = 80
	defaultCurveWindow = 5
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// RenderOptions controls text rendering of a report.
type RenderOptions struct {
	Top         int
	Width       int
	CurveWindow int
	Color       bool
}

// Render writes a profile and progress overview of r as plain-text tables.
func Render(w io.Writer, r Report, opts RenderOptions) error {
	if opts.Width <= 0 {
		opts.Width = defaultRenderWidth
	}
	if opts.CurveWindow <= 0 {
		opts.CurveWindow = defaultCurveWindow
	}
	heading := func(s string) string {
		if opts.Color {
			return headingStyle.Render(s)
		}
		return s
	}
	muted := func(s string) string {
		if opts.Color {
			return mutedStyle.Render(s)
		}
		return s
	}

	var lines []string
	if len(r.Sessions) == 0 {
		lines = append(lines, muted("No completed sessions yet."))
		return writeLines(w, lines)
	}

	profile := r.Profile(opts.Top)
	progress := BuildProgress(r.Sessions, 0)
	lines = append(lines,
		heading(fmt.Sprintf("Profile (%d sessions)", profile.SessionsAnalyzed)),
		fmt.Sprintf("Avg WPM       %.2f", profile.AvgWPM),
		fmt.Sprintf("Avg accuracy  %.2f%%", profile.AvgAccuracy),
		fmt.Sprintf("Practice time %s", formatSeconds(progress.TotalPracticeTime)),
		fmt.Sprintf("Trend         %s", progress.ImprovementTrend),
	)

	wpms := make([]float64, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		wpms = append(wpms, s.WordsPerMinute)
	}
	spark := Sparkline(MovingAverage(wpms, opts.CurveWindow))
	label := "WPM curve     "
	lines = append(lines, label+runewidth.Truncate(spark, max(opts.Width-len(label), 1), ""), "")

	if len(profile.SlowCharacters) > 0 {
		rows := make([][]string, 0, len(profile.SlowCharacters))
		for _, c := range profile.SlowCharacters {
			rows = append(rows, []string{
				displayChar(c.Char),
				fmt.Sprintf("%.1f", c.AvgDwellTime),
				strconv.Itoa(c.ErrorCount),
				fmt.Sprintf("%.1f", c.DifficultyScore),
			})
		}
		lines = append(lines, heading("Slow characters"))
		lines = append(lines, formatTable([]string{"Char", "Dwell ms", "Errors", "Score"}, rows, 1, 2, 3)...)
		lines = append(lines, "")
	}

	if len(profile.DifficultBigrams) > 0 {
		rows := make([][]string, 0, len(profile.DifficultBigrams))
		for _, b := range profile.DifficultBigrams {
			rows = append(rows, []string{
				displayChar(b.Bigram),
				fmt.Sprintf("%.1f", b.AvgFlightTime),
				strconv.FormatInt(b.Count, 10),
				fmt.Sprintf("%.1f", b.DifficultyScore),
			})
		}
		lines = append(lines, heading("Difficult bigrams"))
		lines = append(lines, formatTable([]string{"Bigram", "Flight ms", "Count", "Score"}, rows, 1, 2, 3)...)
		lines = append(lines, "")
	}

	if len(profile.CommonErrors) > 0 {
		rows := make([][]string, 0, len(profile.CommonErrors))
		for _, e := range profile.CommonErrors {
			rows = append(rows, []string{e.Kind, strconv.Itoa(e.Count)})
		}
		lines = append(lines, heading("Common errors"))
		lines = append(lines, formatTable([]string{"Kind", "Count"}, rows, 1)...)
		lines = append(lines, "")
	}

	if typed := MostTypedChars(r.Chars, opts.Top); len(typed) > 0 {
		lines = append(lines, muted("Most typed: "+strings.Join(typed, " ")))
	}
	return writeLines(w, lines)
}

func formatSeconds(secs float64) string {
	total := int(secs + 0.5)
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
