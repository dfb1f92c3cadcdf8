package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key-value line in a result box
type Detail struct {
	Key   string
	Value string
}

// Result is the summary a one-shot command prints when it finishes
type Result struct {
	Type            ResultType // Success, failure, or warning
	Title           string     // e.g., "Export complete"
	Details         []Detail   // Key-value details, in display order
	Error           error      // Error (for failure results)
	Troubleshooting []string   // Troubleshooting tips (for failure results)
	Width           int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

func (r *Result) marker() (string, string, lipgloss.Style, lipgloss.Color) {
	switch r.Type {
	case ResultFailure:
		return FailureMarker, "FAILED", ErrorTitleStyle, ErrorColor
	case ResultWarning:
		return WarningMarker, "WARNING", WarningTitleStyle, WarningColor
	default:
		return SuccessMarker, "SUCCESS", SuccessTitleStyle, SuccessColor
	}
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	mark, label, titleStyle, border := r.marker()

	lines := []string{
		"",
		titleStyle.Render(fmt.Sprintf("   %s  %s  ─  %s", mark, label, r.Title)),
		"",
	}

	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	} else if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// Plain returns the result as unstyled text for pipes and log files
func (r *Result) Plain() string {
	mark, label, _, _ := r.marker()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", mark, label, r.Title)
	for _, d := range r.Details {
		fmt.Fprintf(&b, "  %s: %s\n", d.Key, d.Value)
	}
	if r.Error != nil {
		fmt.Fprintf(&b, "  Error: %v\n", r.Error)
	}
	if len(r.Troubleshooting) > 0 {
		b.WriteString("  Troubleshooting:\n")
		for _, tip := range r.Troubleshooting {
			fmt.Fprintf(&b, "    - %s\n", tip)
		}
	}
	return b.String()
}

// renderTroubleshootingBox renders the inner troubleshooting box
func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12 // Indent within outer box
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// Fprint writes the boxed form to a terminal and the plain form otherwise
func (r *Result) Fprint(w io.Writer) {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		fmt.Fprintln(w, r.Render())
		return
	}
	fmt.Fprint(w, r.Plain())
}

// TipsFromHint splits a multi-line hint into its first line and the
// bulleted tips that follow a "Troubleshooting:" line.
func TipsFromHint(hint string) (summary string, tips []string) {
	for i, line := range strings.Split(hint, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case i == 0:
			summary = trimmed
		case strings.HasPrefix(trimmed, "•"):
			tips = append(tips, strings.TrimSpace(strings.TrimPrefix(trimmed, "•")))
		}
	}
	return summary, tips
}
