package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/hassaku63/cfn-stack-logs/internal/models"
	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-wordwrap"
)

const (
	// SuccessReason is reported when the latest event is CREATE_COMPLETE
	SuccessReason = "Stack launch was successful"
	// UnknownReason is reported for a failed stack whose latest event has no reason
	UnknownReason = "Unknown"

	// ReasonWidth is the column at which outcome reasons are wrapped
	ReasonWidth = 85

	// TestedOnLayout formats the completion timestamps in reports
	TestedOnLayout = "Monday, 02. January 2006 03:04PM"

	statusCreateComplete = "CREATE_COMPLETE"
	fileRuleWidth        = 77
	consoleRuleWidth     = 90
	columnGap            = "  "
)

// Report holds everything rendered for one stack
type Report struct {
	StackName string
	Region    string
	LogPath   string
	Reason    string
	Events    []models.StackEvent
	TestedOn  time.Time
}

// OutcomeReason derives the outcome from the most recent event, which is the
// first one since the API returns events newest first
func OutcomeReason(events []models.StackEvent) (string, bool) {
	if len(events) == 0 {
		return UnknownReason, false
	}

	latest := events[0]
	if latest.ResourceStatus == statusCreateComplete {
		return SuccessReason, true
	}
	if latest.ResourceStatusReason == "" {
		return UnknownReason, false
	}
	return latest.ResourceStatusReason, false
}

// TextFormatter renders reports as the plain-text log file layout
type TextFormatter struct{}

// Format renders the report block appended to the log file
func (f *TextFormatter) Format(report Report) string {
	dashes := strings.Repeat("-", fileRuleWidth)
	stars := strings.Repeat("*", fileRuleWidth)

	var b strings.Builder
	b.WriteString(dashes + "\n")
	fmt.Fprintf(&b, "Region: %s\n", report.Region)
	fmt.Fprintf(&b, "StackName: %s\n", report.StackName)
	b.WriteString(stars + "\n")
	b.WriteString("ResourceStatusReason:  \n")
	b.WriteString(WrapReason(report.Reason) + "\n")
	b.WriteString(stars + "\n")
	b.WriteString(stars + "\n")
	b.WriteString("Events:  \n")
	b.WriteString(f.FormatTable(report.Events))
	b.WriteString("\n" + stars + "\n")
	b.WriteString(dashes + "\n")
	fmt.Fprintf(&b, "Tested on: %s\n", report.TestedOn.Format(TestedOnLayout))
	b.WriteString(dashes + "\n\n")

	return b.String()
}

// Summary renders the console banner for a report
func (f *TextFormatter) Summary(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "StackName: %s \n", report.StackName)
	fmt.Fprintf(&b, "\t |Region: %s\n", report.Region)
	fmt.Fprintf(&b, "\t |Logging to: %s\n", report.LogPath)
	fmt.Fprintf(&b, "\t |Tested on: %s\n", report.TestedOn.Format(TestedOnLayout))
	b.WriteString(strings.Repeat("-", consoleRuleWidth) + "\n")
	b.WriteString("ResourceStatusReason: \n")
	b.WriteString(WrapReason(report.Reason) + "\n")
	b.WriteString(strings.Repeat("=", consoleRuleWidth) + "\n")

	return b.String()
}

// FormatTable renders events as left-aligned columns under their field names.
// Each column is at least two wider than its header. The last row carries no
// trailing newline.
func (f *TextFormatter) FormatTable(events []models.StackEvent) string {
	widths := make([]int, len(models.EventColumns))
	for i, header := range models.EventColumns {
		widths[i] = runewidth.StringWidth(header) + 2
	}

	rows := make([][]string, 0, len(events))
	for _, event := range events {
		row := event.Row()
		for i, cell := range row {
			row[i] = f.flatten(cell)
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, row)
	}

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}

	lines := []string{
		f.joinRow(models.EventColumns, widths),
		strings.Join(rules, columnGap),
	}
	for _, row := range rows {
		lines = append(lines, f.joinRow(row, widths))
	}

	return strings.Join(lines, "\n")
}

func (f *TextFormatter) joinRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = runewidth.FillRight(cell, widths[i])
	}
	return strings.Join(padded, columnGap)
}

// flatten keeps a table cell on a single line
func (f *TextFormatter) flatten(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// WrapReason collapses whitespace in reason and wraps it at ReasonWidth
// columns. Words wider than ReasonWidth are split across lines.
func WrapReason(reason string) string {
	wrapped := wordwrap.WrapString(strings.Join(strings.Fields(reason), " "), ReasonWidth)

	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		lines = append(lines, splitWide(line, ReasonWidth)...)
	}
	return strings.Join(lines, "\n")
}

// splitWide cuts line into pieces no wider than width columns
func splitWide(line string, width int) []string {
	var pieces []string
	for runewidth.StringWidth(line) > width {
		head := runewidth.Truncate(line, width, "")
		if head == "" {
			break
		}
		pieces = append(pieces, head)
		line = line[len(head):]
	}
	return append(pieces, line)
}
