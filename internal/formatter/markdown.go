package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	now func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{now: time.Now}
}

func (f *markdownFormatter) Format(result analysis.Succeeded) ([]byte, error) {
	if result.Analytics == nil {
		return nil, fmt.Errorf("no analytics to format")
	}

	var b strings.Builder

	b.WriteString("# Chat Activity Report\n\n")
	if result.FileName != "" {
		fmt.Fprintf(&b, "File: `%s`\n\n", result.FileName)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	f.writeSummaryTable(&b, result)
	f.writeDailyTable(&b, result.Analytics.DailyData)
	f.writeActiveUsers(&b, result.Analytics.ActiveUsers)

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, result analysis.Succeeded) {
	s := result.Analytics.Summary

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Total Active Users | %s |\n", formatNumber(s.TotalActiveUsers))
	fmt.Fprintf(b, "| New Users | %s |\n", formatNumber(s.TotalNewUsers))
	fmt.Fprintf(b, "| Avg Daily Active Users | %.2f |\n", s.AvgDailyActiveUsers)
	fmt.Fprintf(b, "| Users Active 4+ Days | %s |\n", formatNumber(s.ActiveUsersFourPlusDaysCount))
	if result.TotalMessages > 0 {
		fmt.Fprintf(b, "| Messages Parsed | %s |\n", formatNumber(result.TotalMessages))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeDailyTable(b *strings.Builder, days []analysis.DayActivity) {
	b.WriteString("## Daily Activity\n\n")
	if len(days) == 0 {
		b.WriteString("_No activity in the window._\n\n")
		return
	}

	b.WriteString("| Date | Day | Active Users | New Users |\n")
	b.WriteString("|------|-----|--------------|-----------|\n")
	for _, day := range days {
		fmt.Fprintf(b, "| %s | %s | %d | %d |\n", day.Date, weekday(day.Date), day.ActiveUsers, day.NewUsers)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeActiveUsers(b *strings.Builder, users []string) {
	b.WriteString("## Users Active 4+ Days\n\n")
	if len(users) == 0 {
		b.WriteString("_None._\n")
		return
	}
	for _, user := range users {
		fmt.Fprintf(b, "- %s\n", escapeMarkdown(user))
	}
}

// escapeMarkdown keeps user names from being read as formatting
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`, "[", `\[`, "]", `\]`,
	)
	return replacer.Replace(s)
}
