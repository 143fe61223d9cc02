package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter
func NewTerminal(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(result analysis.Succeeded) ([]byte, error) {
	if result.Analytics == nil {
		return nil, fmt.Errorf("no analytics to format")
	}

	var b strings.Builder

	f.writeHeader(&b, result)
	f.writeSummary(&b, result)
	f.writeDailyActivity(&b, result.Analytics)
	f.writeActiveUsers(&b, result.Analytics.ActiveUsers)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, result analysis.Succeeded) {
	header := "Chat Activity Summary"
	b.WriteString("╔" + strings.Repeat("═", len(header)+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", len(header)+2) + "╝\n")

	if result.FileName != "" {
		fmt.Fprintf(b, "%s %s\n", termfmt.GetEmoji("info", f.opts), result.FileName)
	}
	b.WriteString("\n")
}

// writeSummary writes the four headline counters as a tree
func (f *terminalFormatter) writeSummary(b *strings.Builder, result analysis.Succeeded) {
	s := result.Analytics.Summary
	b.WriteString(termfmt.GetEmoji("summary", f.opts) + " Summary (last 7 days)\n")

	items := []termfmt.TreeItem{
		{Label: "Total Active Users", Value: formatNumber(s.TotalActiveUsers)},
		{Label: "New Users", Value: formatNumber(s.TotalNewUsers)},
		{Label: "Avg Daily Active", Value: fmt.Sprintf("%.2f", s.AvgDailyActiveUsers)},
		{Label: "Active 4+ Days", Value: formatNumber(s.ActiveUsersFourPlusDaysCount)},
	}
	if result.TotalMessages > 0 {
		items = append(items, termfmt.TreeItem{Label: "Messages Parsed", Value: formatNumber(result.TotalMessages)})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeDailyActivity draws one bar per day scaled to the busiest day
func (f *terminalFormatter) writeDailyActivity(b *strings.Builder, result *analysis.Result) {
	b.WriteString(termfmt.GetEmoji("statistics", f.opts) + " Daily Activity\n")

	if len(result.DailyData) == 0 {
		b.WriteString("└─ no activity in the window\n\n")
		return
	}

	maxValue := result.MaxDailyValue()
	for i, day := range result.DailyData {
		ratio := 0.0
		if maxValue > 0 {
			ratio = float64(day.ActiveUsers) / float64(maxValue)
		}
		branch := "├─"
		if i == len(result.DailyData)-1 {
			branch = "└─"
		}
		fmt.Fprintf(b, "%s %s %s %s active %3d  new %3d\n",
			branch, day.Date, weekday(day.Date),
			termfmt.CreateConfidenceBar(ratio, f.opts), day.ActiveUsers, day.NewUsers)
	}
	b.WriteString("\n")
}

// writeActiveUsers lists users active on four or more days, in server order
func (f *terminalFormatter) writeActiveUsers(b *strings.Builder, users []string) {
	fmt.Fprintf(b, "%s Users Active 4+ Days (%d)\n", termfmt.GetEmoji("insights", f.opts), len(users))

	if len(users) == 0 {
		b.WriteString("└─ none\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(users))
	for i, user := range users {
		items = append(items, termfmt.TreeItem{Label: user, Last: i == len(users)-1})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
