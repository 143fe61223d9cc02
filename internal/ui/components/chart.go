package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/ChatLens/internal/analysis"
)

// ActivityChartTitle heads the daily chart
const ActivityChartTitle = "Daily User Activity (Last 7 Days)"

// ActivityChart draws one pair of horizontal bars per day: active users
// over new users, both scaled to the busiest value in the window.
type ActivityChart struct {
	Title    string
	Days     []analysis.DayActivity
	BarWidth int
}

// NewActivityChart creates a chart for the given days. barWidth is the
// length of the longest bar.
func NewActivityChart(days []analysis.DayActivity, barWidth int) *ActivityChart {
	if barWidth < 1 {
		barWidth = 1
	}
	return &ActivityChart{
		Title:    ActivityChartTitle,
		Days:     days,
		BarWidth: barWidth,
	}
}

// Render returns the chart, or "" when there is no daily data
func (c *ActivityChart) Render() string {
	if len(c.Days) == 0 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(Blue).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(mutedColor)
	activeStyle := lipgloss.NewStyle().Foreground(Blue)
	newStyle := lipgloss.NewStyle().Foreground(Orange)

	result := &analysis.Result{DailyData: c.Days}
	maxValue := result.MaxDailyValue()

	lines := []string{
		titleStyle.Render(c.Title),
		activeStyle.Render("█") + " Active Users  " + newStyle.Render("█") + " New Users",
		"",
	}

	for _, day := range c.Days {
		label := fmt.Sprintf("%-6s", DayLabel(day.Date))
		lines = append(lines,
			labelStyle.Render(label)+" "+activeStyle.Render(c.bar(day.ActiveUsers, maxValue))+fmt.Sprintf(" %d", day.ActiveUsers),
			strings.Repeat(" ", len(label))+" "+newStyle.Render(c.bar(day.NewUsers, maxValue))+fmt.Sprintf(" %d", day.NewUsers),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// bar scales value against maxValue. Non-zero values always get at least one cell.
func (c *ActivityChart) bar(value, maxValue int) string {
	if value <= 0 || maxValue <= 0 {
		return ""
	}
	cells := value * c.BarWidth / maxValue
	if cells < 1 {
		cells = 1
	}
	return strings.Repeat("█", cells)
}

// DayLabel formats a date as a short axis label such as "Mar 4"
func DayLabel(d analysis.Date) string {
	return d.Time().Format("Jan 2")
}

// SparklineChart is a one-line trend of integer values
type SparklineChart struct {
	Values []int
	Max    int
}

// NewSparklineChart creates a sparkline scaled from zero to the largest value
func NewSparklineChart(values []int) *SparklineChart {
	maxVal := 0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	return &SparklineChart{Values: values, Max: maxVal}
}

// Render renders the sparkline
func (s *SparklineChart) Render() string {
	if len(s.Values) == 0 {
		return ""
	}

	chars := []rune("▁▂▃▄▅▆▇█")

	var result strings.Builder
	for _, value := range s.Values {
		index := 0
		if s.Max > 0 && value > 0 {
			index = value * (len(chars) - 1) / s.Max
		}
		result.WriteRune(chars[index])
	}
	return result.String()
}

// ActiveTrend is the sparkline of daily active users
func ActiveTrend(days []analysis.DayActivity) *SparklineChart {
	values := make([]int, len(days))
	for i, day := range days {
		values[i] = day.ActiveUsers
	}
	return NewSparklineChart(values)
}
