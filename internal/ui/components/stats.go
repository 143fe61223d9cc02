package components

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/emoji"
)

// Card accent colors
var (
	Blue   = lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#2196F3"}
	Orange = lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FF9800"}
	Green  = lipgloss.AdaptiveColor{Light: "#388E3C", Dark: "#4CAF50"}
	Purple = lipgloss.AdaptiveColor{Light: "#7B1FA2", Dark: "#9C27B0"}

	mutedColor = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// StatsCard is a bordered box showing one counter
type StatsCard struct {
	Title  string
	Value  string
	Icon   string
	Accent lipgloss.AdaptiveColor
	Width  int
	Height int
}

// NewStatsCard creates a card with the default size
func NewStatsCard(title, value string, accent lipgloss.AdaptiveColor) *StatsCard {
	return &StatsCard{
		Title:  title,
		Value:  value,
		Accent: accent,
		Width:  28,
		Height: 3,
	}
}

// SetIcon sets the icon shown above the value
func (s *StatsCard) SetIcon(icon string) *StatsCard {
	s.Icon = icon
	return s
}

// SetSize sets the size of the card
func (s *StatsCard) SetSize(width, height int) *StatsCard {
	s.Width = width
	s.Height = height
	return s
}

// Render renders the card
func (s *StatsCard) Render() string {
	valueStyle := lipgloss.NewStyle().Foreground(s.Accent).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Accent).
		Padding(0, 1).
		Align(lipgloss.Center)

	value := valueStyle.Render(s.Value)
	if s.Icon != "" {
		value = s.Icon + " " + value
	}

	content := lipgloss.JoinVertical(lipgloss.Center, value, titleStyle.Render(s.Title))

	return boxStyle.Width(s.Width).Height(s.Height).Render(content)
}

// StatsDashboard lays cards out in rows
type StatsDashboard struct {
	cards      []*StatsCard
	columns    int
	cardWidth  int
	cardHeight int
}

// NewStatsDashboard creates a dashboard with the given number of columns
func NewStatsDashboard(columns int) *StatsDashboard {
	if columns < 1 {
		columns = 1
	}
	return &StatsDashboard{
		columns:    columns,
		cardWidth:  28,
		cardHeight: 3,
	}
}

// AddCard adds a card, resizing it to the dashboard's card size
func (d *StatsDashboard) AddCard(card *StatsCard) {
	card.SetSize(d.cardWidth, d.cardHeight)
	d.cards = append(d.cards, card)
}

// Cards returns the cards in display order
func (d *StatsDashboard) Cards() []*StatsCard {
	return d.cards
}

// SetColumns changes how many cards share a row
func (d *StatsDashboard) SetColumns(columns int) {
	if columns >= 1 {
		d.columns = columns
	}
}

// Render renders the dashboard
func (d *StatsDashboard) Render() string {
	if len(d.cards) == 0 {
		return ""
	}

	var rows []string
	for i := 0; i < len(d.cards); i += d.columns {
		end := min(i+d.columns, len(d.cards))

		rowCards := make([]string, 0, end-i)
		for _, card := range d.cards[i:end] {
			rowCards = append(rowCards, card.Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// NewSummaryCards builds the four summary counters in their fixed order
func NewSummaryCards(summary analysis.SummaryStats) *StatsDashboard {
	dashboard := NewStatsDashboard(4)

	dashboard.AddCard(NewStatsCard("Total Active Users", formatNumber(summary.TotalActiveUsers), Blue).
		SetIcon(emoji.GetEmoji("users")))
	dashboard.AddCard(NewStatsCard("New Users (Last 7 Days)", formatNumber(summary.TotalNewUsers), Orange).
		SetIcon(emoji.GetEmoji("new_user")))
	dashboard.AddCard(NewStatsCard("Avg Daily Active Users", formatAverage(summary.AvgDailyActiveUsers), Green).
		SetIcon(emoji.GetEmoji("statistics")))
	dashboard.AddCard(NewStatsCard("Users Active 4+ Days", formatNumber(summary.ActiveUsersFourPlusDaysCount), Purple).
		SetIcon(emoji.GetEmoji("star")))

	return dashboard
}

// formatNumber formats large numbers with commas
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// formatAverage rounds to two decimals and drops trailing zeros
func formatAverage(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// SummaryBox is a titled box of key/value lines
type SummaryBox struct {
	Title   string
	Content []string
	Width   int
}

// NewSummaryBox creates a new summary box
func NewSummaryBox(title string, width int) *SummaryBox {
	return &SummaryBox{
		Title: title,
		Width: width,
	}
}

// AddKeyValue adds a key-value pair to the summary
func (s *SummaryBox) AddKeyValue(key, value string) {
	s.Content = append(s.Content, key+": "+value)
}

// Render renders the summary box
func (s *SummaryBox) Render() string {
	headerStyle := lipgloss.NewStyle().Foreground(Blue).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1)

	content := make([]string, 0, len(s.Content)+1)
	content = append(content, headerStyle.Render(s.Title))
	for _, line := range s.Content {
		content = append(content, bodyStyle.Render(line))
	}

	return boxStyle.Width(s.Width).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}
