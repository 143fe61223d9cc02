package components

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// User grid texts
const (
	UserGridTitle       = "Most Active Users"
	UserGridDescription = "Users who were active on at least 4 different days in the last 7 days:"
	UserGridEmpty       = "No users were active on 4 or more days in the last 7 days."
	ActiveBadge         = "Active 4+ Days"
)

// UserGrid renders the highly active users as small cards, in the order given
type UserGrid struct {
	Users   []string
	Columns int
}

// NewUserGrid creates a grid with the given number of columns
func NewUserGrid(users []string, columns int) *UserGrid {
	if columns < 1 {
		columns = 1
	}
	return &UserGrid{Users: users, Columns: columns}
}

// Render renders the heading plus either the cards or the empty notice
func (g *UserGrid) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(Purple).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	if len(g.Users) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(UserGridTitle),
			mutedStyle.Italic(true).Render(UserGridEmpty),
		)
	}

	var rows []string
	for i := 0; i < len(g.Users); i += g.Columns {
		end := min(i+g.Columns, len(g.Users))
		cards := make([]string, 0, end-i)
		for _, name := range g.Users[i:end] {
			cards = append(cards, renderUserCard(name))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(UserGridTitle),
		mutedStyle.Render(UserGridDescription),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderUserCard(name string) string {
	avatarStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Purple).
		Bold(true).
		Padding(0, 1)
	badgeStyle := lipgloss.NewStyle().Foreground(Green)

	header := avatarStyle.Render(Initial(name)) + " " + lipgloss.NewStyle().Bold(true).Render(name)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1).
		Render(header + "\n" + badgeStyle.Render(ActiveBadge))
}

// Initial returns the upper-cased first letter of a display name, "?" for a blank one
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}
