package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/soundslate/internal/models"
)

// Layout draws a list of items in one visual style. Each layout renders to
// an HTML template block, terminal text and a PNG row. The set is closed:
// [CardLayout] and [SimpleLayout] are the only implementations.
type Layout interface {
	Kind() models.Layout
	// Block names the HTML template that renders a []models.Item.
	Block() string
	// Text renders items for a terminal of the given width.
	Text(items []models.Item, width int) string

	rowHeight() int
	drawRow(c *canvas, y int, item models.Item)
}

var (
	CardLayout   Layout = cardLayout{}
	SimpleLayout Layout = simpleLayout{}
)

// LayoutFor returns the layout for kind, defaulting to [CardLayout].
func LayoutFor(kind models.Layout) Layout {
	if kind == models.SimpleLayout {
		return SimpleLayout
	}
	return CardLayout
}

// Layouts returns every layout in display order.
func Layouts() []Layout {
	return []Layout{CardLayout, SimpleLayout}
}

var (
	accent    = lipgloss.AdaptiveColor{Light: "#1AA34A", Dark: "#1DB954"}
	muted     = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#A7A7A7"}
	rankStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	nameStyle = lipgloss.NewStyle().Bold(true)
	subStyle  = lipgloss.NewStyle().Foreground(muted)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

type cardLayout struct{}

func (cardLayout) Kind() models.Layout { return models.CardLayout }
func (cardLayout) Block() string       { return "list-card" }

func (cardLayout) Text(items []models.Item, width int) string {
	inner := max(width-4, 20)
	cards := make([]string, 0, len(items))
	for _, it := range items {
		rank := rankStyle.Width(4).Render(fmt.Sprintf("#%d", it.Rank))
		lines := []string{nameStyle.Render(truncate(it.Title, inner-5)), subStyle.Render(truncate(it.Subtitle, inner-5))}
		if it.Detail != "" {
			lines = append(lines, subStyle.Render(truncate(it.Detail, inner-5)))
		}
		body := lipgloss.JoinHorizontal(lipgloss.Top, rank, lipgloss.JoinVertical(lipgloss.Left, lines...))
		cards = append(cards, cardStyle.Width(inner).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

type simpleLayout struct{}

func (simpleLayout) Kind() models.Layout { return models.SimpleLayout }
func (simpleLayout) Block() string       { return "list-simple" }

func (simpleLayout) Text(items []models.Item, width int) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		title := truncate(it.Title, max(width/2, 16))
		fmt.Fprintf(&b, "%s %s  %s",
			rankStyle.Render(fmt.Sprintf("%2d.", it.Rank)),
			nameStyle.Render(title),
			subStyle.Render(truncate(it.Subtitle, max(width-len(title)-6, 10))),
		)
	}
	return b.String()
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
