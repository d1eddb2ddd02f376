package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/desertthunder/soundslate/internal/formatter"
	"github.com/desertthunder/soundslate/internal/models"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeHeight is the space taken by the header, filters, status and help lines.
	chromeHeight = 8
)

// listPane scrolls the rendered rows of the active list.
type listPane struct {
	vp     viewport.Model
	items  []models.Item
	layout formatter.Layout
}

func newListPane() listPane {
	return listPane{
		vp:     viewport.New(defaultWidth, defaultHeight-chromeHeight),
		layout: formatter.CardLayout,
	}
}

func (p *listPane) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = max(height-chromeHeight, 3)
	p.render()
}

func (p *listPane) set(items []models.Item) {
	p.items = items
	p.render()
	p.vp.GotoTop()
}

func (p *listPane) setLayout(kind models.Layout) {
	p.layout = formatter.LayoutFor(kind)
	p.render()
}

func (p *listPane) render() {
	p.vp.SetContent(p.layout.Text(p.items, p.vp.Width))
}
