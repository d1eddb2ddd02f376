package formatter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	canvasWidth   = 720
	canvasPadding = 32
	headerHeight  = 96
	footerHeight  = 48

	glyphWidth  = 7
	glyphHeight = 13
)

var (
	colorBackground = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	colorCard       = color.RGBA{0xF4, 0xF4, 0xF5, 0xFF}
	colorBorder     = color.RGBA{0xE4, 0xE4, 0xE7, 0xFF}
	colorText       = color.RGBA{0x18, 0x18, 0x1B, 0xFF}
	colorMuted      = color.RGBA{0x71, 0x71, 0x7A, 0xFF}
	colorAccent     = color.RGBA{0x1D, 0xB9, 0x54, 0xFF}
)

// RenderPNG draws list in layout and encodes it as PNG.
func RenderPNG(w io.Writer, list List, layout Layout) error {
	if layout == nil {
		layout = CardLayout
	}

	height := headerHeight + footerHeight + layout.rowHeight()*max(len(list.Items), 1)
	c := newCanvas(canvasWidth, height)

	c.text(canvasPadding, 40, list.Title(), colorText, 2)
	sub := list.Generated.Format(time.DateOnly)
	if list.Owner != "" {
		sub = list.Owner + "  |  " + sub
	}
	c.text(canvasPadding, 70, sub, colorMuted, 1)
	c.fill(image.Rect(canvasPadding, headerHeight-8, canvasWidth-canvasPadding, headerHeight-7), colorBorder)

	y := headerHeight
	if len(list.Items) == 0 {
		c.text(canvasPadding, y+layout.rowHeight()/2, "Nothing to show yet.", colorMuted, 1)
	}
	for _, item := range list.Items {
		layout.drawRow(c, y, item)
		y += layout.rowHeight()
	}

	footer := strings.ToLower(shared.AppName)
	c.text(canvasWidth-canvasPadding-len(footer)*glyphWidth, height-footerHeight/2+4, footer, colorAccent, 1)

	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PNGDataURI renders list as a base64 data URI usable as an href or img src.
func PNGDataURI(list List, layout Layout) (string, error) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, list, layout); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// circle fills a disc centered at (cx, cy).
func (c *canvas) circle(cx, cy, radius int, col color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				c.img.Set(cx+x, cy+y, col)
			}
		}
	}
}

// text draws s with its baseline at y. Scale enlarges the bitmap font by
// nearest neighbor so glyphs stay crisp.
func (c *canvas) text(x, y int, s string, col color.Color, scale int) {
	if s == "" {
		return
	}
	maxRunes := (c.img.Bounds().Dx() - x - canvasPadding) / (glyphWidth * scale)
	s = truncate(s, maxRunes)

	if scale <= 1 {
		d := font.Drawer{
			Dst:  c.img,
			Src:  image.NewUniform(col),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(s)
		return
	}

	n := utf8.RuneCountInString(s)
	glyphs := image.NewRGBA(image.Rect(0, 0, n*glyphWidth, glyphHeight))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, basicfont.Face7x13.Ascent),
	}
	d.DrawString(s)

	top := y - basicfont.Face7x13.Ascent*scale
	dst := image.Rect(x, top, x+n*glyphWidth*scale, top+glyphHeight*scale)
	xdraw.NearestNeighbor.Scale(c.img, dst, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}

func (cardLayout) rowHeight() int { return 84 }

func (cardLayout) drawRow(c *canvas, y int, item models.Item) {
	top, bottom := y+6, y+78
	c.fill(image.Rect(canvasPadding, top, canvasWidth-canvasPadding, bottom), colorBorder)
	c.fill(image.Rect(canvasPadding+1, top+1, canvasWidth-canvasPadding-1, bottom-1), colorCard)

	c.text(canvasPadding+16, y+50, fmt.Sprintf("%d", item.Rank), colorAccent, 2)

	// artwork placeholder: a disc for artists, a square for albums
	ax, ay := canvasPadding+72, y+14
	initial := "?"
	if r, _ := utf8.DecodeRuneInString(item.Title); r != utf8.RuneError {
		initial = strings.ToUpper(string(r))
	}
	if item.Round {
		c.circle(ax+28, ay+28, 28, colorAccent)
	} else {
		c.fill(image.Rect(ax, ay, ax+56, ay+56), colorAccent)
	}
	c.text(ax+21, ay+37, initial, colorBackground, 2)

	tx := ax + 72
	c.text(tx, y+30, item.Title, colorText, 1)
	c.text(tx, y+48, item.Subtitle, colorMuted, 1)
	c.text(tx, y+66, item.Detail, colorMuted, 1)
}

func (simpleLayout) rowHeight() int { return 28 }

func (simpleLayout) drawRow(c *canvas, y int, item models.Item) {
	rank := fmt.Sprintf("%2d.", item.Rank)
	c.text(canvasPadding, y+19, rank, colorAccent, 1)

	tx := canvasPadding + (len(rank)+1)*glyphWidth
	title := truncate(item.Title, 40)
	c.text(tx, y+19, title, colorText, 1)
	c.text(tx+(utf8.RuneCountInString(title)+2)*glyphWidth, y+19, item.Subtitle, colorMuted, 1)
	c.fill(image.Rect(canvasPadding, y+27, canvasWidth-canvasPadding, y+28), colorBorder)
}
