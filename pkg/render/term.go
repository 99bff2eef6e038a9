package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
)

// TermRowHeight is the number of screen units covered by one terminal row.
// Terminal cells are roughly twice as tall as they are wide.
const TermRowHeight = 2.0

type cell struct {
	r    rune
	fg   string
	bg   string
	bold bool
}

// TermCanvas rasterizes onto a grid of terminal cells. One column is one
// screen unit wide and one row is TermRowHeight units tall.
type TermCanvas struct {
	cols, rows int
	cells      []cell
}

// NewTermCanvas creates a blank cols×rows grid.
func NewTermCanvas(cols, rows int) *TermCanvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &TermCanvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// Size returns the grid size in cells.
func (c *TermCanvas) Size() (cols, rows int) { return c.cols, c.rows }

// Screen returns the grid's extent in screen units.
func (c *TermCanvas) Screen() geom.Rect {
	return geom.Rect{W: float64(c.cols), H: float64(c.rows) * TermRowHeight}
}

func (c *TermCanvas) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return nil
	}
	return &c.cells[row*c.cols+col]
}

func toCol(x float64) int { return int(math.Round(x)) }
func toRow(y float64) int { return int(math.Round(y / TermRowHeight)) }

func (c *TermCanvas) set(col, row int, r rune, fg string) {
	if cl := c.at(col, row); cl != nil {
		cl.r = r
		if fg != "" {
			cl.fg = fg
		}
	}
}

func (c *TermCanvas) Rect(r geom.Rect, radius float64, fill, stroke string, strokeWidth float64) {
	c0, c1 := toCol(r.X), toCol(r.Right())-1
	r0, r1 := toRow(r.Y), toRow(r.Bottom())-1
	if c1 < c0 || r1 < r0 {
		return
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if cl := c.at(col, row); cl != nil {
				cl.r, cl.fg, cl.bold = ' ', "", false
				cl.bg = fill
			}
		}
	}
	if stroke == "" || strokeWidth <= 0 || c1 == c0 || r1 == r0 {
		return
	}

	h, v := '─', '│'
	tl, tr, bl, br := '╭', '╮', '╰', '╯'
	if radius <= 0 {
		tl, tr, bl, br = '┌', '┐', '└', '┘'
	}
	if strokeWidth >= 2 {
		h, v = '━', '┃'
		tl, tr, bl, br = '┏', '┓', '┗', '┛'
	}
	for col := c0 + 1; col < c1; col++ {
		c.set(col, r0, h, stroke)
		c.set(col, r1, h, stroke)
	}
	for row := r0 + 1; row < r1; row++ {
		c.set(c0, row, v, stroke)
		c.set(c1, row, v, stroke)
	}
	c.set(c0, r0, tl, stroke)
	c.set(c1, r0, tr, stroke)
	c.set(c0, r1, bl, stroke)
	c.set(c1, r1, br, stroke)
}

func (c *TermCanvas) Circle(p geom.Point, radius float64, fill, stroke string) {
	if cl := c.at(toCol(p.X), toRow(p.Y)); cl != nil {
		cl.r, cl.fg = '●', fill
	}
}

func (c *TermCanvas) Text(p geom.Point, s string, size float64, color string, bold bool) {
	runes := []rune(s)
	if len(runes) == 0 {
		return
	}
	// Drop text that would not be legible at this zoom level.
	if limit := int(TextWidth(s, size)); limit < len(runes) {
		if limit < 1 {
			return
		}
		runes = []rune(Truncate(s, float64(limit)*size*charWidthRatio, size))
	}
	row := toRow(p.Y)
	start := toCol(p.X - float64(len(runes))/2)
	for i, r := range runes {
		if cl := c.at(start+i, row); cl != nil {
			cl.r, cl.fg, cl.bold = r, color, bold
		}
	}
}

// Image is not supported by terminals; callers fall back to a placeholder.
func (c *TermCanvas) Image(geom.Rect, string) error {
	return errors.New(errors.ErrCodeUnsupported, "terminal canvas cannot draw images")
}

func (c *TermCanvas) Polyline(pts []geom.Point, stroke string, width float64) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		ac, ar, bc, br := toCol(a.X), toRow(a.Y), toCol(b.X), toRow(b.Y)
		switch {
		case ar == br:
			for col := min(ac, bc); col <= max(ac, bc); col++ {
				c.line(col, ar, '─', stroke)
			}
		case ac == bc:
			for row := min(ar, br); row <= max(ar, br); row++ {
				c.line(ac, row, '│', stroke)
			}
		default:
			c.set(bc, br, '·', stroke)
		}
	}
}

// line draws a connector cell, joining with an existing crossing line.
func (c *TermCanvas) line(col, row int, r rune, fg string) {
	cl := c.at(col, row)
	if cl == nil {
		return
	}
	if (cl.r == '─' && r == '│') || (cl.r == '│' && r == '─') || cl.r == '┼' {
		r = '┼'
	}
	cl.r = r
	cl.fg = fg
}

// Plain returns the grid as text without styling.
func (c *TermCanvas) Plain() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			sb.WriteRune(c.cells[row*c.cols+col].r)
		}
		if row < c.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// String renders the grid with lipgloss styles, one style per run of equally
// styled cells.
func (c *TermCanvas) String() string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		var sb strings.Builder
		cells := c.cells[row*c.cols : (row+1)*c.cols]
		for start := 0; start < len(cells); {
			end := start + 1
			for end < len(cells) && sameStyle(cells[end], cells[start]) {
				end++
			}
			run := make([]rune, 0, end-start)
			for _, cl := range cells[start:end] {
				run = append(run, cl.r)
			}
			sb.WriteString(cellStyle(cells[start]).Render(string(run)))
			start = end
		}
		lines[row] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b cell) bool { return a.fg == b.fg && a.bg == b.bg && a.bold == b.bold }

func cellStyle(cl cell) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(cl.bold)
	if cl.fg != "" {
		s = s.Foreground(lipgloss.Color(cl.fg))
	}
	if cl.bg != "" {
		s = s.Background(lipgloss.Color(cl.bg))
	}
	return s
}
