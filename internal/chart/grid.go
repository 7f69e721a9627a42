package chart

import (
	"slices"

	"gantry/internal/render"
	"gantry/internal/scale"
)

const (
	todayMinWidth     = 10
	rowHandleHeight   = 6
	rowHandleHalfSpan = rowHandleHeight / 2
)

// grid is the chart background: row bands, column ticks, the today band
// and the date header.
type grid struct {
	chart *Chart

	background render.ID
	rows       []render.ID
	lines      []render.ID
	handles    []render.ID
	ticks      []render.ID
	tickXs     []float64
	today      render.ID

	heights []float64
}

func newGrid(c *Chart) *grid {
	return &grid{chart: c}
}

func (g *grid) render() {
	g.renderBackground()
	g.renderRows()
	g.renderHeader()
	g.renderTicks()
	g.renderToday()
	g.renderDates()
}

func (g *grid) renderBackground() {
	c := g.chart
	g.background = c.backend.Create(c.layers.grid, render.Primitive{
		Kind: render.KindRect, Class: []string{"grid-background"},
		Width: c.settings.TableWidth, Height: c.settings.TableHeight(),
	})
}

func (g *grid) renderRows() {
	c := g.chart
	s := c.settings
	rows := c.backend.Create(c.layers.grid, render.Primitive{Kind: render.KindGroup})
	lines := c.backend.Create(c.layers.grid, render.Primitive{Kind: render.KindGroup})
	asGrid := target{kind: targetGrid}
	for i := range s.RowHeights {
		id := c.backend.Create(rows, render.Primitive{
			Kind: render.KindRect, Class: []string{"grid-row"}, Width: s.RowWidth, Interactive: true,
		})
		g.rows = append(g.rows, c.register(id, asGrid))
		g.lines = append(g.lines, c.backend.Create(lines, render.Primitive{Kind: render.KindLine, Class: []string{"row-line"}}))
		if c.opts.ResizeRows {
			h := c.backend.Create(c.layers.handle, render.Primitive{
				Kind: render.KindRect, Class: []string{"row-resize-handle"}, Width: s.RowWidth, Interactive: true,
			})
			g.handles = append(g.handles, c.register(h, target{kind: targetRowHandle, index: i}))
		}
	}
	g.updatePositions(0)
}

func (g *grid) renderHeader() {
	c := g.chart
	c.backend.Create(c.layers.date, render.Primitive{
		Kind: render.KindRect, Class: []string{"grid-header"},
		Width: c.settings.RowWidth, Height: c.settings.HeaderHeight,
	})
}

func (g *grid) renderTicks() {
	c := g.chart
	s := c.settings
	h := s.TableHeight()
	x := 0.0
	for _, date := range s.Dates {
		if x > 0 {
			classes := []string{"tick"}
			if scale.IsThickTick(s.Mode, date) {
				classes = append(classes, "thick")
			}
			id := c.backend.Create(c.layers.grid, render.Primitive{
				Kind: render.KindLine, Class: classes, X: x, X2: x, Y2: h, Interactive: true,
			})
			g.ticks = append(g.ticks, c.register(id, target{kind: targetGrid}))
			g.tickXs = append(g.tickXs, x)
		}
		x += s.ColumnWidth(date)
	}
}

func (g *grid) renderToday() {
	c := g.chart
	x, w := c.settings.TodayHighlight(c.now(), todayMinWidth)
	id := c.backend.Create(c.layers.grid, render.Primitive{
		Kind: render.KindRect, Class: []string{"today-highlight"},
		X: x, Width: w, Height: c.settings.TableHeight(), Interactive: true,
	})
	g.today = c.register(id, target{kind: targetGrid})
}

func (g *grid) renderDates() {
	c := g.chart
	s := c.settings
	for _, l := range s.Labels(s.HeaderHeight, c.opts.Padding) {
		c.backend.Create(c.layers.date, render.Primitive{
			Kind: render.KindText, Class: []string{"lower-text"}, Text: l.Lower.Text, X: l.Lower.X, Y: l.Lower.Y,
		})
		if l.Upper != nil && l.Upper.X < s.RowWidth {
			c.backend.Create(c.layers.date, render.Primitive{
				Kind: render.KindText, Class: []string{"upper-text"}, Text: l.Upper.Text, X: l.Upper.X, Y: l.Upper.Y,
			})
		}
	}
}

// updatePositions re-lays rows from index down and stretches the full
// height elements.
func (g *grid) updatePositions(index int) {
	c := g.chart
	s := c.settings
	h := s.TableHeight()
	if g.background != render.Root {
		c.backend.Set(g.background, render.Height(h))
	}
	if g.today != render.Root {
		c.backend.Set(g.today, render.Height(h))
	}
	for i, id := range g.ticks {
		c.backend.Set(id, render.Ends(g.tickXs[i], 0, g.tickXs[i], h))
	}

	y := s.HeaderHeight
	for i, rh := range s.RowHeights {
		if i >= index && i < len(g.rows) {
			bottom := y + rh
			c.backend.Set(g.rows[i], render.Y(y), render.Height(rh))
			c.backend.Set(g.lines[i], render.Ends(0, bottom, s.RowWidth, bottom))
			if i < len(g.handles) {
				c.backend.Set(g.handles[i], render.Y(bottom-rowHandleHalfSpan), render.Height(rowHandleHeight))
			}
		}
		y += rh
	}
}

func (g *grid) snapshot() {
	g.heights = slices.Clone(g.chart.settings.RowHeights)
}

// restore puts the row heights back and re-lays from the first changed row.
func (g *grid) restore() {
	if g.heights == nil {
		return
	}
	s := &g.chart.settings
	first := -1
	for i, h := range g.heights {
		if i >= len(s.RowHeights) || s.RowHeights[i] != h {
			first = i
			break
		}
	}
	s.RowHeights = g.heights
	g.heights = nil
	if first >= 0 {
		g.updatePositions(first)
	}
}

func (g *grid) commit() {
	g.heights = nil
}
