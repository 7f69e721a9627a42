package chart

import (
	"math"
	"time"

	"gantry/internal/render"
	"gantry/internal/scale"
)

// snapshotDate remembers the date at the centre of the viewport so the
// next render can scroll back to it.
func (c *Chart) snapshotDate() {
	if !c.rendered {
		return
	}
	v := c.viewport
	if v.ScrollWidth() <= 0 {
		return
	}
	part := (v.ScrollLeft() + v.ClientWidth()/2) / v.ScrollWidth()
	span := c.settings.Max.Sub(c.settings.Min)
	c.scrollSnapshot = c.settings.Min.Add(time.Duration(float64(span) * part))
}

// scrollToDate centres the viewport on date.
func (c *Chart) scrollToDate(date time.Time) {
	v := c.viewport
	span := scale.HoursBetween(c.settings.Min, c.settings.Max)
	if span <= 0 || v.ScrollWidth() <= 0 {
		return
	}
	centre := v.ScrollWidth() / span * scale.HoursBetween(c.settings.Min, date)
	v.SetScrollLeft(math.Max(0, centre-v.ClientWidth()/2))
	c.scrollChanged()
}

// setScrollPosition restores a remembered date, or else shows the nearest
// upcoming task, or else the most recently finished one.
func (c *Chart) setScrollPosition() {
	if !c.scrollSnapshot.IsZero() {
		date := c.scrollSnapshot
		c.scrollSnapshot = time.Time{}
		c.scrollToDate(date)
		return
	}
	now := c.now()
	var future, past time.Time
	for _, g := range c.model.Tasks() {
		if g.StartDate.After(now) && (future.IsZero() || g.StartDate.Before(future)) {
			future = g.StartDate
		}
		if g.EndDate.Before(now) && (past.IsZero() || g.EndDate.After(past)) {
			past = g.EndDate
		}
	}
	switch {
	case !future.IsZero():
		c.scrollToDate(future)
	case !past.IsZero():
		c.scrollToDate(past)
	}
}

// updateSize tells a resizable viewport how wide the chart is.
func (c *Chart) updateSize() {
	if r, ok := c.viewport.(render.ScrollResizer); ok {
		r.SetScrollWidth(c.settings.RowWidth)
	}
}

func (c *Chart) scrollChanged() {
	if c.cb.ScrollChanged != nil {
		c.cb.ScrollChanged(c.viewport.ScrollLeft())
	}
}
