package render

// Backend is the drawing surface the chart engine renders through.
type Backend interface {
	// Create adds p as the last child of parent and returns its id.
	Create(parent ID, p Primitive) ID
	// Set updates attributes of an existing primitive in place.
	Set(id ID, attrs ...Attr)
	// Remove deletes a primitive and everything under it.
	Remove(id ID)
	// SetVisible shows or hides a primitive and everything under it.
	SetVisible(id ID, visible bool)
	// Bounds is the bounding box of a primitive.
	Bounds(id ID) Rect
	// MeasureText is the rendered size of text drawn with class.
	MeasureText(text, class string) Size
}

// Viewport is the host's horizontal scroll container around the chart.
type Viewport interface {
	ScrollLeft() float64
	ClientWidth() float64
	ScrollWidth() float64
	SetScrollLeft(left float64)
}

// StaticViewport is a Viewport held in memory, used by headless hosts.
type StaticViewport struct {
	Left   float64
	Client float64
	Scroll float64
}

func (v *StaticViewport) ScrollLeft() float64  { return v.Left }
func (v *StaticViewport) ClientWidth() float64 { return v.Client }
func (v *StaticViewport) ScrollWidth() float64 { return v.Scroll }

// SetScrollLeft clamps left into the scrollable range.
func (v *StaticViewport) SetScrollLeft(left float64) {
	maxLeft := max(v.Scroll-v.Client, 0)
	v.Left = min(max(left, 0), maxLeft)
}

// ScrollResizer is implemented by viewports whose scrollable width follows
// the chart width.
type ScrollResizer interface {
	SetScrollWidth(width float64)
}

// SetScrollWidth updates the scrollable width and re-clamps the offset.
func (v *StaticViewport) SetScrollWidth(width float64) {
	v.Scroll = width
	v.SetScrollLeft(v.Left)
}
