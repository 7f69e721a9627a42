package chart

import (
	"slices"

	"gantry/internal/scale"
	"gantry/internal/swimlane"
)

// Gates switch interactive capabilities on and off.
type Gates struct {
	LockResize        bool
	CreateTasks       bool
	ResizeTaskLeft    bool
	ResizeTaskRight   bool
	ResizeProgress    bool
	ResizeMilestones  bool
	DragTaskSwimlanes bool
	ResizeSwimlanes   bool
	ResizeRows        bool
}

// Options configures layout and interaction. Start from DefaultOptions and
// overlay changes with Merge.
type Options struct {
	ViewMode                scale.ViewMode
	HeaderHeight            float64
	ColumnWidth             float64
	BarHeight               float64
	BarCornerRadius         float64
	ArrowCurve              float64
	Padding                 float64
	DateFormat              string
	FontSize                float64
	SwimlaneInfo            []swimlane.Info
	CheckboxSize            float64
	AvatarSize              float64
	AvatarPadding           float64
	TextBackgroundPadding   float64
	MaxInitialSwimlaneWidth float64

	Gates
}

// DefaultOptions returns the options a chart uses when nothing is set.
func DefaultOptions() Options {
	return Options{
		ViewMode:                scale.Day,
		HeaderHeight:            50,
		ColumnWidth:             30,
		BarHeight:               20,
		BarCornerRadius:         3,
		ArrowCurve:              5,
		Padding:                 20,
		DateFormat:              scale.DefaultDateFormat,
		FontSize:                12,
		CheckboxSize:            14,
		AvatarSize:              20,
		AvatarPadding:           4,
		TextBackgroundPadding:   6,
		MaxInitialSwimlaneWidth: 200,
		Gates: Gates{
			LockResize:        true,
			CreateTasks:       true,
			ResizeTaskLeft:    true,
			ResizeTaskRight:   true,
			ResizeProgress:    true,
			ResizeMilestones:  true,
			DragTaskSwimlanes: true,
			ResizeSwimlanes:   true,
			ResizeRows:        true,
		},
	}
}

// Partial is a set of option overrides. Zero and negative numbers, empty
// strings and nil fields leave the base value alone.
type Partial struct {
	ViewMode                *scale.ViewMode
	HeaderHeight            float64
	ColumnWidth             float64
	BarHeight               float64
	BarCornerRadius         float64
	ArrowCurve              float64
	Padding                 float64
	DateFormat              string
	FontSize                float64
	SwimlaneInfo            []swimlane.Info
	CheckboxSize            float64
	AvatarSize              float64
	AvatarPadding           float64
	TextBackgroundPadding   float64
	MaxInitialSwimlaneWidth float64

	LockResize        *bool
	CreateTasks       *bool
	ResizeTaskLeft    *bool
	ResizeTaskRight   *bool
	ResizeProgress    *bool
	ResizeMilestones  *bool
	DragTaskSwimlanes *bool
	ResizeSwimlanes   *bool
	ResizeRows        *bool
}

// Merge overlays the set fields of p onto o and normalizes the result.
func (o Options) Merge(p Partial) Options {
	if p.ViewMode != nil && p.ViewMode.Valid() {
		o.ViewMode = *p.ViewMode
	}
	overlay(&o.HeaderHeight, p.HeaderHeight)
	overlay(&o.ColumnWidth, p.ColumnWidth)
	overlay(&o.BarHeight, p.BarHeight)
	overlay(&o.BarCornerRadius, p.BarCornerRadius)
	overlay(&o.ArrowCurve, p.ArrowCurve)
	overlay(&o.Padding, p.Padding)
	overlay(&o.FontSize, p.FontSize)
	overlay(&o.CheckboxSize, p.CheckboxSize)
	overlay(&o.AvatarSize, p.AvatarSize)
	overlay(&o.AvatarPadding, p.AvatarPadding)
	overlay(&o.TextBackgroundPadding, p.TextBackgroundPadding)
	overlay(&o.MaxInitialSwimlaneWidth, p.MaxInitialSwimlaneWidth)
	if p.DateFormat != "" {
		o.DateFormat = p.DateFormat
	}
	if p.SwimlaneInfo != nil {
		o.SwimlaneInfo = slices.Clone(p.SwimlaneInfo)
	}

	gate(&o.LockResize, p.LockResize)
	gate(&o.CreateTasks, p.CreateTasks)
	gate(&o.ResizeTaskLeft, p.ResizeTaskLeft)
	gate(&o.ResizeTaskRight, p.ResizeTaskRight)
	gate(&o.ResizeProgress, p.ResizeProgress)
	gate(&o.ResizeMilestones, p.ResizeMilestones)
	gate(&o.DragTaskSwimlanes, p.DragTaskSwimlanes)
	gate(&o.ResizeSwimlanes, p.ResizeSwimlanes)
	gate(&o.ResizeRows, p.ResizeRows)
	return o.Normalize()
}

func overlay(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func gate(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Normalize applies the minimum sizes and fills unset values from the
// defaults.
func (o Options) Normalize() Options {
	d := DefaultOptions()
	if !o.ViewMode.Valid() {
		o.ViewMode = d.ViewMode
	}
	if o.DateFormat == "" {
		o.DateFormat = d.DateFormat
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.ArrowCurve < 0 {
		o.ArrowCurve = d.ArrowCurve
	}
	if o.BarCornerRadius < 0 {
		o.BarCornerRadius = d.BarCornerRadius
	}
	o.HeaderHeight = atLeast(o.HeaderHeight, 30)
	o.ColumnWidth = atLeast(o.ColumnWidth, 20)
	o.BarHeight = atLeast(o.BarHeight, 10)
	o.CheckboxSize = atLeast(o.CheckboxSize, 10)
	o.AvatarSize = atLeast(o.AvatarSize, 12)
	o.AvatarPadding = atLeast(o.AvatarPadding, 2)
	o.TextBackgroundPadding = atLeast(o.TextBackgroundPadding, 4)
	o.MaxInitialSwimlaneWidth = atLeast(o.MaxInitialSwimlaneWidth, 30)
	return o
}

func atLeast(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

// Equal reports whether two option sets lay out identically.
func (o Options) Equal(other Options) bool {
	return o.key() == other.key() && slices.Equal(o.SwimlaneInfo, other.SwimlaneInfo)
}

type optionsKey struct {
	mode   scale.ViewMode
	sizes  [12]float64
	format string
	gates  Gates
}

func (o Options) key() optionsKey {
	return optionsKey{
		mode: o.ViewMode,
		sizes: [12]float64{o.HeaderHeight, o.ColumnWidth, o.BarHeight, o.BarCornerRadius, o.ArrowCurve,
			o.Padding, o.FontSize, o.CheckboxSize, o.AvatarSize, o.AvatarPadding, o.TextBackgroundPadding,
			o.MaxInitialSwimlaneWidth},
		format: o.DateFormat,
		gates:  o.Gates,
	}
}

// swimlaneInfo returns the configuration of depth i, or nil.
func (o Options) swimlaneInfo(i int) *swimlane.Info {
	if i < 0 || i >= len(o.SwimlaneInfo) {
		return nil
	}
	return &o.SwimlaneInfo[i]
}
