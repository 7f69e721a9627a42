package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Stylesheet is embedded in exported documents so the chart's classes
// render without a host stylesheet.
const Stylesheet = `
.grid-background { fill: none; }
.grid-header { fill: #ffffff; stroke: #e0e0e0; stroke-width: 1.4; }
.grid-row { fill: #ffffff; }
.grid-row:nth-child(even) { fill: #f5f5f5; }
.row-line { stroke: #ebeff2; }
.tick { stroke: #e0e0e0; stroke-width: 0.2; }
.tick.thick { stroke-width: 0.4; }
.today-highlight { fill: #fcf8e3; opacity: 0.5; }
.arrow { fill: none; stroke: #666; stroke-width: 1.4; }
.arrow.active { stroke: #a3a3ff; }
.arrow-clickable { fill: none; stroke: transparent; stroke-width: 8; }
.bar { fill: #b8c2cc; stroke: #8d99a6; stroke-width: 0; }
.bar-progress { fill: #a3a3ff; }
.bar-label { fill: #fff; dominant-baseline: central; font-size: 12px; }
.bar-label.big { fill: #555; }
.bar-wrapper.disabled .bar { opacity: 0.6; }
.bar-handle { fill: #ddd; opacity: 0; }
.bar-handle.progress { fill: #fff; stroke: #8d99a6; opacity: 1; }
.progress-text { fill: #555; }
.endpoint { fill: #ddd; stroke: #666; }
.endpoint.clickable { fill: #fff; }
.endpoint.active { fill: #a3a3ff; }
.bar-milestone { opacity: 0.6; }
.milestone-tooltip { fill: #333; }
.icon-delete { fill: #e57373; }
.lower-text, .upper-text { font-size: 12px; }
.upper-text { fill: #555; }
.lower-text { fill: #333; }
.swimlanes-header { fill: #fff; }
.swimlanes-background { fill: #fff; }
.swimlane-rect { stroke: #ebeff2; }
.swimlane-rect.empty { fill: #fafafa; }
.swimlane-label { fill: #333; dominant-baseline: central; font-size: 12px; }
.swimlane-header-rect { fill: #fff; stroke: #e0e0e0; }
.swimlane-header-rect.empty { fill: #fafafa; }
.swimlane-header-label { fill: #555; dominant-baseline: central; font-size: 12px; }
.swimlane-resize-handle { fill: transparent; }
.row-resize-handle { fill: transparent; }
`

// WriteSVG writes the subtree under root as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene, root ID, width, height float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(width), num(height), num(width), num(height))
	fmt.Fprintf(bw, "<style>%s</style>\n", Stylesheet)

	var open []int
	closeTo := func(depth int) {
		for len(open) > 0 && open[len(open)-1] >= depth {
			bw.WriteString("</g>\n")
			open = open[:len(open)-1]
		}
	}
	s.Walk(root, func(_ ID, p Primitive, depth int) bool {
		closeTo(depth)
		if p.Kind == KindGroup {
			bw.WriteString("<g" + classAttr(p) + translateAttr(p) + ">\n")
			open = append(open, depth)
			return true
		}
		writeElement(bw, p)
		return true
	})
	closeTo(0)
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeElement(w *bufio.Writer, p Primitive) {
	common := classAttr(p) + styleAttrs(p)
	switch p.Kind {
	case KindRect:
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s"%s/>`+"\n",
			num(p.X), num(p.Y), num(p.Width), num(p.Height), num(p.CornerRadius), num(p.CornerRadius), common)
	case KindLine:
		fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>`+"\n", num(p.X), num(p.Y), num(p.X2), num(p.Y2), common)
	case KindCircle:
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"%s/>`+"\n", num(p.X), num(p.Y), num(p.Radius), common)
	case KindPath:
		fmt.Fprintf(w, `<path d="%s"%s/>`+"\n", escape(p.D), common)
	case KindPolygon:
		pts := make([]string, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = num(pt.X) + "," + num(pt.Y)
		}
		fmt.Fprintf(w, `<polygon points="%s"%s/>`+"\n", strings.Join(pts, " "), common)
	case KindText:
		anchor := [...]string{"start", "middle", "end"}[p.Anchor]
		fmt.Fprintf(w, `<text x="%s" y="%s" text-anchor="%s" dominant-baseline="central"%s>%s</text>`+"\n",
			num(p.X), num(p.Y), anchor, common, escape(p.Text))
	case KindImage:
		fmt.Fprintf(w, `<image x="%s" y="%s" width="%s" height="%s" href="%s"%s/>`+"\n",
			num(p.X), num(p.Y), num(p.Width), num(p.Height), escape(p.Href), common)
	case KindCheckbox:
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" rx="2"%s/>`+"\n",
			num(p.X), num(p.Y), num(p.Width), num(p.Height), common)
		if p.Checked {
			fmt.Fprintf(w, `<path d="M %s %s l %s %s l %s -%s" fill="none" stroke="currentColor"/>`+"\n",
				num(p.X+p.Width*0.2), num(p.Y+p.Height*0.5), num(p.Width*0.25), num(p.Height*0.25),
				num(p.Width*0.4), num(p.Height*0.5))
		}
	}
}

func classAttr(p Primitive) string {
	if len(p.Class) == 0 {
		return ""
	}
	return ` class="` + escape(strings.Join(p.Class, " ")) + `"`
}

// translateAttr offsets a group; the scene itself keeps local coordinates.
func translateAttr(p Primitive) string {
	if p.X == 0 && p.Y == 0 {
		return ""
	}
	return ` transform="translate(` + num(p.X) + "," + num(p.Y) + `)"`
}

func styleAttrs(p Primitive) string {
	var b strings.Builder
	fill := p.Fill
	if p.Kind == KindText && p.TextColor != "" {
		fill = p.TextColor
	}
	if fill != "" {
		b.WriteString(` fill="` + escape(fill) + `"`)
	}
	if p.Stroke != "" {
		b.WriteString(` stroke="` + escape(p.Stroke) + `"`)
	}
	if p.Opacity > 0 {
		b.WriteString(` opacity="` + num(p.Opacity) + `"`)
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
