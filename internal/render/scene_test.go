package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestSceneCreateSetRemove(t *testing.T) {
	s := NewScene()
	layer := s.Create(Root, Primitive{Kind: KindGroup, Class: []string{"bar"}})
	rect := s.Create(layer, Primitive{Kind: KindRect, Class: []string{"bar"}})
	s.Set(rect, Box(10, 20, 30, 40), AddClass("active"))

	p, ok := s.Get(rect)
	if !ok {
		t.Fatalf("expected rect to exist")
	}
	if p.X != 10 || p.Height != 40 || !p.HasClass("active") {
		t.Fatalf("unexpected primitive after Set: %+v", p)
	}
	if got := s.Bounds(layer); got != (Rect{10, 20, 30, 40}) {
		t.Fatalf("expected group bounds to follow its child, got %+v", got)
	}

	s.Remove(layer)
	if _, ok := s.Get(rect); ok {
		t.Fatalf("expected children to be removed with their group")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty scene, got %d primitives", s.Len())
	}
}

func TestHitTestPrefersTopmost(t *testing.T) {
	s := NewScene()
	bar := s.Create(Root, Primitive{Kind: KindRect, X: 0, Y: 0, Width: 100, Height: 20, Interactive: true})
	handle := s.Create(Root, Primitive{Kind: KindRect, X: 90, Y: 0, Width: 10, Height: 20, Interactive: true})
	s.Create(Root, Primitive{Kind: KindRect, X: 0, Y: 0, Width: 200, Height: 200})

	if id, ok := s.HitTest(Root, 95, 10); !ok || id != handle {
		t.Fatalf("expected handle hit, got %v %v", id, ok)
	}
	if id, ok := s.HitTest(Root, 50, 10); !ok || id != bar {
		t.Fatalf("expected bar hit, got %v %v", id, ok)
	}
	if _, ok := s.HitTest(Root, 150, 150); ok {
		t.Fatalf("expected non-interactive primitives to be ignored")
	}

	s.SetVisible(handle, false)
	if id, _ := s.HitTest(Root, 95, 10); id != bar {
		t.Fatalf("expected hidden handle to be skipped, got %v", id)
	}
}

func TestHitTestPaths(t *testing.T) {
	s := NewScene()
	var p Primitive
	p.Kind = KindPath
	p.Interactive = true
	p.Apply(Path("M 0 0 L 100 0", [][2]Point{{{0, 0}, {100, 0}}}))
	id := s.Create(Root, p)

	if got, ok := s.HitTest(Root, 50, 3); !ok || got != id {
		t.Fatalf("expected a hit near the path")
	}
	if _, ok := s.HitTest(Root, 50, 10); ok {
		t.Fatalf("expected a miss away from the path")
	}
}

func TestTextBoundsUseAnchor(t *testing.T) {
	s := NewScene()
	id := s.Create(Root, Primitive{Kind: KindText, X: 100, Y: 50, Text: "abcd", Anchor: AnchorMiddle})
	got := s.Bounds(id)
	want := Rect{X: 100 - 2*CharWidth, Y: 50 - LineHeight/2, Width: 4 * CharWidth, Height: LineHeight}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if size := s.MeasureText("日本", ""); size.Width != 4*CharWidth {
		t.Fatalf("expected wide runes to take two cells, got %v", size.Width)
	}
}

func TestFindByClassIncludesHidden(t *testing.T) {
	s := NewScene()
	a := s.Create(Root, Primitive{Kind: KindRect, Class: []string{"tick"}})
	b := s.Create(Root, Primitive{Kind: KindRect, Class: []string{"tick", "thick"}})
	s.SetVisible(b, false)

	got := s.FindByClass("tick")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected ids %v", got)
	}
	if s.Visible(b) {
		t.Fatalf("expected b hidden")
	}
}

func TestWriteSVG(t *testing.T) {
	s := NewScene()
	g := s.Create(Root, Primitive{Kind: KindGroup, Class: []string{"bar-wrapper"}})
	s.Create(g, Primitive{Kind: KindRect, X: 1, Y: 2, Width: 3, Height: 4, CornerRadius: 3, Class: []string{"bar"}})
	s.Create(g, Primitive{Kind: KindText, X: 5, Y: 6, Text: "R&D <1>", Anchor: AnchorMiddle})
	hidden := s.Create(Root, Primitive{Kind: KindCircle, X: 1, Y: 1, Radius: 5})
	s.SetVisible(hidden, false)

	var buf bytes.Buffer
	if err := WriteSVG(&buf, s, Root, 300, 200); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200" viewBox="0 0 300 200">`,
		`<g class="bar-wrapper">`,
		`<rect x="1" y="2" width="3" height="4" rx="3" ry="3" class="bar"/>`,
		`text-anchor="middle"`,
		`R&amp;D &lt;1&gt;</text>`,
		"</g>\n</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<circle") {
		t.Fatalf("expected hidden circle to be skipped")
	}
}

func TestStaticViewportClamps(t *testing.T) {
	v := &StaticViewport{Client: 100, Scroll: 300}
	v.SetScrollLeft(250)
	if v.ScrollLeft() != 200 {
		t.Fatalf("expected clamp to 200, got %v", v.ScrollLeft())
	}
	v.SetScrollLeft(-5)
	if v.ScrollLeft() != 0 {
		t.Fatalf("expected clamp to 0, got %v", v.ScrollLeft())
	}
}
