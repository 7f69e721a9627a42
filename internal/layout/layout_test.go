package layout

import "testing"

func identity(s Span) Span { return s }

func TestOverlapsIsClosed(t *testing.T) {
	tests := []struct {
		a, b Span
		want bool
	}{
		{Span{0, 10}, Span{10, 20}, true},
		{Span{0, 10}, Span{11, 20}, false},
		{Span{5, 6}, Span{0, 20}, true},
		{Span{0, 20}, Span{5, 6}, true},
		{Span{30, 40}, Span{0, 29}, false},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.a, tt.b); got != tt.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPackNeverOverlapsOnALine(t *testing.T) {
	spans := []Span{{0, 30}, {10, 40}, {35, 60}, {20, 25}, {61, 90}, {0, 90}, {45, 50}}
	lines := Pack(spans, identity)

	for i, line := range lines {
		for a := 0; a < len(line); a++ {
			for b := a + 1; b < len(line); b++ {
				if Overlaps(line[a], line[b]) {
					t.Fatalf("line %d: %v overlaps %v", i, line[a], line[b])
				}
			}
		}
	}
	if got := len(lines.Items()); got != len(spans) {
		t.Fatalf("expected every span placed, got %d", got)
	}
	// {0,30}, {35,60} and {61,90} share line 0.
	if len(lines[0]) != 3 {
		t.Fatalf("expected 3 spans on the first line, got %v", lines[0])
	}
}

func TestFreeLineRespectsMinLine(t *testing.T) {
	var lines Lines[Span]
	if got := FreeLine(lines, identity, Span{0, 1}, 2); got != 2 {
		t.Fatalf("expected empty matrix to return minLine, got %d", got)
	}
	lines = lines.Place(0, Span{0, 10})
	lines = lines.Place(1, Span{20, 30})
	if got := FreeLine(lines, identity, Span{0, 5}, 0); got != 1 {
		t.Fatalf("expected first free line 1, got %d", got)
	}
	if got := FreeLine(lines, identity, Span{25, 26}, 1); got != 2 {
		t.Fatalf("expected new line 2, got %d", got)
	}
	if got := FreeLine(lines, identity, Span{50, 60}, 4); got != 4 {
		t.Fatalf("expected minLine past the end, got %d", got)
	}
}

func TestRowGeometry(t *testing.T) {
	m := Metrics{BarHeight: 20, Padding: 20}

	tests := []struct {
		lines int
		want  float64
	}{
		{0, 40},
		{1, 40},
		{2, 70},
		{3, 100},
	}
	for _, tt := range tests {
		if got := m.Height(tt.lines); got != tt.want {
			t.Errorf("Height(%d) = %v, want %v", tt.lines, got, tt.want)
		}
	}

	for line := 0; line < 4; line++ {
		y := m.LineY(70, line)
		if got := m.LineForY(70, y); got != line {
			t.Errorf("LineForY(LineY(%d)) = %d", line, got)
		}
	}
	if got := m.LineY(70, 1); got != 110 {
		t.Fatalf("expected second line at 110, got %v", got)
	}
	if got := m.LineForY(70, 0); got != 0 {
		t.Fatalf("expected y above the row to clamp to 0, got %d", got)
	}
}

func TestLinesHelpers(t *testing.T) {
	var lines Lines[int]
	lines = lines.Place(2, 7)
	if lines.Len() != 3 || lines[0] != nil {
		t.Fatalf("expected holes before line 2, got %v", lines)
	}
	lines = lines.Place(0, 1)
	clone := lines.Clone()
	clone[0][0] = 99
	if lines[0][0] != 1 {
		t.Fatalf("expected clone to be independent")
	}
	if got := lines.Find(func(v int) bool { return v == 7 }); got != 2 {
		t.Fatalf("expected 7 on line 2, got %d", got)
	}
	rest := lines.Without(func(v int) bool { return v == 7 })
	if rest.Len() != 3 || len(rest[2]) != 0 {
		t.Fatalf("expected removal to keep line count, got %v", rest)
	}
}
