package route

import "testing"

const chevron = " m -5 -5 l 5 5 l -5 5"

func TestComputeForwardSameLine(t *testing.T) {
	from := Endpoints{Y: 40, Height: 20, StartX: 0, EndX: 70}
	to := Endpoints{Y: 40, Height: 20, StartX: 110, EndX: 200}

	p := Compute(from, to, 5, 20, 20)
	if got, want := p.String(), "M 70 50 L 110 50"+chevron; got != want {
		t.Fatalf("unexpected path\n got %q\nwant %q", got, want)
	}
	if end := p.End(); end != (Point{110, 50}) {
		t.Fatalf("expected path to end at the start endpoint, got %+v", end)
	}
}

func TestComputeForwardAcrossRows(t *testing.T) {
	tests := []struct {
		name string
		from Endpoints
		to   Endpoints
		want string
	}{
		{
			name: "downwards",
			from: Endpoints{Y: 40, Height: 20, StartX: 0, EndX: 70},
			to:   Endpoints{Y: 100, Height: 20, StartX: 110, EndX: 200},
			want: "M 70 50 V 105 a 5 5 0 0 0 5 5 L 110 110" + chevron,
		},
		{
			name: "upwards",
			from: Endpoints{Y: 100, Height: 20, StartX: 0, EndX: 70},
			to:   Endpoints{Y: 40, Height: 20, StartX: 110, EndX: 200},
			want: "M 70 110 V 55 a 5 5 0 0 1 5 -5 L 110 50" + chevron,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.from, tt.to, 5, 20, 20).String(); got != tt.want {
				t.Fatalf("unexpected path\n got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestComputeBackwardSameLine(t *testing.T) {
	from := Endpoints{Y: 40, Height: 20, StartX: 100, EndX: 200}
	to := Endpoints{Y: 40, Height: 20, StartX: 50, EndX: 90}

	p := Compute(from, to, 5, 20, 20)
	want := "M 100 50 v -10 a 5 5 1 0 0 -5 -5 H 40 a 5 5 0 0 0 -5 5 V 45 a 5 5 0 0 0 5 5 L 50 50" + chevron
	if got := p.String(); got != want {
		t.Fatalf("unexpected path\n got %q\nwant %q", got, want)
	}
	vertices := p.Vertices()
	if vertices[3] != (Point{40, 35}) {
		t.Fatalf("expected horizontal run above the bars, got %+v", vertices[3])
	}
}

func TestComputeBackwardAcrossRows(t *testing.T) {
	from := Endpoints{Y: 100, Height: 20, StartX: 100, EndX: 200}
	to := Endpoints{Y: 40, Height: 20, StartX: 150, EndX: 190}

	p := Compute(from, to, 5, 20, 20)
	want := "M 100 110 H 90 a 5 5 0 0 1 -5 -5 V 55 a 5 5 0 0 1 5 -5 L 150 50" + chevron
	if got := p.String(); got != want {
		t.Fatalf("unexpected path\n got %q\nwant %q", got, want)
	}
	if DrawsFromEnd(from, to) {
		t.Fatalf("expected a backward arrow")
	}
}

func TestSegmentsSkipMoves(t *testing.T) {
	p := Line(0, 0, 10, 0).chevron()
	segs := p.Segments()
	// the line plus both chevron strokes
	if len(segs) != 3 {
		t.Fatalf("expected 3 drawn segments, got %d", len(segs))
	}
	if segs[1][0] != (Point{5, -5}) || segs[1][1] != (Point{10, 0}) {
		t.Fatalf("unexpected chevron stroke %+v", segs[1])
	}
}
