package input

import "testing"

func TestEdgeDetectorOneClickPerCycle(t *testing.T) {
	var d EdgeDetector
	p := Point{X: 4, Y: 2}

	samples := []struct {
		pressed bool
		want    bool
	}{
		{false, false},
		{true, false},
		{true, false}, // held
		{true, false},
		{false, true}, // release edge
		{false, false},
		{true, false},
		{false, true},
	}
	clicks := 0
	for i, s := range samples {
		_, ok := d.Sample(s.pressed, p)
		if ok != s.want {
			t.Fatalf("sample %d: click = %v, want %v", i, ok, s.want)
		}
		if ok {
			clicks++
		}
	}
	if clicks != 2 {
		t.Errorf("clicks = %d, want 2", clicks)
	}
}

func TestEdgeDetectorReleasePosition(t *testing.T) {
	var d EdgeDetector
	d.Sample(true, Point{X: 1, Y: 1})
	c, ok := d.Sample(false, Point{X: 9, Y: 3})
	if !ok {
		t.Fatal("expected click")
	}
	if c.At != (Point{X: 9, Y: 3}) {
		t.Errorf("click at %v, want release point", c.At)
	}
}

func TestEdgeDetectorReset(t *testing.T) {
	var d EdgeDetector
	d.Sample(true, Point{})
	d.Reset()
	if _, ok := d.Sample(false, Point{}); ok {
		t.Error("release after Reset must not click")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 2, Y: 1, W: 3, H: 2}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{2, 1}, true},
		{Point{4, 2}, true},
		{Point{5, 1}, false},
		{Point{2, 3}, false},
		{Point{1, 1}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	regions := []Region{
		{Kind: RegionOption, Payload: 1, Rect: Rect{X: 0, Y: 0, W: 5, H: 3}},
		{Kind: RegionSubmit, Rect: Rect{X: 0, Y: 5, W: 10, H: 3}},
	}
	r, ok := Resolve(Point{X: 3, Y: 6}, regions)
	if !ok || r.Kind != RegionSubmit {
		t.Errorf("Resolve = %v, %v; want submit", r, ok)
	}
	if _, ok := Resolve(Point{X: 20, Y: 20}, regions); ok {
		t.Error("expected miss")
	}
}
