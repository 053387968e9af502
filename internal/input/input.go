// Package input turns raw pointer state into resolved clicks on screen regions.
package input

// Point is a screen position in terminal cells.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// RegionKind names what a clickable region does.
type RegionKind int

const (
	RegionOption RegionKind = iota + 1
	RegionNavItem
	RegionArrowLeft
	RegionArrowRight
	RegionSubmit
	RegionContinue
)

func (k RegionKind) String() string {
	switch k {
	case RegionOption:
		return "option"
	case RegionNavItem:
		return "nav_item"
	case RegionArrowLeft:
		return "arrow_left"
	case RegionArrowRight:
		return "arrow_right"
	case RegionSubmit:
		return "submit"
	case RegionContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Region is a clickable area. Payload carries the option number or item index.
type Region struct {
	Kind    RegionKind
	Payload int
	Rect    Rect
}

// Resolve returns the first region containing p.
func Resolve(p Point, regions []Region) (Region, bool) {
	for _, r := range regions {
		if r.Rect.Contains(p) {
			return r, true
		}
	}
	return Region{}, false
}

// Click is one resolved press-then-release.
type Click struct {
	At Point
}

// EdgeDetector emits exactly one Click per press/release cycle.
// Holding the button, or moving while held, produces nothing.
type EdgeDetector struct {
	wasPressed bool
	isPressed  bool
}

// Sample feeds the current button state. It returns a click on the
// pressed-to-released edge, located where the button was released.
func (d *EdgeDetector) Sample(pressed bool, at Point) (Click, bool) {
	d.wasPressed = d.isPressed
	d.isPressed = pressed
	if d.wasPressed && !d.isPressed {
		return Click{At: at}, true
	}
	return Click{}, false
}

// Pressed reports the latest sampled state.
func (d *EdgeDetector) Pressed() bool {
	return d.isPressed
}

// Reset forgets any held button, e.g. when the screen changes under the pointer.
func (d *EdgeDetector) Reset() {
	d.wasPressed = false
	d.isPressed = false
}
