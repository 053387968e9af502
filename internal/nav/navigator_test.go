package nav

import (
	"fmt"
	"testing"

	"github.com/pavelanni/rapm/internal/input"
	"github.com/pavelanni/rapm/internal/model"
)

type answerSet map[string]bool

func (a answerSet) Has(id string) bool { return a[id] }

func testItems(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{ID: fmt.Sprintf("F%02d", i+1)}
	}
	return items
}

func TestVisibleWindow(t *testing.T) {
	n := New(12)
	tests := []struct {
		name           string
		total, offset  int
		wantStart, end int
	}{
		{"fits", 8, 0, 0, 8},
		{"fits ignores offset", 12, 5, 0, 12},
		{"first page", 36, 0, 0, 12},
		{"middle", 36, 10, 10, 22},
		{"last page", 36, 24, 24, 36},
		{"offset past end clamps", 36, 30, 24, 36},
		{"negative offset clamps", 36, -3, 0, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := n.VisibleWindow(tt.total, tt.offset)
			if s != tt.wantStart || e != tt.end {
				t.Errorf("VisibleWindow(%d, %d) = [%d, %d), want [%d, %d)",
					tt.total, tt.offset, s, e, tt.wantStart, tt.end)
			}
		})
	}
}

func TestCenterOffsetBounds(t *testing.T) {
	for _, maxVisible := range []int{1, 3, 12} {
		n := New(maxVisible)
		for total := 1; total <= 40; total++ {
			hi := total - maxVisible
			if hi < 0 {
				hi = 0
			}
			for index := 0; index < total; index++ {
				got := n.CenterOffset(index, total)
				if got < 0 || got > hi {
					t.Fatalf("CenterOffset(%d, %d) with max %d = %d, outside [0, %d]",
						index, total, maxVisible, got, hi)
				}
			}
		}
	}
}

func TestCenterOffset(t *testing.T) {
	n := New(12)
	tests := []struct {
		index, total, want int
	}{
		{0, 36, 0},
		{5, 36, 0},
		{6, 36, 0},
		{7, 36, 1},
		{20, 36, 14},
		{35, 36, 24},
		{3, 10, 0},
	}
	for _, tt := range tests {
		if got := n.CenterOffset(tt.index, tt.total); got != tt.want {
			t.Errorf("CenterOffset(%d, %d) = %d, want %d", tt.index, tt.total, got, tt.want)
		}
	}
}

func TestPaging(t *testing.T) {
	n := New(12)
	if got := n.PageRight(0, 36); got != 12 {
		t.Errorf("PageRight(0) = %d, want 12", got)
	}
	if got := n.PageRight(20, 36); got != 24 {
		t.Errorf("PageRight(20) = %d, want 24", got)
	}
	if got := n.PageLeft(5, 36); got != 0 {
		t.Errorf("PageLeft(5) = %d, want 0", got)
	}
	if n.HasLeft(36, 0) {
		t.Error("no left arrow on first page")
	}
	if !n.HasRight(36, 0) {
		t.Error("right arrow expected on first page")
	}
	if n.HasRight(36, 24) {
		t.Error("no right arrow on last page")
	}
	if n.HasLeft(8, 0) || n.HasRight(8, 0) {
		t.Error("no arrows when everything fits")
	}
}

func TestFindNextUnanswered(t *testing.T) {
	n := New(12)
	items := testItems(5)

	tests := []struct {
		name    string
		answers answerSet
		current int
		want    int
	}{
		{"forward to next gap", answerSet{"F01": true}, 0, 1},
		{"skips answered", answerSet{"F01": true, "F02": true, "F03": true}, 0, 3},
		{"fallback to current+1", answerSet{"F01": true, "F03": true, "F04": true, "F05": true}, 2, 3},
		{"wrap from last", answerSet{"F03": true, "F05": true}, 4, 0},
		{"wrap finds middle gap", answerSet{"F01": true, "F02": true, "F04": true, "F05": true}, 4, 2},
		{"last with nothing left stays", answerSet{"F01": true, "F02": true, "F03": true, "F04": true, "F05": true}, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.FindNextUnanswered(items, tt.answers, tt.current); got != tt.want {
				t.Errorf("FindNextUnanswered(current=%d) = %d, want %d", tt.current, got, tt.want)
			}
		})
	}
}

func TestFindNextUnansweredTotality(t *testing.T) {
	n := New(12)
	items := testItems(6)
	// Every subset of answered items, every current index.
	for mask := 0; mask < 1<<len(items); mask++ {
		answers := answerSet{}
		for i, it := range items {
			if mask&(1<<i) != 0 {
				answers[it.ID] = true
			}
		}
		if len(answers) == len(items) {
			continue
		}
		last := len(items) - 1
		for cur := 0; cur < len(items); cur++ {
			got := n.FindNextUnanswered(items, answers, cur)
			hasAhead := false
			for k := cur + 1; k < len(items); k++ {
				if !answers.Has(items[k].ID) {
					hasAhead = true
				}
			}
			if (cur == last || hasAhead) && answers.Has(items[got].ID) {
				t.Fatalf("mask %b cur %d: returned answered index %d", mask, cur, got)
			}
		}
	}
}

// Answer the last item first, then the first item; auto-advance from the
// last item must wrap to the earliest gap each time.
func TestFindNextUnansweredWrapScenario(t *testing.T) {
	n := New(12)
	items := testItems(4)
	answers := answerSet{"F04": true}

	if got := n.FindNextUnanswered(items, answers, 3); got != 0 {
		t.Fatalf("after answering item 4: next = %d, want 0", got)
	}
	answers["F01"] = true
	if got := n.FindNextUnanswered(items, answers, 3); got != 1 {
		t.Fatalf("after answering item 1: next from last = %d, want 1", got)
	}
}

func TestClassifyClick(t *testing.T) {
	n := New(12)
	left := &input.Rect{X: 0, Y: 10, W: 3, H: 1}
	right := &input.Rect{X: 40, Y: 10, W: 3, H: 1}
	buttons := []ItemButton{
		{Index: 12, Rect: input.Rect{X: 4, Y: 10, W: 4, H: 1}},
		{Index: 13, Rect: input.Rect{X: 9, Y: 10, W: 4, H: 1}},
	}

	tests := []struct {
		name        string
		p           input.Point
		left, right *input.Rect
		want        Action
	}{
		{"left arrow", input.Point{X: 1, Y: 10}, left, right, Action{Kind: ActionPageLeft}},
		{"right arrow", input.Point{X: 41, Y: 10}, left, right, Action{Kind: ActionPageRight}},
		{"jump", input.Point{X: 10, Y: 10}, left, right, Action{Kind: ActionJump, Index: 13}},
		{"hidden left arrow", input.Point{X: 1, Y: 10}, nil, right, Action{Kind: ActionNone}},
		{"miss", input.Point{X: 20, Y: 2}, left, right, Action{Kind: ActionNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.ClassifyClick(tt.p, buttons, tt.left, tt.right); got != tt.want {
				t.Errorf("ClassifyClick = %+v, want %+v", got, tt.want)
			}
		})
	}
}
