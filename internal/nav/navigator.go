// Package nav holds the pure navigation rules of a phase: which slice of the
// item strip is visible, where to jump after an answer, and what a click on
// the strip means.
package nav

import (
	"github.com/pavelanni/rapm/internal/input"
	"github.com/pavelanni/rapm/internal/model"
)

// DefaultMaxVisible is the reference width of the navigation strip.
const DefaultMaxVisible = 12

// AnswerSet reports whether an item already has an answer.
type AnswerSet interface {
	Has(itemID string) bool
}

// ActionKind classifies a click on the navigation strip.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPageLeft
	ActionPageRight
	ActionJump
)

func (k ActionKind) String() string {
	switch k {
	case ActionPageLeft:
		return "page_left"
	case ActionPageRight:
		return "page_right"
	case ActionJump:
		return "jump"
	default:
		return "none"
	}
}

// Action is the result of ClassifyClick. Index is set for ActionJump.
type Action struct {
	Kind  ActionKind
	Index int
}

// ItemButton is one visible strip button and the item index it jumps to.
type ItemButton struct {
	Index int
	Rect  input.Rect
}

// Navigator computes pagination over a strip of at most MaxVisible buttons.
type Navigator struct {
	MaxVisible int
}

// New returns a Navigator; non-positive widths fall back to DefaultMaxVisible.
func New(maxVisible int) *Navigator {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	return &Navigator{MaxVisible: maxVisible}
}

// MaxOffset is the largest valid pagination offset for total items.
func (n *Navigator) MaxOffset(total int) int {
	if total <= n.MaxVisible {
		return 0
	}
	return total - n.MaxVisible
}

func (n *Navigator) clampOffset(offset, total int) int {
	if offset < 0 {
		return 0
	}
	if hi := n.MaxOffset(total); offset > hi {
		return hi
	}
	return offset
}

// VisibleWindow returns the half-open index range [start, end) shown in the strip.
func (n *Navigator) VisibleWindow(total, offset int) (start, end int) {
	if total <= n.MaxVisible {
		return 0, total
	}
	start = n.clampOffset(offset, total)
	end = start + n.MaxVisible
	if end > total {
		end = total
	}
	return start, end
}

// CenterOffset returns the offset that puts index as close to the middle
// of the strip as the ends allow.
func (n *Navigator) CenterOffset(index, total int) int {
	if total <= n.MaxVisible {
		return 0
	}
	return n.clampOffset(index-n.MaxVisible/2, total)
}

// PageLeft moves the strip one full window back.
func (n *Navigator) PageLeft(offset, total int) int {
	return n.clampOffset(offset-n.MaxVisible, total)
}

// PageRight moves the strip one full window forward.
func (n *Navigator) PageRight(offset, total int) int {
	return n.clampOffset(offset+n.MaxVisible, total)
}

// HasLeft reports whether a left arrow is shown for offset.
func (n *Navigator) HasLeft(total, offset int) bool {
	start, _ := n.VisibleWindow(total, offset)
	return start > 0
}

// HasRight reports whether a right arrow is shown for offset.
func (n *Navigator) HasRight(total, offset int) bool {
	_, end := n.VisibleWindow(total, offset)
	return end < total
}

// FindNextUnanswered picks the auto-advance target after an answer on current.
//
// From the last item it wraps and returns the first unanswered index, or
// current when nothing is left. From any other item it returns the first
// unanswered index after current; when none exists ahead it returns
// current+1 even if that item is already answered.
func (n *Navigator) FindNextUnanswered(items []model.Item, answers AnswerSet, current int) int {
	last := len(items) - 1
	if current == last {
		for k := 0; k < len(items); k++ {
			if !answers.Has(items[k].ID) {
				return k
			}
		}
		return current
	}
	for k := current + 1; k < len(items); k++ {
		if !answers.Has(items[k].ID) {
			return k
		}
	}
	return current + 1
}

// ClassifyClick maps a resolved click to a strip action. Arrows that are not
// shown are passed as nil. Regions are expected to be disjoint.
func (n *Navigator) ClassifyClick(p input.Point, buttons []ItemButton, left, right *input.Rect) Action {
	if left != nil && left.Contains(p) {
		return Action{Kind: ActionPageLeft}
	}
	if right != nil && right.Contains(p) {
		return Action{Kind: ActionPageRight}
	}
	for _, b := range buttons {
		if b.Rect.Contains(p) {
			return Action{Kind: ActionJump, Index: b.Index}
		}
	}
	return Action{Kind: ActionNone}
}
