package section

import (
	"time"

	"github.com/pavelanni/rapm/internal/model"
)

// View is everything a renderer needs to draw one frame.
type View struct {
	Phase       model.PhaseName
	State       State
	Instruction string
	ButtonText  string
	SubmitText  string

	Items    []model.Item
	Current  int
	Item     model.Item
	Selected int // 0 when the current item is unanswered
	Answered []bool

	WindowStart int
	WindowEnd   int
	ShowLeft    bool
	ShowRight   bool

	Remaining     float64
	Timer         model.TimerDisplay
	AnsweredCount int
	Total         int
	SubmitVisible bool
}

// IsAnswered reports whether the item at index has an answer.
func (v View) IsAnswered(index int) bool {
	return index >= 0 && index < len(v.Answered) && v.Answered[index]
}

// View snapshots the render state at now.
func (c *Controller) View(now time.Time) View {
	items := c.phase.Items
	total := len(items)

	answered := make([]bool, total)
	for i, it := range items {
		answered[i] = c.answers.Has(it.ID)
	}
	start, end := c.nav.VisibleWindow(total, c.offset)
	selected, _ := c.answers.Get(items[c.current].ID)

	return View{
		Phase:         c.phase.Name,
		State:         c.state,
		Instruction:   c.phase.Instruction,
		ButtonText:    c.phase.ButtonText,
		SubmitText:    c.phase.SubmitText,
		Items:         items,
		Current:       c.current,
		Item:          items[c.current],
		Selected:      selected,
		Answered:      answered,
		WindowStart:   start,
		WindowEnd:     end,
		ShowLeft:      c.nav.HasLeft(total, c.offset),
		ShowRight:     c.nav.HasRight(total, c.offset),
		Remaining:     c.timing.RemainingSeconds(now),
		Timer:         c.phase.Timer,
		AnsweredCount: c.answers.Len(),
		Total:         total,
		SubmitVisible: c.SubmitVisible(),
	}
}
