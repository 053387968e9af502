package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/input"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/nav"
	"github.com/pavelanni/rapm/internal/section"
)

const (
	leftPad          = 2
	defaultColumns   = 4
	minOptionWidth   = 10
	maxOptionWidth   = 28
	defaultTermWidth = 100
	cellGap          = 1
)

// Layout renders phase screens and records where every clickable element
// landed, in terminal cells.
type Layout struct {
	Width   int
	Columns int
	// Exists reports whether an asset file is present. Nil means always.
	Exists func(path string) bool
}

// Screen is one rendered frame plus its hit map.
type Screen struct {
	Content string
	Regions []input.Region
	Strip   []nav.ItemButton
	Left    *input.Rect
	Right   *input.Rect
}

// Resolve maps a click position to the event it triggers.
func (s Screen) Resolve(p input.Point, navigator *nav.Navigator) (section.Event, bool) {
	if r, ok := input.Resolve(p, s.Regions); ok {
		switch r.Kind {
		case input.RegionOption:
			return section.SelectOption(r.Payload), true
		case input.RegionSubmit:
			return section.Submit(), true
		case input.RegionContinue:
			return section.Continue(), true
		}
	}
	switch a := navigator.ClassifyClick(p, s.Strip, s.Left, s.Right); a.Kind {
	case nav.ActionPageLeft:
		return section.PageLeft(), true
	case nav.ActionPageRight:
		return section.PageRight(), true
	case nav.ActionJump:
		return section.Jump(a.Index), true
	}
	return section.NoEvent, false
}

// canvas stacks rendered blocks top to bottom and keeps hit rectangles in
// screen coordinates.
type canvas struct {
	lines  []string
	screen Screen
}

func (c *canvas) y() int { return len(c.lines) }

func (c *canvas) block(s string) int {
	y := c.y()
	c.lines = append(c.lines, strings.Split(s, "\n")...)
	return y
}

func (c *canvas) blank() { c.lines = append(c.lines, "") }

// cell is one element of a horizontal row.
type cell struct {
	text string
	kind input.RegionKind // zero for decoration
	arg  int
}

// row joins cells left to right and returns the rect of each one.
func (c *canvas) row(cells []cell) []input.Rect {
	y := c.y()
	parts := make([]string, 0, 2*len(cells))
	rects := make([]input.Rect, len(cells))
	x := leftPad
	for i, cl := range cells {
		if i > 0 {
			parts = append(parts, strings.Repeat(" ", cellGap))
			x += cellGap
		}
		w, h := lipgloss.Width(cl.text), lipgloss.Height(cl.text)
		rects[i] = input.Rect{X: x, Y: y, W: w, H: h}
		parts = append(parts, cl.text)
		x += w
	}
	c.block(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	return rects
}

func (c *canvas) render() Screen {
	pad := strings.Repeat(" ", leftPad)
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		if l == "" {
			continue
		}
		out[i] = pad + l
	}
	c.screen.Content = strings.Join(out, "\n")
	return c.screen
}

func (l Layout) width() int {
	if l.Width <= 0 {
		return defaultTermWidth
	}
	return l.Width
}

func (l Layout) columns() int {
	if l.Columns <= 0 || l.Columns > model.OptionCount {
		return defaultColumns
	}
	return l.Columns
}

func (l Layout) optionWidth() int {
	cols := l.columns()
	// Border adds two cells per box.
	w := (l.width()-2*leftPad-(cols-1)*cellGap)/cols - 2
	return max(minOptionWidth, min(maxOptionWidth, w))
}

func (l Layout) exists(path string) bool {
	return l.Exists == nil || l.Exists(path)
}

// Instruction renders the instruction screen. The continue button is only
// drawn, and only clickable, once ready is true.
func (l Layout) Instruction(ctx context.Context, v section.View, ready bool) Screen {
	var c canvas
	c.blank()
	c.block(titleStyle.Render(phaseTitle(ctx, v.Phase)))
	c.blank()

	text := v.Instruction
	if text == "" {
		text = appI18n.T(ctx, "PleaseRead")
	}
	c.block(textStyle.Width(min(l.width()-2*leftPad, 80)).Render(text))
	c.blank()

	if ready {
		label := v.ButtonText
		if label == "" {
			label = appI18n.T(ctx, "Continue")
		}
		rects := c.row([]cell{{text: buttonStyle.Render(label), kind: input.RegionContinue}})
		c.screen.Regions = append(c.screen.Regions, input.Region{Kind: input.RegionContinue, Rect: rects[0]})
	} else {
		c.block(dimStyle.Render("…"))
	}
	return c.render()
}

// Active renders the answering screen.
func (l Layout) Active(ctx context.Context, v section.View) Screen {
	var c canvas
	c.blank()

	header := titleStyle.Render(phaseTitle(ctx, v.Phase))
	if v.Timer.Visible(v.Remaining) {
		timer := appI18n.Td(ctx, "TimeLeft", map[string]any{"Time": formatClock(v.Remaining)})
		style := textStyle
		if v.Timer.Urgent(v.Remaining) {
			style = errorStyle
		}
		header += "   " + style.Render(timer)
	}
	c.block(header)
	c.blank()

	optW := l.optionWidth()
	cols := l.columns()
	gridW := cols*(optW+2) + (cols-1)*cellGap

	// Question.
	qLabel := appI18n.Td(ctx, "ItemLabel", map[string]any{"ID": v.Item.ID})
	qBody := l.assetLabel(ctx, v.Item.Question, gridW-4)
	c.block(questionStyle.Width(gridW - 2).Render(titleStyle.Render(qLabel) + "\n" + qBody))
	c.blank()

	// Options, row-major.
	for start := 0; start < len(v.Item.Options); start += cols {
		end := min(start+cols, len(v.Item.Options))
		cells := make([]cell, 0, end-start)
		for i := start; i < end; i++ {
			n := i + 1
			style := optionStyle
			if n == v.Selected {
				style = optionSelectedStyle
			}
			body := fmt.Sprintf("%d\n%s", n, l.assetLabel(ctx, v.Item.Options[i], optW-2))
			cells = append(cells, cell{text: style.Width(optW).Render(body), kind: input.RegionOption, arg: n})
		}
		for i, r := range c.row(cells) {
			c.screen.Regions = append(c.screen.Regions, input.Region{Kind: input.RegionOption, Payload: cells[i].arg, Rect: r})
		}
	}
	c.blank()

	// Navigation strip. Hidden arrows keep their space so buttons do not shift.
	arrowW := lipgloss.Width(arrowStyle.Render("◄"))
	spacer := strings.Repeat(" ", arrowW)
	cells := []cell{{text: spacer}}
	if v.ShowLeft {
		cells[0] = cell{text: arrowStyle.Render("◄"), kind: input.RegionArrowLeft}
	}
	for i := v.WindowStart; i < v.WindowEnd; i++ {
		style := navStyle
		switch {
		case i == v.Current:
			style = navCurrentStyle
		case v.IsAnswered(i):
			style = navAnsweredStyle
		}
		cells = append(cells, cell{text: style.Render(fmt.Sprintf("%02d", i+1)), kind: input.RegionNavItem, arg: i})
	}
	if v.ShowRight {
		cells = append(cells, cell{text: arrowStyle.Render("►"), kind: input.RegionArrowRight})
	} else {
		cells = append(cells, cell{text: spacer})
	}
	for i, r := range c.row(cells) {
		switch cells[i].kind {
		case input.RegionArrowLeft:
			c.screen.Left = &r
		case input.RegionArrowRight:
			c.screen.Right = &r
		case input.RegionNavItem:
			c.screen.Strip = append(c.screen.Strip, nav.ItemButton{Index: cells[i].arg, Rect: r})
		}
	}
	c.blank()

	// Progress and submit.
	progress := appI18n.Td(ctx, "AnsweredCount", map[string]any{"Answered": v.AnsweredCount, "Total": v.Total})
	if v.AnsweredCount == v.Total {
		progress = successStyle.Render(progress)
	} else {
		progress = textStyle.Render(progress)
	}
	c.block(progress)
	if v.SubmitVisible {
		c.blank()
		label := v.SubmitText
		if label == "" {
			label = appI18n.T(ctx, "Submit")
		}
		rects := c.row([]cell{{text: buttonStyle.Render(label), kind: input.RegionSubmit}})
		c.screen.Regions = append(c.screen.Regions, input.Region{Kind: input.RegionSubmit, Rect: rects[0]})
	}
	c.blank()
	c.block(dimStyle.Render(appI18n.T(ctx, "KeyHelp")))
	return c.render()
}

func (l Layout) assetLabel(ctx context.Context, path string, width int) string {
	if path == "" || !l.exists(path) {
		return dimStyle.Render(truncate(appI18n.T(ctx, "ImageMissing"), width))
	}
	return dimStyle.Render(truncate(filepath.Base(path), width))
}

func phaseTitle(ctx context.Context, name model.PhaseName) string {
	switch name {
	case model.PhasePractice:
		return appI18n.T(ctx, "PhasePractice")
	case model.PhaseFormal:
		return appI18n.T(ctx, "PhaseFormal")
	}
	return string(name)
}

// formatClock renders seconds as mm:ss, clamped at zero.
func formatClock(seconds float64) string {
	s := int(max(0, seconds))
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
