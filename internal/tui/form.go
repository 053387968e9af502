package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/rapm/internal/config"
	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/model"
)

const (
	fieldParticipantID = iota
	fieldAge
	fieldGender
	fieldSession
	fieldNotes
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"FieldParticipantID", "FieldAge", "FieldGender", "FieldSession", "FieldNotes",
}

// formModel collects participant metadata before the first phase.
type formModel struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
	keys   KeyMap
}

func newForm(keys KeyMap, defaults model.Participant) formModel {
	f := formModel{keys: keys}
	limits := [fieldCount]int{64, 8, 32, 32, 256}
	values := [fieldCount]string{defaults.ID, defaults.Age, defaults.Gender, defaults.Session, defaults.Notes}
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = limits[i]
		ti.Width = 40
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	if f.inputs[fieldSession].Value() == "" {
		f.inputs[fieldSession].SetValue("S1")
	}
	f.inputs[fieldParticipantID].Focus()
	return f
}

func (f formModel) participant() model.Participant {
	v := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }
	return model.Participant{
		ID:      v(fieldParticipantID),
		Age:     v(fieldAge),
		Gender:  v(fieldGender),
		Session: v(fieldSession),
		Notes:   v(fieldNotes),
	}
}

func (f *formModel) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// update returns a non-nil participant once the form is confirmed with
// valid data.
func (f formModel) update(ctx context.Context, msg tea.Msg) (formModel, *model.Participant, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.NextField):
			f.setFocus(f.focus + 1)
			return f, nil, nil
		case key.Matches(msg, f.keys.PrevField):
			f.setFocus(f.focus - 1)
			return f, nil, nil
		case key.Matches(msg, f.keys.Confirm):
			p := f.participant()
			if err := config.ValidateParticipant(p); err != nil {
				f.err = err.Error()
				if p.ID == "" {
					f.err = appI18n.T(ctx, "ParticipantRequired")
				} else if msg, ok := config.FieldErrors(err)["ID"]; ok {
					f.err = msg
				}
				f.setFocus(fieldParticipantID)
				return f, nil, nil
			}
			f.err = ""
			return f, &p, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, nil, cmd
}

func (f formModel) view(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(appI18n.T(ctx, "AppTitle")) + "\n")
	b.WriteString("  " + dimStyle.Render(appI18n.T(ctx, "FormTitle")) + "\n\n")
	for i, in := range f.inputs {
		style := labelStyle
		if i == f.focus {
			style = focusedLabelStyle
		}
		b.WriteString("  " + style.Render(appI18n.T(ctx, fieldLabels[i])) + in.View() + "\n")
	}
	if f.err != "" {
		b.WriteString("\n  " + errorStyle.Render(f.err) + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render(appI18n.T(ctx, "FormHint")) + "\n")
	return b.String()
}
