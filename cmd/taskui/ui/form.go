package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type FieldDef struct {
	Name        string
	Label       string
	Placeholder string
	Default     string
	Secret      bool
}

type formSubmittedMsg struct{ Values map[string]string }

type formCancelledMsg struct{}

// FormModel is a vertical list of text inputs. Enter on the last field
// submits, Esc cancels.
type FormModel struct {
	Title   string
	Hint    string
	Fields  []FieldDef
	Inputs  []textinput.Model
	Focused int
	Err     error
	Busy    bool
}

func NewFormModel(title string, fields []FieldDef) FormModel {
	m := FormModel{Title: title, Fields: fields, Inputs: make([]textinput.Model, len(fields))}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = f.Label + ": "
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 256
		if f.Default != "" {
			ti.SetValue(f.Default)
		}
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
		}
		m.Inputs[i] = ti
	}
	if len(m.Inputs) > 0 {
		m.Inputs[0].Focus()
		m.Inputs[0].PromptStyle = focusedStyle
	}
	return m
}

func (m FormModel) Init() tea.Cmd { return textinput.Blink }

func (m FormModel) Values() map[string]string {
	out := make(map[string]string, len(m.Fields))
	for i, f := range m.Fields {
		out[f.Name] = strings.TrimSpace(m.Inputs[i].Value())
	}
	return out
}

func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.Busy {
			return m, nil
		}
		switch key.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return formCancelledMsg{} }
		case tea.KeyEnter:
			if m.Focused == len(m.Inputs)-1 {
				values := m.Values()
				m.Busy = true
				m.Err = nil
				return m, func() tea.Msg { return formSubmittedMsg{Values: values} }
			}
			m.move(1)
			return m, nil
		case tea.KeyTab, tea.KeyDown:
			m.move(1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.move(-1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	if len(m.Inputs) > 0 {
		m.Inputs[m.Focused], cmd = m.Inputs[m.Focused].Update(msg)
	}
	return m, cmd
}

func (m *FormModel) move(delta int) {
	if len(m.Inputs) == 0 {
		return
	}
	m.Inputs[m.Focused].Blur()
	m.Inputs[m.Focused].PromptStyle = noStyle
	m.Focused = (m.Focused + delta + len(m.Inputs)) % len(m.Inputs)
	m.Inputs[m.Focused].Focus()
	m.Inputs[m.Focused].PromptStyle = focusedStyle
}

func (m FormModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title) + "\n\n")
	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View() + "\n")
	}
	if m.Hint != "" {
		b.WriteString("\n" + blurredStyle.Render(m.Hint) + "\n")
	}
	b.WriteString("\n" + blurredStyle.Render("Tab to change fields, Enter on the last field to submit, Esc to cancel"))
	if m.Busy {
		b.WriteString("\n\n" + statusMessageStyle("Saving..."))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
