package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	inputServer = iota
	inputUsername
	inputPassword
)

type loginRequestedMsg struct {
	Server, Username, Password string
}

type LoginModel struct {
	Inputs   []textinput.Model
	FocusIdx int
	Err      error
	Busy     bool
}

func NewLoginModel(server string) LoginModel {
	inputs := make([]textinput.Model, 3)

	inputs[inputServer] = textinput.New()
	inputs[inputServer].Placeholder = "http://localhost:3001"
	inputs[inputServer].Prompt = "Server: "
	inputs[inputServer].SetValue(server)

	inputs[inputUsername] = textinput.New()
	inputs[inputUsername].Placeholder = "login"
	inputs[inputUsername].Prompt = "Username: "
	inputs[inputUsername].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].Prompt = "Password: "

	return LoginModel{Inputs: inputs, FocusIdx: inputUsername}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.Busy {
			return m, nil
		}
		switch key.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 {
				return m.submit()
			}
			m.nextInput()
			return m, nil
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
			return m, nil
		}
	}

	cmds := make([]tea.Cmd, len(m.Inputs))
	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	req := loginRequestedMsg{
		Server:   strings.TrimSpace(m.Inputs[inputServer].Value()),
		Username: strings.TrimSpace(m.Inputs[inputUsername].Value()),
		Password: m.Inputs[inputPassword].Value(),
	}
	if req.Server == "" || req.Username == "" || req.Password == "" {
		m.Err = fmt.Errorf("server, username and password are required")
		return m, nil
	}
	m.Err = nil
	m.Busy = true
	return m, func() tea.Msg { return req }
}

func (m *LoginModel) nextInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx + 1) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m *LoginModel) prevInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx - 1 + len(m.Inputs)) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Task Tracker - Login") + "\n\n")

	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}

	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("Press Tab to change fields, Enter to submit, Ctrl+C to quit"))

	if m.Busy {
		b.WriteString("\n\n" + statusMessageStyle("Signing in..."))
	}
	if m.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorMessageStyle(m.Err.Error()))
	}

	return b.String()
}
