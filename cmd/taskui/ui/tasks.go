package ui

import (
	"fmt"
	"strings"
	"time"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Intents the tasks view hands to the root model.
type (
	setStatusMsg struct {
		ID     uint
		Status string
	}
	deleteTaskMsg    struct{ ID uint }
	openFormMsg      struct{ Kind formKind }
	showUsersMsg     struct{}
	refreshTasksMsg  struct{}
	logoutRequestMsg struct{}
)

// confirmation holds a destructive or irreversible action until the user
// answers y.
type confirmation struct {
	Prompt string
	Msg    tea.Msg
}

type TasksModel struct {
	Session   Session
	All       []dto.TaskResponse
	Visible   []dto.TaskResponse
	Users     []dto.UserBrief
	Cursor    int
	Status    string
	Executor  textinput.Model
	Filtering bool
	Confirm   *confirmation
	Notice    string
	Err       error
	Height    int
	Now       func() time.Time
}

func NewTasksModel(sess Session) TasksModel {
	ti := textinput.New()
	ti.Prompt = "Executor: "
	ti.Placeholder = "name contains..."
	ti.CharLimit = 64
	return TasksModel{Session: sess, Executor: ti, Height: 15, Now: time.Now}
}

func (m TasksModel) SetData(tasks []dto.TaskResponse, users []dto.UserBrief) TasksModel {
	m.All = tasks
	if users != nil {
		m.Users = users
	}
	m.Err = nil
	return m.refilter()
}

func (m TasksModel) refilter() TasksModel {
	m.Visible = SortTasks(FilterTasks(m.All, m.Status, m.Executor.Value()))
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	return m
}

func (m TasksModel) selected() (dto.TaskResponse, bool) {
	if len(m.Visible) == 0 {
		return dto.TaskResponse{}, false
	}
	return m.Visible[m.Cursor], true
}

func emit(msg tea.Msg) tea.Cmd { return func() tea.Msg { return msg } }

func (m TasksModel) Update(msg tea.Msg) (TasksModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.Filtering {
			var cmd tea.Cmd
			m.Executor, cmd = m.Executor.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.Confirm != nil {
		c := m.Confirm
		m.Confirm = nil
		if key.String() == "y" {
			return m, emit(c.Msg)
		}
		m.Notice = "cancelled"
		return m, nil
	}

	if m.Filtering {
		switch key.Type {
		case tea.KeyEnter:
			m.Filtering = false
			m.Executor.Blur()
			return m, nil
		case tea.KeyEsc:
			m.Filtering = false
			m.Executor.Blur()
			m.Executor.SetValue("")
			return m.refilter(), nil
		}
		var cmd tea.Cmd
		m.Executor, cmd = m.Executor.Update(msg)
		return m.refilter(), cmd
	}

	m.Notice = ""
	switch key.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
		}
	case "r":
		return m, emit(refreshTasksMsg{})
	case "f":
		m.Status = nextStatusFilter(m.Status)
		return m.refilter(), nil
	case "/":
		m.Filtering = true
		return m, m.Executor.Focus()
	case "L":
		return m, emit(logoutRequestMsg{})
	case "q":
		return m, tea.Quit
	}

	t, has := m.selected()
	if m.Session.IsAdmin() {
		switch key.String() {
		case "n":
			return m, emit(openFormMsg{Kind: formCreateTask})
		case "c":
			return m, emit(openFormMsg{Kind: formCreateUser})
		case "u":
			return m, emit(showUsersMsg{})
		case "p":
			return m, emit(showCompletionsMsg{})
		case "s", "enter":
			if has {
				return m, emit(setStatusMsg{ID: t.ID, Status: toggledStatus(t.Status)})
			}
		case "x", "delete":
			if has {
				m.Confirm = &confirmation{Prompt: fmt.Sprintf("Delete task #%d %q? (y/n)", t.ID, t.Title), Msg: deleteTaskMsg{ID: t.ID}}
			}
		}
		return m, nil
	}

	switch key.String() {
	case "d", "enter":
		if !has {
			break
		}
		if t.Status == models.StatusDone {
			m.Notice = "task is already done"
			break
		}
		m.Confirm = &confirmation{
			Prompt: fmt.Sprintf("Send task #%d %q for confirmation as done? (y/n)", t.ID, t.Title),
			Msg:    setStatusMsg{ID: t.ID, Status: models.StatusDone},
		}
	}
	return m, nil
}

const (
	colID     = 5
	colTitle  = 28
	colDue    = 11
	colStatus = 9
	colExec   = 30
)

func taskLine(t dto.TaskResponse) string {
	due := "-"
	if t.DueDate != nil {
		due = *t.DueDate
	}
	return strings.Join([]string{
		pad(fmt.Sprintf("%d", t.ID), colID),
		pad(t.Title, colTitle),
		pad(due, colDue),
		pad(t.Status, colStatus),
		pad(t.Executors, colExec),
	}, " ")
}

func (m TasksModel) View() string {
	var b strings.Builder
	who := fmt.Sprintf("Tasks - %s (%s)", m.Session.Name, m.Session.Role)
	b.WriteString(titleStyle.Render(who) + "\n\n")

	status := m.Status
	if status == "" {
		status = "all"
	}
	b.WriteString(blurredStyle.Render("Status: ") + status + "   " + m.Executor.View() + "\n\n")

	b.WriteString(headerStyle.Render(taskLine(dto.TaskResponse{Title: "Title", Status: "Status", Executors: "Executors", DueDate: strPtr("Due")})) + "\n")
	if len(m.Visible) == 0 {
		b.WriteString(blurredStyle.Render("no tasks") + "\n")
	}

	now := m.Now()
	start := 0
	if m.Height > 0 && m.Cursor >= m.Height {
		start = m.Cursor - m.Height + 1
	}
	for i := start; i < len(m.Visible) && (m.Height <= 0 || i < start+m.Height); i++ {
		t := m.Visible[i]
		line := taskLine(t)
		style := rowStyle(ClassifyDue(t, now))
		if t.Status == models.StatusDone {
			style = doneStyle
		}
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
			continue
		}
		b.WriteString(style.Render("  "+line) + "\n")
	}

	if t, ok := m.selected(); ok && t.Description != "" {
		b.WriteString("\n" + blurredStyle.Render("Description: ") + truncate(t.Description, 200) + "\n")
	}

	b.WriteString("\n")
	if m.Session.IsAdmin() {
		b.WriteString(blurredStyle.Render("s toggle status · x delete · n new task · c new user · u users · p completion requests · f status filter · / executor filter · r refresh · L logout · q quit"))
	} else {
		b.WriteString(blurredStyle.Render("d mark done · f status filter · / executor filter · r refresh · L logout · q quit"))
	}

	if m.Confirm != nil {
		b.WriteString("\n\n" + focusedStyle.Render(m.Confirm.Prompt))
	}
	if m.Notice != "" {
		b.WriteString("\n\n" + statusMessageStyle(m.Notice))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}

func strPtr(s string) *string { return &s }
