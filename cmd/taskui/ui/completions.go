package ui

import (
	"fmt"
	"strings"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	decideCompletionMsg struct {
		ID     uint
		Status string
	}
	showCompletionsMsg    struct{}
	refreshCompletionsMsg struct{}
)

// CompletionsModel is the admin queue of tasks workers marked done.
type CompletionsModel struct {
	Table    table.Model
	Requests []dto.CompletionResponse
	// Filter is the status shown; empty shows every request.
	Filter  string
	Confirm *confirmation
	Notice  string
	Err     error
}

func NewCompletionsModel(height int) CompletionsModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Task", Width: 28},
		{Title: "Worker", Width: 20},
		{Title: "Requested", Width: 20},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	sStyle := table.DefaultStyles()
	sStyle.Header = sStyle.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	sStyle.Selected = sStyle.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(sStyle)

	return CompletionsModel{Table: t, Filter: models.CompletionPending}
}

func nextCompletionFilter(cur string) string {
	switch cur {
	case models.CompletionPending:
		return models.CompletionConfirmed
	case models.CompletionConfirmed:
		return models.CompletionRejected
	case models.CompletionRejected:
		return ""
	default:
		return models.CompletionPending
	}
}

func (m CompletionsModel) SetRequests(reqs []dto.CompletionResponse) CompletionsModel {
	m.Requests = reqs
	m.Err = nil
	rows := make([]table.Row, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", r.ID),
			fmt.Sprintf("#%d %s", r.TaskID, r.TaskTitle),
			r.UserName,
			r.RequestedAt,
			r.Status,
		})
	}
	m.Table.SetRows(rows)
	if m.Table.Cursor() >= len(rows) {
		m.Table.SetCursor(0)
	}
	return m
}

func (m CompletionsModel) selected() (dto.CompletionResponse, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Requests) {
		return dto.CompletionResponse{}, false
	}
	return m.Requests[i], true
}

func (m CompletionsModel) Update(msg tea.Msg) (CompletionsModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.Confirm != nil {
			c := m.Confirm
			m.Confirm = nil
			if key.String() == "y" {
				return m, emit(c.Msg)
			}
			m.Notice = "cancelled"
			return m, nil
		}
		m.Notice = ""
		req, has := m.selected()
		switch key.String() {
		case "r":
			return m, emit(refreshCompletionsMsg{})
		case "f":
			m.Filter = nextCompletionFilter(m.Filter)
			return m, emit(refreshCompletionsMsg{})
		case "a", "enter":
			if !has {
				return m, nil
			}
			if req.Status != models.CompletionPending {
				m.Notice = "request already " + req.Status
				return m, nil
			}
			return m, emit(decideCompletionMsg{ID: req.ID, Status: models.CompletionConfirmed})
		case "x":
			if !has {
				return m, nil
			}
			if req.Status != models.CompletionPending {
				m.Notice = "request already " + req.Status
				return m, nil
			}
			m.Confirm = &confirmation{
				Prompt: fmt.Sprintf("Reject %s's request for task #%d and reopen it? (y/n)", req.UserName, req.TaskID),
				Msg:    decideCompletionMsg{ID: req.ID, Status: models.CompletionRejected},
			}
			return m, nil
		case "esc", "b", "t":
			return m, emit(showTasksMsg{})
		case "q":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m CompletionsModel) View() string {
	var b strings.Builder
	filter := m.Filter
	if filter == "" {
		filter = "all"
	}
	b.WriteString(titleStyle.Render("Completion requests") + "  " + blurredStyle.Render("Status: ") + filter + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("a confirm · x reject · f status filter · r refresh · Esc back to tasks · q quit"))
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
