package ui

import (
	"fmt"
	"strings"

	"task-tracker/backend/app/dto"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	editUserMsg     struct{ User dto.UserResponse }
	deleteUserMsg   struct{ ID uint }
	showTasksMsg    struct{}
	refreshUsersMsg struct{}
)

type UsersModel struct {
	Table   table.Model
	Users   []dto.UserResponse
	Confirm *confirmation
	Notice  string
	Err     error
}

func NewUsersModel(height int) UsersModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Username", Width: 20},
		{Title: "Role", Width: 8},
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

	return UsersModel{Table: t}
}

func (m UsersModel) SetUsers(users []dto.UserResponse) UsersModel {
	m.Users = users
	m.Err = nil
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{fmt.Sprintf("%d", u.ID), u.Name, u.Username, u.Role})
	}
	m.Table.SetRows(rows)
	return m
}

func (m UsersModel) selected() (dto.UserResponse, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Users) {
		return dto.UserResponse{}, false
	}
	return m.Users[i], true
}

func (m UsersModel) Update(msg tea.Msg) (UsersModel, tea.Cmd) {
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
		u, has := m.selected()
		switch key.String() {
		case "r":
			return m, emit(refreshUsersMsg{})
		case "c":
			return m, emit(openFormMsg{Kind: formCreateUser})
		case "e", "enter":
			if has {
				return m, emit(editUserMsg{User: u})
			}
			return m, nil
		case "x", "delete":
			if has {
				m.Confirm = &confirmation{Prompt: fmt.Sprintf("Delete user %q and their assignments? (y/n)", u.Username), Msg: deleteUserMsg{ID: u.ID}}
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

func (m UsersModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Users") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("e edit · x delete · c new user · r refresh · Esc back to tasks · q quit"))
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
