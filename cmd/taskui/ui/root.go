package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"

	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateLogin state = iota
	stateTasks
	stateUsers
	stateForm
	stateCompletions
)

type formKind int

const (
	formCreateTask formKind = iota + 1
	formCreateUser
	formEditUser
)

const requestTimeout = 10 * time.Second

// Results of API calls.
type (
	loginDoneMsg struct {
		Resp dto.LoginResponse
		Err  error
	}
	tasksLoadedMsg struct {
		Tasks []dto.TaskResponse
		Users []dto.UserBrief
		Err   error
	}
	usersLoadedMsg struct {
		Users []dto.UserResponse
		Err   error
	}
	completionsLoadedMsg struct {
		Requests []dto.CompletionResponse
		Err      error
	}
	actionDoneMsg struct {
		Notice string
		Err    error
	}
	formDoneMsg struct {
		Notice string
		Err    error
	}
	loggedOutMsg struct{}
)

type RootModel struct {
	State       state
	Client      *Client
	Store       SessionStore
	Session     Session
	Login       LoginModel
	Tasks       TasksModel
	Users       UsersModel
	Completions CompletionsModel
	Form        FormModel
	FormKind    formKind
	FormBack    state
	EditID      uint
	Quitting    bool
	width       int
	height      int
}

// NewRootModel resumes a saved session when there is one; a stale token
// sends the user back to the login form on the first request.
func NewRootModel(client *Client, store SessionStore) RootModel {
	m := RootModel{
		State:       stateLogin,
		Client:      client,
		Store:       store,
		Login:       NewLoginModel(client.BaseURL),
		Users:       NewUsersModel(15),
		Completions: NewCompletionsModel(15),
	}
	sess, err := store.Load()
	if err != nil {
		Log.Warn().Err(err).Msg("load session")
	}
	if sess.Token != "" {
		m.Session = sess
		client.Token = sess.Token
		m.State = stateTasks
		m.Tasks = NewTasksModel(sess)
	}
	return m
}

func (m RootModel) Init() tea.Cmd {
	if m.State == stateTasks {
		return m.loadTasks()
	}
	return m.Login.Init()
}

func (m RootModel) loadTasks() tea.Cmd {
	c := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := c.Tasks(ctx)
		if err != nil {
			return tasksLoadedMsg{Err: err}
		}
		// the user list only feeds the assignee hint; a failure is not fatal
		users, err := c.AllUsers(ctx)
		if err != nil {
			Log.Warn().Err(err).Msg("load users for assignee hint")
		}
		return tasksLoadedMsg{Tasks: tasks, Users: users}
	}
}

func (m RootModel) loadUsers() tea.Cmd {
	c := m.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		users, err := c.Users(ctx)
		return usersLoadedMsg{Users: users, Err: err}
	}
}

func (m RootModel) loadCompletions() tea.Cmd {
	c, filter := m.Client, m.Completions.Filter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		reqs, err := c.CompletionRequests(ctx, filter)
		return completionsLoadedMsg{Requests: reqs, Err: err}
	}
}

// call runs fn with a request context and reports through wrap.
func call(fn func(ctx context.Context) error, wrap func(error) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return wrap(fn(ctx))
	}
}

func action(notice string) func(error) tea.Msg {
	return func(err error) tea.Msg { return actionDoneMsg{Notice: notice, Err: err} }
}

func formResult(notice string) func(error) tea.Msg {
	return func(err error) tea.Msg { return formDoneMsg{Notice: notice, Err: err} }
}

func (m RootModel) toLogin(reason string) (RootModel, tea.Cmd) {
	if err := m.Store.Clear(); err != nil {
		Log.Warn().Err(err).Msg("clear session")
	}
	m.Client.Token = ""
	m.Session = Session{}
	m.State = stateLogin
	m.Login = NewLoginModel(m.Client.BaseURL)
	if reason != "" {
		m.Login.Err = fmt.Errorf("%s", reason)
	}
	return m, m.Login.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 14; h > 3 {
			m.Tasks.Height = h
			m.Users.Table.SetHeight(h)
			m.Completions.Table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}

	case loginRequestedMsg:
		m.Client.BaseURL = msg.Server
		c := m.Client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			resp, err := c.Login(ctx, msg.Username, msg.Password)
			return loginDoneMsg{Resp: resp, Err: err}
		}

	case loginDoneMsg:
		m.Login.Busy = false
		if msg.Err != nil {
			m.Login.Err = msg.Err
			return m, nil
		}
		m.Session = Session{Token: msg.Resp.Token, Name: msg.Resp.User.Name, Role: msg.Resp.User.Role}
		m.Client.Token = m.Session.Token
		if err := m.Store.Save(m.Session); err != nil {
			Log.Warn().Err(err).Msg("save session")
		}
		Log.Info().Str("name", m.Session.Name).Str("role", m.Session.Role).Msg("logged in")
		m.State = stateTasks
		m.Tasks = NewTasksModel(m.Session)
		if h := m.height - 14; h > 3 {
			m.Tasks.Height = h
		}
		return m, m.loadTasks()

	case tasksLoadedMsg:
		if isAuthError(msg.Err) {
			return m.toLogin("session expired, please log in again")
		}
		if msg.Err != nil {
			m.Tasks.Err = msg.Err
			return m, nil
		}
		m.Tasks = m.Tasks.SetData(msg.Tasks, msg.Users)
		return m, nil

	case usersLoadedMsg:
		if isAuthError(msg.Err) {
			return m.toLogin("session expired, please log in again")
		}
		if msg.Err != nil {
			m.Users.Err = msg.Err
			return m, nil
		}
		m.Users = m.Users.SetUsers(msg.Users)
		return m, nil

	case completionsLoadedMsg:
		if isAuthError(msg.Err) {
			return m.toLogin("session expired, please log in again")
		}
		if msg.Err != nil {
			m.Completions.Err = msg.Err
			return m, nil
		}
		m.Completions = m.Completions.SetRequests(msg.Requests)
		return m, nil

	case actionDoneMsg:
		if isAuthError(msg.Err) {
			return m.toLogin("session expired, please log in again")
		}
		if m.State == stateCompletions {
			m.Completions.Err, m.Completions.Notice = msg.Err, ""
			if msg.Err == nil {
				m.Completions.Notice = msg.Notice
			}
			return m, m.loadCompletions()
		}
		if m.State == stateUsers {
			m.Users.Err, m.Users.Notice = msg.Err, ""
			if msg.Err == nil {
				m.Users.Notice = msg.Notice
			}
			return m, m.loadUsers()
		}
		m.Tasks.Err, m.Tasks.Notice = msg.Err, ""
		if msg.Err == nil {
			m.Tasks.Notice = msg.Notice
		}
		return m, m.loadTasks()

	case formDoneMsg:
		if isAuthError(msg.Err) {
			return m.toLogin("session expired, please log in again")
		}
		m.Form.Busy = false
		if msg.Err != nil {
			m.Form.Err = msg.Err
			return m, nil
		}
		m.State = m.FormBack
		if m.State == stateUsers {
			m.Users.Notice = msg.Notice
			return m, m.loadUsers()
		}
		m.Tasks.Notice = msg.Notice
		return m, m.loadTasks()

	case logoutRequestMsg:
		c := m.Client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := c.Logout(ctx); err != nil {
				Log.Warn().Err(err).Msg("logout")
			}
			return loggedOutMsg{}
		}

	case loggedOutMsg:
		return m.toLogin("")

	case refreshTasksMsg:
		return m, m.loadTasks()

	case refreshUsersMsg:
		return m, m.loadUsers()

	case refreshCompletionsMsg:
		return m, m.loadCompletions()

	case showCompletionsMsg:
		m.State = stateCompletions
		return m, m.loadCompletions()

	case decideCompletionMsg:
		id, status, c := msg.ID, msg.Status, m.Client
		return m, call(func(ctx context.Context) error { return c.DecideCompletion(ctx, id, status) }, action(fmt.Sprintf("request #%d %s", id, status)))

	case showUsersMsg:
		m.State = stateUsers
		return m, m.loadUsers()

	case showTasksMsg:
		m.State = stateTasks
		return m, m.loadTasks()

	case setStatusMsg:
		id, status := msg.ID, msg.Status
		c := m.Client
		notice := fmt.Sprintf("task #%d set to %s", id, status)
		if !m.Session.IsAdmin() {
			notice = fmt.Sprintf("task #%d sent for confirmation", id)
		}
		return m, call(func(ctx context.Context) error { return c.SetStatus(ctx, id, status) }, action(notice))

	case deleteTaskMsg:
		id, c := msg.ID, m.Client
		return m, call(func(ctx context.Context) error { return c.DeleteTask(ctx, id) }, action(fmt.Sprintf("task #%d deleted", id)))

	case deleteUserMsg:
		id, c := msg.ID, m.Client
		return m, call(func(ctx context.Context) error { return c.DeleteUser(ctx, id) }, action("user deleted"))

	case openFormMsg:
		return m.openForm(msg.Kind, dto.UserResponse{})

	case editUserMsg:
		return m.openForm(formEditUser, msg.User)

	case formCancelledMsg:
		m.State = m.FormBack
		return m, nil

	case formSubmittedMsg:
		return m.submitForm(msg.Values)
	}

	var cmd tea.Cmd
	switch m.State {
	case stateLogin:
		m.Login, cmd = m.Login.Update(msg)
	case stateTasks:
		m.Tasks, cmd = m.Tasks.Update(msg)
	case stateUsers:
		m.Users, cmd = m.Users.Update(msg)
	case stateForm:
		m.Form, cmd = m.Form.Update(msg)
	case stateCompletions:
		m.Completions, cmd = m.Completions.Update(msg)
	}
	return m, cmd
}

func roleHint() string { return models.RoleAdmin + " or " + models.RoleWorker }

func (m RootModel) openForm(kind formKind, u dto.UserResponse) (RootModel, tea.Cmd) {
	m.FormBack = m.State
	m.FormKind = kind
	switch kind {
	case formCreateTask:
		m.Form = NewFormModel("New task", []FieldDef{
			{Name: "title", Label: "Title", Placeholder: "required"},
			{Name: "description", Label: "Description"},
			{Name: "due_date", Label: "Due date", Placeholder: "YYYY-MM-DD, optional"},
			{Name: "assignees", Label: "Assignees", Placeholder: "usernames or ids, comma separated"},
		})
		m.Form.Hint = "Users: " + userHint(m.Tasks.Users)
	case formCreateUser:
		m.Form = NewFormModel("New user", []FieldDef{
			{Name: "name", Label: "Name"},
			{Name: "username", Label: "Username"},
			{Name: "password", Label: "Password", Secret: true},
			{Name: "role", Label: "Role", Placeholder: roleHint(), Default: models.RoleWorker},
		})
	case formEditUser:
		m.EditID = u.ID
		m.Form = NewFormModel(fmt.Sprintf("Edit user #%d", u.ID), []FieldDef{
			{Name: "name", Label: "Name", Default: u.Name},
			{Name: "username", Label: "Username", Default: u.Username},
			{Name: "role", Label: "Role", Placeholder: roleHint(), Default: u.Role},
		})
	}
	m.State = stateForm
	return m, m.Form.Init()
}

func userHint(users []dto.UserBrief) string {
	if len(users) == 0 {
		return "(none loaded)"
	}
	s := ""
	for i, u := range users {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatUint(uint64(u.ID), 10) + ":" + u.Username
	}
	return s
}

func (m RootModel) submitForm(v map[string]string) (RootModel, tea.Cmd) {
	c := m.Client
	switch m.FormKind {
	case formCreateTask:
		assignees, err := ResolveAssignees(v["assignees"], m.Tasks.Users)
		if err != nil {
			m.Form.Busy = false
			m.Form.Err = err
			return m, nil
		}
		req := dto.CreateTaskRequest{Title: v["title"], Description: v["description"], Assignees: assignees}
		if v["due_date"] != "" {
			due := v["due_date"]
			req.DueDate = &due
		}
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			resp, err := c.CreateTask(ctx, req)
			return formDoneMsg{Notice: fmt.Sprintf("task #%d created", resp.ID), Err: err}
		}
	case formCreateUser:
		req := dto.RegisterRequest{Name: v["name"], Username: v["username"], Password: v["password"], Role: v["role"]}
		return m, call(func(ctx context.Context) error { return c.CreateUser(ctx, req) }, formResult("user "+req.Username+" created"))
	case formEditUser:
		id := m.EditID
		req := dto.UpdateUserRequest{Name: v["name"], Username: v["username"], Role: v["role"]}
		return m, call(func(ctx context.Context) error { return c.UpdateUser(ctx, id, req) }, formResult("user updated"))
	}
	m.State = m.FormBack
	return m, nil
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	var body string
	switch m.State {
	case stateLogin:
		body = m.Login.View()
	case stateTasks:
		body = m.Tasks.View()
	case stateUsers:
		body = m.Users.View()
	case stateForm:
		body = m.Form.View()
	case stateCompletions:
		body = m.Completions.View()
	default:
		body = "Unknown state"
	}
	return docStyle.Render(body)
}
