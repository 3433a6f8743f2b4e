package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"task-tracker/backend/app/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return e.Message
}

// isAuthError reports whether err means the stored token is no longer
// usable. A role denial is not an auth error.
func isAuthError(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	if ae.Status == http.StatusUnauthorized {
		return true
	}
	return ae.Status == http.StatusForbidden && (ae.Message == "invalid token" || ae.Message == "token revoked")
}

// Client talks to the task tracker HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: 15 * time.Second}}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		Log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	Log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg dto.MessageResponse
		_ = json.Unmarshal(raw, &msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func idPath(prefix string, id uint) string { return prefix + "/" + strconv.FormatUint(uint64(id), 10) }

func (c *Client) Login(ctx context.Context, username, password string) (dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", dto.LoginRequest{Username: username, Password: password}, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Tasks(ctx context.Context) ([]dto.TaskResponse, error) {
	var tasks []dto.TaskResponse
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

func (c *Client) AllUsers(ctx context.Context) ([]dto.UserBrief, error) {
	var users []dto.UserBrief
	err := c.do(ctx, http.MethodGet, "/all-users", nil, &users)
	return users, err
}

func (c *Client) Users(ctx context.Context) ([]dto.UserResponse, error) {
	var users []dto.UserResponse
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (dto.CreateTaskResponse, error) {
	var resp dto.CreateTaskResponse
	err := c.do(ctx, http.MethodPost, "/tasks", req, &resp)
	return resp, err
}

func (c *Client) SetStatus(ctx context.Context, id uint, status string) error {
	return c.do(ctx, http.MethodPut, idPath("/tasks", id)+"/status", dto.UpdateStatusRequest{Status: status}, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/tasks", id), nil, nil)
}

func (c *Client) CreateUser(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users", req, nil)
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req dto.UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, idPath("/users", id), req, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/users", id), nil, nil)
}

// CompletionRequests lists completion requests; an empty status lists all.
func (c *Client) CompletionRequests(ctx context.Context, status string) ([]dto.CompletionResponse, error) {
	path := "/completion-requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var reqs []dto.CompletionResponse
	err := c.do(ctx, http.MethodGet, path, nil, &reqs)
	return reqs, err
}

func (c *Client) DecideCompletion(ctx context.Context, id uint, status string) error {
	return c.do(ctx, http.MethodPut, idPath("/completion-requests", id), dto.DecideCompletionRequest{Status: status}, nil)
}
