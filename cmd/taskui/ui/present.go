package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"
)

type DueClass int

const (
	DueNormal DueClass = iota
	DueSoon
	DueOverdue
)

// soonDays is how close a due date must be to be highlighted.
const soonDays = 7

func dueDate(t dto.TaskResponse) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(dto.DateLayout, *t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ClassifyDue colours open tasks by distance to their due date in whole
// calendar days from now's local date. Done and undated tasks are normal.
func ClassifyDue(t dto.TaskResponse, now time.Time) DueClass {
	if t.Status == models.StatusDone {
		return DueNormal
	}
	due, ok := dueDate(t)
	if !ok {
		return DueNormal
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(due.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return DueOverdue
	case days <= soonDays:
		return DueSoon
	}
	return DueNormal
}

// SortTasks orders by due date, undated last, then id. The input is not
// modified.
func SortTasks(tasks []dto.TaskResponse) []dto.TaskResponse {
	out := append([]dto.TaskResponse(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		di, oki := dueDate(out[i])
		dj, okj := dueDate(out[j])
		if oki != okj {
			return oki
		}
		if oki && !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FilterTasks keeps tasks with the given status ("" for any) whose
// executors contain executor, case-insensitively.
func FilterTasks(tasks []dto.TaskResponse, status, executor string) []dto.TaskResponse {
	executor = strings.ToLower(strings.TrimSpace(executor))
	out := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		if executor != "" && !strings.Contains(strings.ToLower(t.Executors), executor) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// nextStatusFilter cycles any -> not-done -> done -> any.
func nextStatusFilter(cur string) string {
	switch cur {
	case "":
		return models.StatusNotDone
	case models.StatusNotDone:
		return models.StatusDone
	}
	return ""
}

func toggledStatus(cur string) string {
	if cur == models.StatusDone {
		return models.StatusNotDone
	}
	return models.StatusDone
}

// ResolveAssignees turns "2, bob" into user ids, matching each item
// against ids first and then usernames.
func ResolveAssignees(raw string, users []dto.UserBrief) ([]uint, error) {
	var ids []uint
	seen := map[uint]bool{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, found := uint(0), false
		if n, err := strconv.ParseUint(item, 10, 64); err == nil {
			for _, u := range users {
				if u.ID == uint(n) {
					id, found = u.ID, true
					break
				}
			}
		}
		if !found {
			for _, u := range users {
				if strings.EqualFold(u.Username, item) {
					id, found = u.ID, true
					break
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown user %q", item)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one assignee is required")
	}
	return ids, nil
}

// truncate cuts s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	s = truncate(s, n)
	if c := utf8.RuneCountInString(s); c < n {
		s += strings.Repeat(" ", n-c)
	}
	return s
}
