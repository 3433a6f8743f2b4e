package ui

import (
	"testing"
	"time"

	"task-tracker/backend/app/dto"
)

func day(s string) *string { return &s }

func ids(tasks []dto.TaskResponse) []uint {
	out := make([]uint, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassifyDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		task dto.TaskResponse
		want DueClass
	}{
		{"undated", dto.TaskResponse{Status: "not-done"}, DueNormal},
		{"yesterday", dto.TaskResponse{Status: "not-done", DueDate: day("2026-03-09")}, DueOverdue},
		{"today", dto.TaskResponse{Status: "not-done", DueDate: day("2026-03-10")}, DueSoon},
		{"in a week", dto.TaskResponse{Status: "not-done", DueDate: day("2026-03-17")}, DueSoon},
		{"in eight days", dto.TaskResponse{Status: "not-done", DueDate: day("2026-03-18")}, DueNormal},
		{"overdue but done", dto.TaskResponse{Status: "done", DueDate: day("2026-01-01")}, DueNormal},
		{"garbage date", dto.TaskResponse{Status: "not-done", DueDate: day("soon")}, DueNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyDue(tc.task, now); got != tc.want {
				t.Errorf("ClassifyDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortTasks(t *testing.T) {
	in := []dto.TaskResponse{
		{ID: 1},
		{ID: 2, DueDate: day("2026-05-02")},
		{ID: 3, DueDate: day("2026-04-01")},
		{ID: 4, DueDate: day("2026-05-02")},
		{ID: 0},
	}
	got := ids(SortTasks(in))
	want := []uint{3, 2, 4, 0, 1}
	if !equalIDs(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if in[0].ID != 1 {
		t.Error("input slice was reordered")
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []dto.TaskResponse{
		{ID: 1, Status: "done", Executors: "Ann, Bob"},
		{ID: 2, Status: "not-done", Executors: "Bob"},
		{ID: 3, Status: "not-done", Executors: "Carl"},
	}
	cases := []struct {
		status, executor string
		want             []uint
	}{
		{"", "", []uint{1, 2, 3}},
		{"not-done", "", []uint{2, 3}},
		{"", "bob", []uint{1, 2}},
		{"done", "BOB", []uint{1}},
		{"done", "carl", []uint{}},
	}
	for _, tc := range cases {
		if got := ids(FilterTasks(tasks, tc.status, tc.executor)); !equalIDs(got, tc.want) {
			t.Errorf("FilterTasks(%q, %q) = %v, want %v", tc.status, tc.executor, got, tc.want)
		}
	}
}

func TestResolveAssignees(t *testing.T) {
	users := []dto.UserBrief{{ID: 1, Username: "ann"}, {ID: 2, Username: "bob"}, {ID: 30, Username: "7"}}

	got, err := ResolveAssignees(" 2, ANN ,bob,, 7", users)
	if err != nil {
		t.Fatalf("ResolveAssignees: %v", err)
	}
	if !equalIDs(got, []uint{2, 1, 30}) {
		t.Errorf("ids = %v", got)
	}
	if _, err := ResolveAssignees("ann, zed", users); err == nil {
		t.Error("unknown user accepted")
	}
	if _, err := ResolveAssignees(" , ", users); err == nil {
		t.Error("empty list accepted")
	}
}

func TestStatusCycles(t *testing.T) {
	seq := []string{""}
	for i := 0; i < 3; i++ {
		seq = append(seq, nextStatusFilter(seq[len(seq)-1]))
	}
	if seq[1] != "not-done" || seq[2] != "done" || seq[3] != "" {
		t.Errorf("filter cycle = %q", seq)
	}
	if toggledStatus("done") != "not-done" || toggledStatus("not-done") != "done" {
		t.Error("toggle")
	}
}

func TestPad(t *testing.T) {
	if got := pad("abc", 5); got != "abc  " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 4); got != "abc…" {
		t.Errorf("pad long = %q", got)
	}
	if got := truncate("привет", 3); got != "пр…" {
		t.Errorf("truncate = %q", got)
	}
}
