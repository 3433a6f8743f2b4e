package repo

import (
	"errors"
	"testing"
	"time"

	"task-tracker/backend/app/db/dbtest"
	"task-tracker/backend/app/models"

	"gorm.io/gorm"
)

func seedUser(t *testing.T, users *UserRepository, name, username, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Username: username, PasswordHash: "x", Role: role}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func setup(t *testing.T) (*gorm.DB, *UserRepository, *TaskRepository) {
	t.Helper()
	gdb := dbtest.Open(t)
	return gdb, NewUserRepository(gdb), NewTaskRepository(gdb)
}

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	_, users, _ := setup(t)
	seedUser(t, users, "Ann", "ann", models.RoleWorker)

	err := users.Create(&models.User{Name: "Other", Username: "ann", PasswordHash: "y", Role: models.RoleWorker})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	_, users, _ := setup(t)
	err := users.Update(42, map[string]any{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRepository_UpdateToTakenUsername(t *testing.T) {
	_, users, _ := setup(t)
	seedUser(t, users, "Ann", "ann", models.RoleWorker)
	bob := seedUser(t, users, "Bob", "bob", models.RoleWorker)

	err := users.Update(bob.ID, map[string]any{"username": "ann"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
	got, err := users.FindByID(bob.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Username != "bob" {
		t.Errorf("username = %q, want bob", got.Username)
	}
}

func TestUserRepository_DeleteCascadesAssignments(t *testing.T) {
	_, users, tasks := setup(t)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)
	bob := seedUser(t, users, "Bob", "bob", models.RoleWorker)
	task := &models.Task{Title: "Report", Status: models.StatusNotDone}
	if err := tasks.CreateWithAssignees(task, []uint{ann.ID, bob.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := users.Delete(ann.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := tasks.AssignmentCount(task.ID); n != 1 {
		t.Errorf("assignments = %d, want 1", n)
	}
	if err := users.Delete(ann.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestTaskRepository_CreateRejectsUnknownAssignee(t *testing.T) {
	gdb, users, tasks := setup(t)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)

	err := tasks.CreateWithAssignees(&models.Task{Title: "Ghost", Status: models.StatusNotDone}, []uint{ann.ID, 999})
	if !errors.Is(err, ErrUnknownAssignee) {
		t.Fatalf("err = %v, want ErrUnknownAssignee", err)
	}
	var count int64
	gdb.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("tasks persisted = %d, want 0", count)
	}
}

func TestTaskRepository_ListFiltersByAssigneeAndJoinsExecutors(t *testing.T) {
	_, users, tasks := setup(t)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)
	bob := seedUser(t, users, "Bob", "bob", models.RoleWorker)

	shared := &models.Task{Title: "Shared", DueDate: date(2026, 3, 10), Status: models.StatusNotDone}
	solo := &models.Task{Title: "Solo", DueDate: date(2026, 3, 1), Status: models.StatusNotDone}
	undated := &models.Task{Title: "Undated", Status: models.StatusNotDone}
	for task, who := range map[*models.Task][]uint{shared: {bob.ID, ann.ID}, solo: {bob.ID}, undated: {bob.ID}} {
		if err := tasks.CreateWithAssignees(task, who); err != nil {
			t.Fatalf("create %s: %v", task.Title, err)
		}
	}

	all, err := tasks.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	wantOrder := []string{"Solo", "Shared", "Undated"}
	if len(all) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(all), len(wantOrder))
	}
	for i, title := range wantOrder {
		if all[i].Title != title {
			t.Errorf("all[%d] = %q, want %q", i, all[i].Title, title)
		}
	}
	if all[1].Executors != "Ann, Bob" {
		t.Errorf("executors = %q, want %q", all[1].Executors, "Ann, Bob")
	}

	mine, err := tasks.List(ann.ID)
	if err != nil {
		t.Fatalf("List(ann): %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Shared" {
		t.Fatalf("ann sees %+v, want only Shared", mine)
	}
	if mine[0].Executors != "Ann, Bob" {
		t.Errorf("co-assignees hidden: %q", mine[0].Executors)
	}
}

func TestTaskRepository_DeleteRemovesAssignments(t *testing.T) {
	_, users, tasks := setup(t)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)
	task := &models.Task{Title: "Report", Status: models.StatusNotDone}
	if err := tasks.CreateWithAssignees(task, []uint{ann.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tasks.MarkDoneBy(task.ID, ann.ID, time.Now()); err != nil {
		t.Fatalf("MarkDoneBy: %v", err)
	}

	if err := tasks.Delete(task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := tasks.AssignmentCount(task.ID); n != 0 {
		t.Errorf("orphaned assignments = %d", n)
	}
	if err := tasks.Delete(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestTaskRepository_MarkDoneByIsIdempotent(t *testing.T) {
	gdb, users, tasks := setup(t)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)
	task := &models.Task{Title: "Report", Status: models.StatusNotDone}
	if err := tasks.CreateWithAssignees(task, []uint{ann.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := tasks.MarkDoneBy(task.ID, ann.ID, time.Now()); err != nil {
			t.Fatalf("MarkDoneBy #%d: %v", i+1, err)
		}
	}
	got, _ := tasks.FindByID(task.ID)
	if got.Status != models.StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	var pending int64
	gdb.Model(&models.CompletionRequest{}).Where("status = ?", models.CompletionPending).Count(&pending)
	if pending != 1 {
		t.Errorf("pending requests = %d, want 1", pending)
	}
}

func TestCompletionRepository_RejectReopensTask(t *testing.T) {
	gdb, users, tasks := setup(t)
	completions := NewCompletionRepository(gdb)
	ann := seedUser(t, users, "Ann", "ann", models.RoleWorker)
	task := &models.Task{Title: "Report", Status: models.StatusNotDone}
	if err := tasks.CreateWithAssignees(task, []uint{ann.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tasks.MarkDoneBy(task.ID, ann.ID, time.Now()); err != nil {
		t.Fatalf("MarkDoneBy: %v", err)
	}

	rows, err := completions.List(models.CompletionPending)
	if err != nil || len(rows) != 1 {
		t.Fatalf("List = %v, %v; want one pending", rows, err)
	}
	if rows[0].TaskTitle != "Report" || rows[0].UserName != "Ann" {
		t.Errorf("row = %+v", rows[0])
	}

	if err := completions.Decide(rows[0].ID, models.CompletionRejected, time.Now()); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	got, _ := tasks.FindByID(task.ID)
	if got.Status != models.StatusNotDone {
		t.Errorf("status = %q, want not-done", got.Status)
	}
	if err := completions.Decide(rows[0].ID, models.CompletionConfirmed, time.Now()); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("second decide err = %v, want ErrAlreadyDecided", err)
	}
}

func TestSQLRevocationStore(t *testing.T) {
	gdb := dbtest.Open(t)
	store := NewSQLRevocationStore(gdb)

	if revoked, err := store.IsRevoked("abc"); err != nil || revoked {
		t.Fatalf("IsRevoked before = %v, %v", revoked, err)
	}
	past := time.Now().Add(-time.Hour)
	if err := store.Revoke("abc", &past); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := store.Revoke("abc", &past); err != nil {
		t.Fatalf("Revoke twice: %v", err)
	}
	if revoked, _ := store.IsRevoked("abc"); !revoked {
		t.Fatal("token should be revoked")
	}
	if err := store.Revoke("forever", nil); err != nil {
		t.Fatalf("Revoke no-expiry: %v", err)
	}
	n, err := store.PurgeExpired(time.Now())
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired = %d, %v; want 1", n, err)
	}
	if revoked, _ := store.IsRevoked("forever"); !revoked {
		t.Error("non-expiring revocation was purged")
	}
}
