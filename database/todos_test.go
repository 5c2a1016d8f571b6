package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTodoTestService(t *testing.T) *TodoService {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTodoService(db)
}

func TestTodoCreateAndListInOrder(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, testOwner, "buy milk")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" || first.Completed {
		t.Fatalf("new todo should be open with a server id, got %+v", first)
	}

	if _, err := svc.Create(ctx, testOwner, "call dentist"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	todos, err := svc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("listed %d todos, want 2", len(todos))
	}
	if todos[0].Text != "buy milk" || todos[1].Text != "call dentist" {
		t.Fatalf("todos out of insertion order: %q, %q", todos[0].Text, todos[1].Text)
	}
}

func TestTodoCreateRequiresText(t *testing.T) {
	svc := newTodoTestService(t)

	_, err := svc.Create(context.Background(), testOwner, "   ")

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestTodoToggleFlipsCompletion(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, testOwner, "water plants")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	toggled, err := svc.Toggle(ctx, testOwner, todo.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("first toggle should complete the todo")
	}

	toggled, err = svc.Toggle(ctx, testOwner, todo.ID)
	if err != nil {
		t.Fatalf("second Toggle: %v", err)
	}
	if toggled.Completed {
		t.Fatal("second toggle should reopen the todo")
	}
}

func TestTodoToggleUnknownID(t *testing.T) {
	svc := newTodoTestService(t)

	_, err := svc.Toggle(context.Background(), testOwner, "missing")
	if !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("got %v, want ErrTodoNotFound", err)
	}
}

func TestTodoUpdateText(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, testOwner, "draft email")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, testOwner, todo.ID, "draft and send email")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Text != "draft and send email" {
		t.Fatalf("text %q, want the updated text", updated.Text)
	}

	if _, err := svc.Update(ctx, testOwner, todo.ID, ""); err == nil {
		t.Fatal("empty text must be rejected")
	}
}

func TestTodoDelete(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, testOwner, "one-off errand")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, testOwner, todo.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, testOwner, todo.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("second delete: got %v, want ErrTodoNotFound", err)
	}
}

func TestTodoClearCompletedLeavesOpenOnes(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	open, err := svc.Create(ctx, testOwner, "still pending")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, text := range []string{"done one", "done two"} {
		todo, err := svc.Create(ctx, testOwner, text)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := svc.Toggle(ctx, testOwner, todo.ID); err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}

	cleared, err := svc.ClearCompleted(ctx, testOwner)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("cleared %d, want 2", cleared)
	}

	todos, err := svc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != open.ID {
		t.Fatalf("remaining todos %v, want only the open one", todos)
	}

	// Nothing left to clear.
	cleared, err = svc.ClearCompleted(ctx, testOwner)
	if err != nil {
		t.Fatalf("second ClearCompleted: %v", err)
	}
	if cleared != 0 {
		t.Fatalf("cleared %d on an empty pass, want 0", cleared)
	}
}

func TestTodosScopedToOwner(t *testing.T) {
	svc := newTodoTestService(t)
	ctx := context.Background()

	mine, err := svc.Create(ctx, testOwner, "mine")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "other@example.com", "theirs"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	todos, err := svc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != mine.ID {
		t.Fatalf("listed %v, want only the owner's todo", todos)
	}

	if _, err := svc.Toggle(ctx, "other@example.com", mine.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Fatalf("cross-owner toggle: got %v, want ErrTodoNotFound", err)
	}
}
