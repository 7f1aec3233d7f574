package tasksource

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

func TestListQuery(t *testing.T) {
	q, args := listQuery(nil)
	if q != "SELECT "+taskColumns+" FROM tasks ORDER BY id" || len(args) != 0 {
		t.Errorf("listQuery(nil) = %q, %v", q, args)
	}

	q, args = listQuery(&TaskFilter{
		Status:   []interpret.Status{interpret.StatusToDo},
		Category: []interpret.Category{interpret.CategoryWork},
		Limit:    5,
	})
	for _, want := range []string{"status = ANY($1)", "category = ANY($2)", "LIMIT $3"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
	if len(args) != 3 || args[2] != 5 {
		t.Errorf("args = %v", args)
	}
}

func TestPostgresID(t *testing.T) {
	if id, err := postgresID("pg-42"); err != nil || id != 42 {
		t.Errorf("postgresID(pg-42) = %d, %v", id, err)
	}
	for _, bad := range []string{"42", "pg-", "pg-x", "mem-1"} {
		if _, err := postgresID(bad); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("postgresID(%q) error = %v, want ErrTaskNotFound", bad, err)
		}
	}
}

func TestPostgresSource(t *testing.T) {
	dsn := os.Getenv("TASKVOICE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TASKVOICE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	src, err := NewPostgresSource(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresSource() error = %v", err)
	}
	defer src.Close()

	created, err := src.CreateTask(ctx, NewTask{Title: "Postgres test task", Priority: interpret.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	defer src.DeleteTask(ctx, created.ID)

	done := interpret.StatusDone
	if err := src.UpdateTask(ctx, created.ID, TaskUpdate{Status: &done}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	got, err := src.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status != interpret.StatusDone || got.Priority != interpret.PriorityHigh {
		t.Errorf("GetTask() = %+v", got)
	}

	tasks, err := src.ListTasks(ctx, &TaskFilter{Status: []interpret.Status{interpret.StatusDone}})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	found := false
	for _, task := range tasks {
		if task.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("ListTasks() missing %s", created.ID)
	}
}
