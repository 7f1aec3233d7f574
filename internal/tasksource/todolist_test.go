package tasksource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

const sampleTodolist = `# Tasks

- [ ] Buy milk due:2026-10-20
- [~] Quarterly report @work !high
- [x] Call the dentist
[ ] Legacy line without dash
Not a task
`

func writeTodolist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTodolistSourceList(t *testing.T) {
	src, err := NewTodolistSource(writeTodolist(t, sampleTodolist))
	if err != nil {
		t.Fatalf("NewTodolistSource() error = %v", err)
	}

	tasks, err := src.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	assertTitles(t, tasks, []string{"Buy milk", "Quarterly report", "Call the dentist", "Legacy line without dash"})

	if tasks[0].Due == nil || tasks[0].Due.Format("2006-01-02") != "2026-10-20" {
		t.Errorf("tasks[0].Due = %v, want 2026-10-20", tasks[0].Due)
	}
	if tasks[1].Status != interpret.StatusInProcess || tasks[1].Category != interpret.CategoryWork || tasks[1].Priority != interpret.PriorityHigh {
		t.Errorf("tasks[1] = %+v", tasks[1])
	}
	if tasks[2].Status != interpret.StatusDone {
		t.Errorf("tasks[2].Status = %q, want done", tasks[2].Status)
	}
	if tasks[0].ID != "todo-tasks.md-3" {
		t.Errorf("tasks[0].ID = %q, want %q", tasks[0].ID, "todo-tasks.md-3")
	}
}

func TestTodolistSourceWrite(t *testing.T) {
	ctx := context.Background()
	path := writeTodolist(t, sampleTodolist)
	src, err := NewTodolistSource(path)
	if err != nil {
		t.Fatal(err)
	}

	done := interpret.StatusDone
	if err := src.UpdateTask(ctx, "todo-tasks.md-3", TaskUpdate{Status: &done}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	due := time.Date(2026, time.October, 23, 0, 0, 0, 0, time.Local)
	created, err := src.CreateTask(ctx, NewTask{Title: "Pay rent", Priority: interpret.PriorityHigh, Due: &due})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.Title != "Pay rent" || created.Priority != interpret.PriorityHigh {
		t.Errorf("created = %+v", created)
	}

	content, _ := os.ReadFile(path)
	for _, want := range []string{"- [x] Buy milk due:2026-10-20", "- [ ] Pay rent !high due:2026-10-23", "Not a task"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("file missing %q:\n%s", want, content)
		}
	}

	if err := src.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := src.GetTask(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() after delete error = %v, want ErrTaskNotFound", err)
	}
	if err := src.UpdateTask(ctx, "todo-tasks.md-1", TaskUpdate{Status: &done}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("UpdateTask() on heading error = %v, want ErrTaskNotFound", err)
	}
}

func TestTodolistSourceCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new", "todo.md")
	src, err := NewTodolistSource(path)
	if err != nil {
		t.Fatalf("NewTodolistSource() error = %v", err)
	}
	if _, err := src.CreateTask(context.Background(), NewTask{Title: "First"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "- [ ] First\n" {
		t.Errorf("content = %q", content)
	}
}

func TestTodolistSourceMarkers(t *testing.T) {
	src, err := NewTodolistSource(writeTodolist(t, "- [ ] Email @sam about the offsite !high\n- [ ] Plan trip @home !wow\n"))
	if err != nil {
		t.Fatalf("NewTodolistSource() error = %v", err)
	}

	tasks, err := src.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	assertTitles(t, tasks, []string{"Email @sam about the offsite", "Plan trip !wow"})

	if tasks[0].Priority != interpret.PriorityHigh {
		t.Errorf("tasks[0].Priority = %q, want %q", tasks[0].Priority, interpret.PriorityHigh)
	}
	if tasks[0].Category != interpret.CategoryPersonal {
		t.Errorf("tasks[0].Category = %q, want %q", tasks[0].Category, interpret.CategoryPersonal)
	}
	if tasks[1].Priority != interpret.PriorityNormal {
		t.Errorf("tasks[1].Priority = %q, want %q", tasks[1].Priority, interpret.PriorityNormal)
	}
}
