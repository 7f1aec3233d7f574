package tasksource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

func TestParseSourceSpec(t *testing.T) {
	tests := []struct {
		input   string
		want    SourceSpec
		wantErr bool
	}{
		{input: "memory:", want: SourceSpec{Type: SourceTypeMemory, Config: map[string]string{}}},
		{input: "todolist:path=tasks.md", want: SourceSpec{Type: SourceTypeTodolist, Config: map[string]string{"path": "tasks.md"}}},
		{
			input: "remote:url=https://api.example.com/v1, database=abc,token=t",
			want:  SourceSpec{Type: SourceTypeRemote, Config: map[string]string{"url": "https://api.example.com/v1", "database": "abc", "token": "t"}},
		},
		{input: "postgres:dsn=host=localhost user=me", want: SourceSpec{Type: SourceTypePostgres, Config: map[string]string{"dsn": "host=localhost user=me"}}},
		{input: "memory", wantErr: true},
		{input: ":path=x", wantErr: true},
		{input: "todolist:path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSourceSpec(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSourceSpec() error = %v", err)
			}
			if got.Type != tt.want.Type {
				t.Errorf("Type = %q, want %q", got.Type, tt.want.Type)
			}
			if len(got.Config) != len(tt.want.Config) {
				t.Fatalf("Config = %v, want %v", got.Config, tt.want.Config)
			}
			for k, v := range tt.want.Config {
				if got.Config[k] != v {
					t.Errorf("Config[%q] = %q, want %q", k, got.Config[k], v)
				}
			}
		})
	}
}

func TestCreateSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		spec     string
		wantType SourceType
		wantErr  bool
	}{
		{spec: "memory:", wantType: SourceTypeMemory},
		{spec: "todolist:path=" + filepath.Join(dir, "todo.md"), wantType: SourceTypeTodolist},
		{spec: "docstore:path=" + filepath.Join(dir, "docs"), wantType: SourceTypeDocstore},
		{spec: "remote:url=http://localhost:1,database=db", wantType: SourceTypeRemote},
		{spec: "todolist:", wantErr: true},
		{spec: "docstore:", wantErr: true},
		{spec: "postgres:", wantErr: true},
		{spec: "beads:cwd=.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParseSourceSpec(tt.spec)
			if err != nil {
				t.Fatalf("ParseSourceSpec() error = %v", err)
			}
			src, err := CreateSource(ctx, spec)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSource() error = %v", err)
			}
			defer src.Close()
			if src.Info().Type != tt.wantType {
				t.Errorf("Type = %q, want %q", src.Info().Type, tt.wantType)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/tasks.md"); got != filepath.Join(home, "tasks.md") {
		t.Errorf("expandHome() = %q", got)
	}
	if got := expandHome("/tmp/tasks.md"); got != "/tmp/tasks.md" {
		t.Errorf("expandHome() = %q", got)
	}
}

func TestMultiSource(t *testing.T) {
	ctx := context.Background()
	first := NewMemorySource(NewTask{Title: "Pay rent"})
	docs, err := NewDocstoreSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	report, err := docs.CreateTask(ctx, NewTask{Title: "Quarterly report"})
	if err != nil {
		t.Fatal(err)
	}
	multi := NewMultiSource(first, docs)

	tasks, err := multi.ListTasks(ctx, nil)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	assertTitles(t, tasks, []string{"Pay rent", "Quarterly report"})

	created, err := multi.CreateTask(ctx, NewTask{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.Source != SourceTypeMemory {
		t.Errorf("created in %q, want first source", created.Source)
	}

	done := interpret.StatusDone
	if err := multi.UpdateTask(ctx, report.ID, TaskUpdate{Status: &done}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	got, err := docs.GetTask(ctx, report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != interpret.StatusDone {
		t.Errorf("Status = %q, want done", got.Status)
	}

	if err := multi.DeleteTask(ctx, report.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := multi.GetTask(ctx, report.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() error = %v, want ErrTaskNotFound", err)
	}
	if err := multi.UpdateTask(ctx, "nope", TaskUpdate{Status: &done}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("UpdateTask() error = %v, want ErrTaskNotFound", err)
	}

	limited, err := multi.ListTasks(ctx, &TaskFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("len = %d, want 1", len(limited))
	}
}

func TestCreateMultiSourceFromStrings(t *testing.T) {
	ctx := context.Background()
	multi, err := CreateMultiSourceFromStrings(ctx, []string{"memory:", "docstore:path=" + t.TempDir()})
	if err != nil {
		t.Fatalf("CreateMultiSourceFromStrings() error = %v", err)
	}
	defer multi.Close()
	if len(multi.Sources()) != 2 {
		t.Errorf("len(Sources()) = %d, want 2", len(multi.Sources()))
	}

	if _, err := CreateMultiSourceFromStrings(ctx, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty specs error = %v, want ErrInvalidConfig", err)
	}
}
