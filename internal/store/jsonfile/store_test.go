package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

func writeTasks(t *testing.T, dir, content string) *Store {
	t.Helper()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tasks file: %v", err)
	}
	return New(path)
}

func TestFetchAll_NormalizesLegacyForms(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `{
  "tasks": [
    {"id": 1, "title": "Setup", "status": "done"},
    {"id": 2, "status": "pending", "dependencies": [1]},
    {"id": 3, "dependencies": ["2", 1.2], "subtasks": [
      {"id": 1, "status": "pending", "dependencies": []},
      {"id": 2, "dependencies": [1, 120]}
    ]},
    {"id": 120}
  ]
}`)

	snap, err := st.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if snap.Task(1).Dependencies == nil {
		t.Error("missing dependencies key should normalize to empty list")
	}
	if got := snap.Task(2).Dependencies; len(got) != 1 || got[0] != (task.Ref{ID: 1}) {
		t.Errorf("task 2 deps = %v, want [1]", got)
	}

	want3 := []task.Ref{{ID: 2}, {ID: 1, Sub: 2}}
	got3 := snap.Task(3).Dependencies
	if len(got3) != len(want3) {
		t.Fatalf("task 3 deps = %v, want %v", got3, want3)
	}
	for i := range want3 {
		if got3[i] != want3[i] {
			t.Errorf("task 3 dep %d = %v, want %v", i, got3[i], want3[i])
		}
	}

	sub := snap.Subtask(3, 2)
	if sub == nil {
		t.Fatal("subtask 3.2 missing")
	}
	if sub.ParentID != 3 {
		t.Errorf("ParentID = %d, want 3", sub.ParentID)
	}
	// bare small ids are sibling references, large ids stay tasks
	wantSub := []task.Ref{{ID: 3, Sub: 1}, {ID: 120}}
	for i := range wantSub {
		if sub.Dependencies[i] != wantSub[i] {
			t.Errorf("subtask dep %d = %v, want %v", i, sub.Dependencies[i], wantSub[i])
		}
	}
	if sub.Status != task.StatusPending {
		t.Errorf("subtask status = %q, want pending default", sub.Status)
	}
}

func TestFetchAll_MissingFile(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := st.FetchAll(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestFetchAll_DuplicateIDs(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `{"tasks":[{"id":1,"status":"pending"},{"id":1,"status":"pending"}]}`)
	_, err := st.FetchAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "duplicate task id 1") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	st = writeTasks(t, t.TempDir(), `{"tasks":[{"id":1,"subtasks":[{"id":2},{"id":2}]}]}`)
	_, err = st.FetchAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "duplicate subtask id 2") {
		t.Fatalf("expected duplicate subtask error, got %v", err)
	}
}

func TestFetchAll_RejectsGarbage(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `not json`)
	if _, err := st.FetchAll(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyPartialUpdate(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `{"tasks":[
    {"id": 1, "status": "pending", "dependencies": []},
    {"id": 2, "status": "pending", "dependencies": []}
  ]}`)
	ctx := context.Background()

	deps := []task.Ref{{ID: 2}}
	if err := st.ApplyPartialUpdate(ctx, task.Ref{ID: 1}, task.FieldUpdate{Dependencies: &deps}); err != nil {
		t.Fatalf("ApplyPartialUpdate: %v", err)
	}

	snap, err := st.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got := snap.Task(1).Dependencies; len(got) != 1 || got[0] != (task.Ref{ID: 2}) {
		t.Errorf("task 1 deps = %v, want [2]", got)
	}
	// untouched task keeps its list
	if got := snap.Task(2).Dependencies; len(got) != 0 {
		t.Errorf("task 2 deps = %v, want empty", got)
	}
}

func TestApplyPartialUpdate_UnknownOwner(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `{"tasks":[{"id":1,"status":"pending","dependencies":[]}]}`)

	deps := []task.Ref{}
	err := st.ApplyPartialUpdate(context.Background(), task.Ref{ID: 9}, task.FieldUpdate{Dependencies: &deps})
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulkRewrite(t *testing.T) {
	st := writeTasks(t, t.TempDir(), `{"tasks":[{"id":1,"status":"pending","dependencies":[]}]}`)
	ctx := context.Background()

	snap := &task.Snapshot{Tasks: []task.Task{
		{ID: 1, Status: task.StatusDone},
		{ID: 2, Dependencies: []task.Ref{{ID: 1}}},
	}}
	snap.Normalize()
	if err := st.BulkRewrite(ctx, snap); err != nil {
		t.Fatalf("BulkRewrite: %v", err)
	}

	got, err := st.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if tasks, _ := got.Counts(); tasks != 2 {
		t.Errorf("tasks = %d, want 2", tasks)
	}
	if deps := got.Task(2).Dependencies; len(deps) != 1 || deps[0] != (task.Ref{ID: 1}) {
		t.Errorf("task 2 deps = %v, want [1]", deps)
	}
	// no temp file left behind
	if _, err := os.Stat(st.Path() + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file still present: %v", err)
	}
}

func TestRegenerateArtifacts(t *testing.T) {
	dir := t.TempDir()
	st := writeTasks(t, dir, `{"tasks":[
    {"id": 1, "title": "Set up repo", "status": "pending", "dependencies": [],
     "subtasks": [{"id": 1, "title": "Init", "status": "done", "dependencies": []}]},
    {"id": 2, "title": "Build", "status": "pending", "dependencies": [1]}
  ]}`)

	stale := filepath.Join(dir, "task_099.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("write stale artifact: %v", err)
	}

	if err := st.RegenerateArtifacts(context.Background()); err != nil {
		t.Fatalf("RegenerateArtifacts: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "task_001.txt"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	text := string(data)
	for _, want := range []string{"# Task ID: 1", "# Title: Set up repo", "# Dependencies: none", "## 1. Init [done]"} {
		if !strings.Contains(text, want) {
			t.Errorf("artifact missing %q:\n%s", want, text)
		}
	}

	data, err = os.ReadFile(filepath.Join(dir, "task_002.txt"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(data), "# Dependencies: 1") {
		t.Errorf("artifact missing dependency list:\n%s", data)
	}

	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale artifact not removed: %v", err)
	}
}
