// Package jsonfile persists task snapshots in the tasks.json format that
// the surrounding tooling reads and writes.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

// Store reads and writes a single tasks.json file. Writes are atomic
// (tmp then rename), so readers never observe a half-written file.
type Store struct {
	path string
}

// New returns a store for the tasks file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the tasks file the store operates on.
func (s *Store) Path() string { return s.path }

// FetchAll loads and normalizes the snapshot. Loading validates id
// uniqueness so graph operations can trust their indexes.
func (s *Store) FetchAll(ctx context.Context) (*task.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	var snap task.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if err := validateIDs(&snap); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	snap.Normalize()
	return &snap, nil
}

// ApplyPartialUpdate rewrites one owner's fields and saves the file. The
// format has no smaller write unit, so this is load, modify, save.
func (s *Store) ApplyPartialUpdate(ctx context.Context, owner task.Ref, update task.FieldUpdate) error {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return err
	}
	if update.Dependencies != nil {
		if !snap.SetDependencies(owner, *update.Dependencies) {
			return fmt.Errorf("task %s: %w", owner, task.ErrNotFound)
		}
	}
	return s.save(snap)
}

// BulkRewrite replaces the file contents with the snapshot.
func (s *Store) BulkRewrite(ctx context.Context, snap *task.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.save(snap)
}

// RegenerateArtifacts rewrites the per-task text files next to the tasks
// file and removes files for tasks that no longer exist.
func (s *Store) RegenerateArtifacts(ctx context.Context) error {
	snap, err := s.FetchAll(ctx)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	known := make(map[string]struct{}, len(snap.Tasks))
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		name := fmt.Sprintf("task_%03d.txt", t.ID)
		known[name] = struct{}{}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(renderTask(t)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	stale, err := filepath.Glob(filepath.Join(dir, "task_*.txt"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if _, ok := known[filepath.Base(path)]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale %s: %w", path, err)
		}
	}
	return nil
}

func (s *Store) save(snap *task.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func validateIDs(snap *task.Snapshot) error {
	seen := make(map[int]struct{}, len(snap.Tasks))
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if t.ID <= 0 {
			return fmt.Errorf("task %d: id must be positive", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}

		subSeen := make(map[int]struct{}, len(t.Subtasks))
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			if st.ID <= 0 {
				return fmt.Errorf("task %d: subtask id must be positive", t.ID)
			}
			if _, dup := subSeen[st.ID]; dup {
				return fmt.Errorf("task %d: duplicate subtask id %d", t.ID, st.ID)
			}
			subSeen[st.ID] = struct{}{}
		}
	}
	return nil
}

func renderTask(t *task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Task ID: %d\n", t.ID)
	fmt.Fprintf(&b, "# Title: %s\n", t.Title)
	fmt.Fprintf(&b, "# Status: %s\n", t.Status)
	fmt.Fprintf(&b, "# Dependencies: %s\n", joinRefs(t.Dependencies))
	if t.Priority != "" {
		fmt.Fprintf(&b, "# Priority: %s\n", t.Priority)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "# Description: %s\n", t.Description)
	}
	if t.Details != "" {
		b.WriteString("# Details:\n")
		b.WriteString(t.Details)
		b.WriteString("\n")
	}
	if t.TestStrategy != "" {
		b.WriteString("\n# Test Strategy:\n")
		b.WriteString(t.TestStrategy)
		b.WriteString("\n")
	}
	if len(t.Subtasks) > 0 {
		b.WriteString("\n# Subtasks:\n")
		for i := range t.Subtasks {
			st := &t.Subtasks[i]
			fmt.Fprintf(&b, "## %d. %s [%s]\n", st.ID, st.Title, st.Status)
			if len(st.Dependencies) > 0 {
				fmt.Fprintf(&b, "### Dependencies: %s\n", joinRefs(st.Dependencies))
			}
			if st.Description != "" {
				fmt.Fprintf(&b, "### Description: %s\n", st.Description)
			}
		}
	}
	return b.String()
}

func joinRefs(refs []task.Ref) string {
	if len(refs) == 0 {
		return "none"
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
