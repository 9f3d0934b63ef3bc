package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

// Envelope wraps a command's machine-readable payload with run metadata so
// reports from different invocations can be told apart.
type Envelope struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Tool        string    `json:"tool"`
	Version     string    `json:"version,omitempty"`
	TasksFile   string    `json:"tasksFile,omitempty"`

	Tasks    int `json:"tasks"`
	Subtasks int `json:"subtasks"`

	Issues []task.Issue    `json:"issues,omitempty"`
	Fix    *task.FixResult `json:"fix,omitempty"`
}

// NewEnvelope stamps run metadata for the given snapshot. Payload fields
// are filled in by the caller.
func NewEnvelope(snap *task.Snapshot, tasksFile, version string) *Envelope {
	tasks, subtasks := snap.Counts()
	return &Envelope{
		RunID:       newRunID(),
		GeneratedAt: time.Now().UTC(),
		Tool:        "taskdeps",
		Version:     version,
		TasksFile:   tasksFile,
		Tasks:       tasks,
		Subtasks:    subtasks,
	}
}

func newRunID() string {
	return "run-" + uuid.New().String()[:8]
}

// WriteJSONReport writes v as indented JSON to the given path.
func WriteJSONReport(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// EncodeJSON writes v as indented JSON to w, for --format json on stdout.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
