package task

// Status describes the workflow state of a task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusCompleted  Status = "completed" // legacy synonym of done
	StatusBlocked    Status = "blocked"
	StatusDeferred   Status = "deferred"
)

// Valid reports whether s is a recognized workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCompleted, StatusBlocked, StatusDeferred:
		return true
	}
	return false
}

// Complete reports whether s counts as finished for readiness purposes.
func (s Status) Complete() bool {
	return s == StatusDone || s == StatusCompleted
}

// Priority orders tasks during readiness selection. It is an opaque input
// field; nothing in this package derives it from the graph.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to its selection weight. Empty or unknown values
// rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Task is a top-level unit of work from the tasks file. The free-text
// fields are carried through untouched; only Status, Dependencies, and
// Subtasks participate in graph operations.
type Task struct {
	ID           int       `json:"id"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Details      string    `json:"details,omitempty"`
	TestStrategy string    `json:"testStrategy,omitempty"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority,omitempty"`
	Dependencies []Ref     `json:"dependencies"`
	Subtasks     []Subtask `json:"subtasks,omitempty"`
}

// Ref returns the canonical reference addressing this task.
func (t *Task) Ref() Ref { return Ref{ID: t.ID} }

// Subtask is a unit of work owned by exactly one task. ParentID is stamped
// from nesting when a snapshot is normalized and is never serialized.
type Subtask struct {
	ID           int      `json:"id"`
	ParentID     int      `json:"-"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Details      string   `json:"details,omitempty"`
	Status       Status   `json:"status"`
	Priority     Priority `json:"priority,omitempty"`
	Dependencies []Ref    `json:"dependencies"`
}

// Ref returns the canonical reference addressing this subtask.
func (st *Subtask) Ref() Ref { return Ref{ID: st.ParentID, Sub: st.ID} }

// Snapshot is the full task set handed to the graph operations. Operations
// treat it as plain data: they read it, compute new dependency lists, and
// leave persistence to the caller.
type Snapshot struct {
	Tasks []Task `json:"tasks"`
}

// Task returns the task with the given id, or nil.
func (s *Snapshot) Task(id int) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// Subtask returns the subtask addressed by (parentID, subID), or nil.
func (s *Snapshot) Subtask(parentID, subID int) *Subtask {
	t := s.Task(parentID)
	if t == nil {
		return nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subID {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// Dependencies returns the dependency list owned by ref and whether ref
// resolves at all.
func (s *Snapshot) Dependencies(ref Ref) ([]Ref, bool) {
	if ref.IsSubtask() {
		if st := s.Subtask(ref.ID, ref.Sub); st != nil {
			return st.Dependencies, true
		}
		return nil, false
	}
	if t := s.Task(ref.ID); t != nil {
		return t.Dependencies, true
	}
	return nil, false
}

// SetDependencies replaces the dependency list owned by ref. It reports
// false when ref does not resolve.
func (s *Snapshot) SetDependencies(ref Ref, deps []Ref) bool {
	if ref.IsSubtask() {
		st := s.Subtask(ref.ID, ref.Sub)
		if st == nil {
			return false
		}
		st.Dependencies = deps
		return true
	}
	t := s.Task(ref.ID)
	if t == nil {
		return false
	}
	t.Dependencies = deps
	return true
}

// Counts returns the number of tasks and subtasks in the snapshot.
func (s *Snapshot) Counts() (tasks, subtasks int) {
	tasks = len(s.Tasks)
	for i := range s.Tasks {
		subtasks += len(s.Tasks[i].Subtasks)
	}
	return tasks, subtasks
}

// Clone returns a deep copy sharing no slices with s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Tasks: make([]Task, len(s.Tasks))}
	for i := range s.Tasks {
		t := s.Tasks[i]
		t.Dependencies = cloneRefs(t.Dependencies)
		if t.Subtasks != nil {
			subs := make([]Subtask, len(t.Subtasks))
			for j := range t.Subtasks {
				st := t.Subtasks[j]
				st.Dependencies = cloneRefs(st.Dependencies)
				subs[j] = st
			}
			t.Subtasks = subs
		}
		out.Tasks[i] = t
	}
	return out
}

// cloneRefs copies a dependency list, keeping nil nil and empty empty so
// the serialized form survives a clone.
func cloneRefs(refs []Ref) []Ref {
	if refs == nil {
		return nil
	}
	out := make([]Ref, len(refs))
	copy(out, refs)
	return out
}

// Normalize prepares a freshly loaded snapshot for graph operations: it
// stamps ParentID on every subtask, resolves the sibling shorthand in
// subtask dependency lists, defaults missing statuses to pending, and
// replaces nil dependency slices with empty ones so the serialized form
// stays stable. Stores call it once at the ingestion boundary; everything
// downstream assumes normalized input.
func (s *Snapshot) Normalize() {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.Status == "" {
			t.Status = StatusPending
		}
		if t.Dependencies == nil {
			t.Dependencies = []Ref{}
		}
		for j := range t.Subtasks {
			st := &t.Subtasks[j]
			st.ParentID = t.ID
			if st.Status == "" {
				st.Status = StatusPending
			}
			if st.Dependencies == nil {
				st.Dependencies = []Ref{}
				continue
			}
			for k, dep := range st.Dependencies {
				st.Dependencies[k] = dep.Normalize(t.ID)
			}
		}
	}
}
