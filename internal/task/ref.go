package task

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// siblingRefLimit bounds the bare-integer shorthand: inside a subtask's
// dependency list, a bare id below this limit refers to a sibling subtask
// of the same parent rather than a top-level task.
const siblingRefLimit = 100

// Ref addresses a dependency target: a top-level task ("4") or a subtask
// of one ("4.2"). The zero value addresses nothing.
type Ref struct {
	ID  int // task id, or parent task id when Sub > 0
	Sub int // subtask id within the parent, 0 for task targets
}

// IsSubtask reports whether r addresses a subtask.
func (r Ref) IsSubtask() bool { return r.Sub > 0 }

// IsZero reports whether r addresses nothing.
func (r Ref) IsZero() bool { return r.ID == 0 }

// String returns the canonical form used for display and equality: "4" for
// tasks, "4.2" for subtasks.
func (r Ref) String() string {
	if r.Sub > 0 {
		return strconv.Itoa(r.ID) + "." + strconv.Itoa(r.Sub)
	}
	return strconv.Itoa(r.ID)
}

// Less orders references for stable dependency lists: task refs ascending
// first, then subtask refs by (parent, sub).
func (r Ref) Less(o Ref) bool {
	if r.IsSubtask() != o.IsSubtask() {
		return !r.IsSubtask()
	}
	if r.ID != o.ID {
		return r.ID < o.ID
	}
	return r.Sub < o.Sub
}

// Normalize resolves the sibling shorthand relative to the dependency list
// the reference was found in. contextParent is the owning task id when the
// list belongs to a subtask, and 0 otherwise.
func (r Ref) Normalize(contextParent int) Ref {
	if contextParent > 0 && r.Sub == 0 && r.ID > 0 && r.ID < siblingRefLimit {
		return Ref{ID: contextParent, Sub: r.ID}
	}
	return r
}

// ParseRef parses "4" or "4.2" into a reference. Both components must be
// positive integers.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, fmt.Errorf("empty task id")
	}
	head, tail, dotted := strings.Cut(raw, ".")
	id, err := strconv.Atoi(head)
	if err != nil || id <= 0 {
		return Ref{}, fmt.Errorf("invalid task id %q", raw)
	}
	if !dotted {
		return Ref{ID: id}, nil
	}
	sub, err := strconv.Atoi(tail)
	if err != nil || sub <= 0 {
		return Ref{}, fmt.Errorf("invalid subtask id %q", raw)
	}
	return Ref{ID: id, Sub: sub}, nil
}

// MarshalJSON writes task refs as bare numbers and subtask refs as "P.S"
// strings, matching the tasks-file convention.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Sub > 0 {
		return json.Marshal(r.String())
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts every form found in tasks files: bare numbers (4),
// dotted strings ("4.2"), numeric strings ("4"), and the unquoted
// fractional form (4.2) some writers emit for subtask references.
func (r *Ref) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	if token == "" || token == "null" {
		return fmt.Errorf("empty dependency reference")
	}
	if token[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		token = s
	}
	ref, err := ParseRef(token)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
