// Package sqlite persists task snapshots in a SQLite database, for setups
// that outgrow a single tasks.json file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/task"
)

const busyTimeout = 5000 // milliseconds

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id            INTEGER PRIMARY KEY CHECK (id > 0),
    title         TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    details       TEXT NOT NULL DEFAULT '',
    test_strategy TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'pending',
    priority      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS subtasks (
    parent_id   INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    id          INTEGER NOT NULL CHECK (id > 0),
    title       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    details     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'pending',
    priority    TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (parent_id, id)
);

CREATE TABLE IF NOT EXISTS dependencies (
    owner      TEXT NOT NULL,
    depends_on TEXT NOT NULL,
    position   INTEGER NOT NULL,
    PRIMARY KEY (owner, depends_on)
);

CREATE INDEX IF NOT EXISTS idx_dependencies_owner ON dependencies(owner, position);
`

// Store reads and writes task snapshots from a SQLite database. References
// are stored in their canonical string form ("4", "4.2"), so nothing here
// is ambiguous about sibling shorthand.
type Store struct {
	db *sql.DB
}

// Open opens the task database at path, creating file and schema as needed.
// WAL mode and a busy timeout keep concurrent CLI invocations from failing
// on the first lock collision.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)",
		path, busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchAll loads the complete snapshot. Parent ids come from the subtasks
// table directly, so no shorthand normalization is involved.
func (s *Store) FetchAll(ctx context.Context) (*task.Snapshot, error) {
	snap := &task.Snapshot{Tasks: []task.Task{}}
	idx := make(map[int]int)

	if err := s.loadTasks(ctx, snap, idx); err != nil {
		return nil, err
	}
	if err := s.loadSubtasks(ctx, snap, idx); err != nil {
		return nil, err
	}
	if err := s.loadDependencies(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ApplyPartialUpdate rewrites one owner's dependency rows in a transaction.
func (s *Store) ApplyPartialUpdate(ctx context.Context, owner task.Ref, update task.FieldUpdate) error {
	if update.Dependencies == nil {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := ownerExists(ctx, tx, owner)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("task %s: %w", owner, task.ErrNotFound)
		}
		return writeDependencies(ctx, tx, owner, *update.Dependencies)
	})
}

// BulkRewrite replaces the stored state with the snapshot in one
// transaction.
func (s *Store) BulkRewrite(ctx context.Context, snap *task.Snapshot) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM dependencies`,
			`DELETE FROM subtasks`,
			`DELETE FROM tasks`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}
		for i := range snap.Tasks {
			t := &snap.Tasks[i]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (id, title, description, details, test_strategy, status, priority)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Title, t.Description, t.Details, t.TestStrategy, string(t.Status), string(t.Priority)); err != nil {
				return fmt.Errorf("insert task %d: %w", t.ID, err)
			}
			if err := writeDependencies(ctx, tx, t.Ref(), t.Dependencies); err != nil {
				return err
			}
			for j := range t.Subtasks {
				st := &t.Subtasks[j]
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO subtasks (parent_id, id, title, description, details, status, priority)
					 VALUES (?, ?, ?, ?, ?, ?, ?)`,
					t.ID, st.ID, st.Title, st.Description, st.Details, string(st.Status), string(st.Priority)); err != nil {
					return fmt.Errorf("insert subtask %d.%d: %w", t.ID, st.ID, err)
				}
				ref := task.Ref{ID: t.ID, Sub: st.ID}
				if err := writeDependencies(ctx, tx, ref, st.Dependencies); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// RegenerateArtifacts reports ErrUnsupported: the database keeps no derived
// files. Callers treat this as a skip.
func (s *Store) RegenerateArtifacts(ctx context.Context) error {
	return fmt.Errorf("sqlite store keeps no artifacts: %w", task.ErrUnsupported)
}

func (s *Store) loadTasks(ctx context.Context, snap *task.Snapshot, idx map[int]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, details, test_strategy, status, priority FROM tasks ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Details, &t.TestStrategy, &t.Status, &t.Priority); err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		t.Dependencies = []task.Ref{}
		idx[t.ID] = len(snap.Tasks)
		snap.Tasks = append(snap.Tasks, t)
	}
	return rows.Err()
}

func (s *Store) loadSubtasks(ctx context.Context, snap *task.Snapshot, idx map[int]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent_id, id, title, description, details, status, priority FROM subtasks ORDER BY parent_id, id`)
	if err != nil {
		return fmt.Errorf("query subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st task.Subtask
		if err := rows.Scan(&st.ParentID, &st.ID, &st.Title, &st.Description, &st.Details, &st.Status, &st.Priority); err != nil {
			return fmt.Errorf("scan subtask: %w", err)
		}
		st.Dependencies = []task.Ref{}
		pos, ok := idx[st.ParentID]
		if !ok {
			return fmt.Errorf("subtask %d.%d: parent row missing", st.ParentID, st.ID)
		}
		snap.Tasks[pos].Subtasks = append(snap.Tasks[pos].Subtasks, st)
	}
	return rows.Err()
}

func (s *Store) loadDependencies(ctx context.Context, snap *task.Snapshot) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, depends_on FROM dependencies ORDER BY owner, position`)
	if err != nil {
		return fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	lists := make(map[task.Ref][]task.Ref)
	for rows.Next() {
		var ownerKey, depKey string
		if err := rows.Scan(&ownerKey, &depKey); err != nil {
			return fmt.Errorf("scan dependency: %w", err)
		}
		owner, err := task.ParseRef(ownerKey)
		if err != nil {
			return fmt.Errorf("dependency owner %q: %w", ownerKey, err)
		}
		dep, err := task.ParseRef(depKey)
		if err != nil {
			return fmt.Errorf("dependency target %q: %w", depKey, err)
		}
		lists[owner] = append(lists[owner], dep)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for owner, deps := range lists {
		if !snap.SetDependencies(owner, deps) {
			return fmt.Errorf("dependency owner %s: %w", owner, task.ErrNotFound)
		}
	}
	return nil
}

// withTx executes fn within a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func ownerExists(ctx context.Context, tx *sql.Tx, ref task.Ref) (bool, error) {
	var n int
	var err error
	if ref.IsSubtask() {
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM subtasks WHERE parent_id = ? AND id = ?`, ref.ID, ref.Sub).Scan(&n)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, ref.ID).Scan(&n)
	}
	if err != nil {
		return false, fmt.Errorf("look up %s: %w", ref, err)
	}
	return n > 0, nil
}

func writeDependencies(ctx context.Context, tx *sql.Tx, owner task.Ref, deps []task.Ref) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE owner = ?`, owner.String()); err != nil {
		return fmt.Errorf("clear dependencies of %s: %w", owner, err)
	}
	for i, dep := range deps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dependencies (owner, depends_on, position) VALUES (?, ?, ?)`,
			owner.String(), dep.String(), i); err != nil {
			return fmt.Errorf("insert dependency %s -> %s: %w", owner, dep, err)
		}
	}
	return nil
}
