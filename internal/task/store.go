package task

import "context"

// FieldUpdate carries the fields a partial update may touch. Nil fields are
// left alone.
type FieldUpdate struct {
	Dependencies *[]Ref
}

// Store abstracts where task snapshots live. Implementations return
// normalized snapshots from FetchAll (parent ids stamped, sibling shorthand
// expanded) and may reject operations they cannot express with
// ErrUnsupported, which callers treat as a skip rather than a failure.
type Store interface {
	// FetchAll loads the complete snapshot.
	FetchAll(ctx context.Context) (*Snapshot, error)

	// ApplyPartialUpdate rewrites a single owner's listed fields in place.
	ApplyPartialUpdate(ctx context.Context, owner Ref, update FieldUpdate) error

	// BulkRewrite replaces the stored state with the snapshot.
	BulkRewrite(ctx context.Context, snap *Snapshot) error

	// RegenerateArtifacts refreshes derived files the store maintains.
	RegenerateArtifacts(ctx context.Context) error
}

// Locker serializes access to a store shared between processes.
type Locker interface {
	Acquire() error
	Release()
}
