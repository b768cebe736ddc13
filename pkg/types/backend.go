package types

import "context"

// DataSource supplies the initial contact set when a store initializes.
// Drafts may carry an ID and Favorite flag to restore persisted records.
type DataSource interface {
	LoadInitial(ctx context.Context) ([]Draft, error)
}

// Saver persists a full snapshot of the collection, replacing whatever it
// held before.
type Saver interface {
	Save(ctx context.Context, contacts []Contact) error
}

// Backend is a persistence collaborator that can both seed a store and
// receive its snapshots. Callers attach to a backend, use it, and detach
// when done.
type Backend interface {
	DataSource
	Saver

	// Attach connects the backend to the storage described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, LoadInitial and Save return ErrBackendDetached.
	Detach() error
}
