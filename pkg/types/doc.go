// Package types defines the Contact entity, drafts and snapshots, the
// collaborator interfaces a store loads from and saves to, and the standard
// error types for the rolodex contact store.
package types
