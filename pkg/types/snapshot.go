package types

// Snapshot is a point-in-time copy of the contact collection. It shares no
// memory with the store that produced it.
type Snapshot struct {
	Contacts []Contact // Canonical (insertion) order.
	Loading  bool      // Initialization is in progress.
	Ready    bool      // Initialization has completed.
	Version  uint64    // Incremented on every applied change.
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Contacts = CloneContacts(s.Contacts)
	return out
}

// Listener observes snapshots published by a store.
type Listener func(Snapshot)
