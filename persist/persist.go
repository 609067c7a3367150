package persist

// Snapshotter loads and saves a full snapshot of a store. Load decodes the
// durable snapshot into v (leaving v untouched when no snapshot exists yet);
// Save overwrites the snapshot with v in one write.
type Snapshotter interface {
	Load(v any) error
	Save(v any) error
}

// Discard is a Snapshotter that persists nothing. Useful for tests and
// ephemeral demo setups.
type Discard struct{}

// Load leaves v untouched.
func (Discard) Load(any) error { return nil }

// Save drops the snapshot.
func (Discard) Save(any) error { return nil }
