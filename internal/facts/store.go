package facts

import "fmt"

// Fact is a value together with its provenance.
type Fact struct {
	Key        FactKey    `json:"key"`
	Value      Value      `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// DowngradeError is returned when a write would lower the provenance
// tier of an existing fact without the force flag.
type DowngradeError struct {
	Key      FactKey
	Existing Provenance
	Incoming Provenance
}

func (e *DowngradeError) Error() string {
	return fmt.Sprintf("fact %s already has %s provenance, refusing %s write", e.Key, e.Existing, e.Incoming)
}

// WriteEvent describes one accepted write, for audit recording.
type WriteEvent struct {
	Key      FactKey
	Value    Value
	Incoming Provenance
	Previous Provenance // ProvenanceMissing for first writes
	Forced   bool
}

// Recorder receives accepted writes. Used by the session layer to
// persist the provenance trail; nil disables recording.
type Recorder func(WriteEvent)

// Store is the mutable fact map for one validation session. It is not
// safe for concurrent use; a session is driven by one caller at a time
// and the engine only ever sees immutable snapshots.
type Store struct {
	facts    map[FactKey]Fact
	recorder Recorder
}

// NewStore creates an empty fact store.
func NewStore() *Store {
	return &Store{facts: make(map[FactKey]Fact)}
}

// SetRecorder installs the write recorder.
func (s *Store) SetRecorder(r Recorder) {
	s.recorder = r
}

// Get returns the value and provenance for a key.
func (s *Store) Get(k FactKey) (Value, Provenance, bool) {
	f, ok := s.facts[k]
	if !ok {
		return Value{}, ProvenanceMissing, false
	}
	return f.Value, f.Provenance, true
}

// Set writes a fact. It rejects unknown keys, values whose kind does
// not match the key's registered kind, and provenance downgrades. Equal
// provenance overwrites are allowed (re-extraction, corrected answers).
func (s *Store) Set(k FactKey, v Value, p Provenance) error {
	return s.set(k, v, p, false)
}

// ForceSet writes a fact even when it lowers the provenance tier. Used
// only for corrective user edits.
func (s *Store) ForceSet(k FactKey, v Value, p Provenance) error {
	return s.set(k, v, p, true)
}

func (s *Store) set(k FactKey, v Value, p Provenance, force bool) error {
	info, ok := registry[k]
	if !ok {
		return fmt.Errorf("unknown fact key %q", k)
	}
	if v.Kind() != info.Kind {
		return fmt.Errorf("fact %s requires a %s value, got %s", k, info.Kind, v.Kind())
	}
	if !p.Valid() || p == ProvenanceMissing {
		return fmt.Errorf("invalid provenance %q for fact %s", p, k)
	}

	previous := ProvenanceMissing
	if existing, ok := s.facts[k]; ok {
		previous = existing.Provenance
		if previous.Outranks(p) && !force {
			return &DowngradeError{Key: k, Existing: previous, Incoming: p}
		}
	}

	s.facts[k] = Fact{Key: k, Value: v, Provenance: p}
	if s.recorder != nil {
		s.recorder(WriteEvent{Key: k, Value: v, Incoming: p, Previous: previous, Forced: force})
	}
	return nil
}

// Merge bulk-applies extracted facts. Facts whose existing provenance
// outranks extracted are left untouched rather than erroring, so a
// re-extraction can never clobber confirmed answers. It returns the
// number of facts applied.
func (s *Store) Merge(values map[FactKey]Value) int {
	return s.MergeAt(values, ProvenanceExtracted)
}

// MergeAt bulk-applies facts at the given provenance, skipping keys the
// incoming tier cannot overwrite and keys that fail validation.
func (s *Store) MergeAt(values map[FactKey]Value, p Provenance) int {
	applied := 0
	// Iterate in registration order so recorder output is deterministic.
	for _, k := range allKeys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if existing, ok := s.facts[k]; ok && existing.Provenance.Outranks(p) {
			continue
		}
		if err := s.set(k, v, p, false); err == nil {
			applied++
		}
	}
	return applied
}

// Len returns the number of facts held.
func (s *Store) Len() int {
	return len(s.facts)
}

// Snapshot returns an immutable copy of the current facts. The engine
// evaluates snapshots only, so mutation after the call cannot produce
// inconsistent results.
func (s *Store) Snapshot() Snapshot {
	cp := make(map[FactKey]Fact, len(s.facts))
	for k, f := range s.facts {
		cp[k] = f
	}
	return Snapshot{facts: cp}
}
