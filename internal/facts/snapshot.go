package facts

import "time"

// Snapshot is an immutable copy of a Store, the sole input to rule
// evaluation. Typed accessors return false when the key is absent or
// holds a different kind, so rule predicates stay branch-simple.
type Snapshot struct {
	facts map[FactKey]Fact
}

// SnapshotOf builds a snapshot directly from facts. Intended for tests
// and one-shot CLI validation where no mutable store is needed.
func SnapshotOf(fs ...Fact) Snapshot {
	cp := make(map[FactKey]Fact, len(fs))
	for _, f := range fs {
		cp[f.Key] = f
	}
	return Snapshot{facts: cp}
}

// Has reports whether the key is present.
func (s Snapshot) Has(k FactKey) bool {
	_, ok := s.facts[k]
	return ok
}

// Get returns the value for a key.
func (s Snapshot) Get(k FactKey) (Value, bool) {
	f, ok := s.facts[k]
	return f.Value, ok
}

// Provenance returns the provenance tier for a key, ProvenanceMissing
// when absent.
func (s Snapshot) Provenance(k FactKey) Provenance {
	f, ok := s.facts[k]
	if !ok {
		return ProvenanceMissing
	}
	return f.Provenance
}

// Keys returns the present keys in registration order.
func (s Snapshot) Keys() []FactKey {
	var out []FactKey
	for _, k := range allKeys {
		if _, ok := s.facts[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of facts present.
func (s Snapshot) Len() int {
	return len(s.facts)
}

// Date returns the date payload of a date-kind fact.
func (s Snapshot) Date(k FactKey) (t time.Time, ok bool) {
	f, present := s.facts[k]
	if !present {
		return t, false
	}
	return f.Value.AsDate()
}

// Currency returns the amount of a currency-kind fact.
func (s Snapshot) Currency(k FactKey) (Pence, bool) {
	f, present := s.facts[k]
	if !present {
		return 0, false
	}
	return f.Value.AsCurrency()
}

// Bool returns the payload of a bool-kind fact.
func (s Snapshot) Bool(k FactKey) (bool, bool) {
	f, present := s.facts[k]
	if !present {
		return false, false
	}
	return f.Value.AsBool()
}

// Text returns the payload of a text-kind fact.
func (s Snapshot) Text(k FactKey) (string, bool) {
	f, present := s.facts[k]
	if !present {
		return "", false
	}
	return f.Value.AsText()
}

// Option returns the payload of an option-kind fact.
func (s Snapshot) Option(k FactKey) (string, bool) {
	f, present := s.facts[k]
	if !present {
		return "", false
	}
	return f.Value.AsOption()
}

// LineItems returns a copy of the items of a line-items-kind fact.
func (s Snapshot) LineItems(k FactKey) ([]ClaimLineItem, bool) {
	f, present := s.facts[k]
	if !present {
		return nil, false
	}
	return f.Value.AsLineItems()
}

// TrailEntry is one element of the provenance trail reported alongside
// a validation result.
type TrailEntry struct {
	Key        FactKey    `json:"key"`
	Provenance Provenance `json:"provenance"`
}

// Trail returns the provenance of every present fact, in registration
// order.
func (s Snapshot) Trail() []TrailEntry {
	var out []TrailEntry
	for _, k := range allKeys {
		if f, ok := s.facts[k]; ok {
			out = append(out, TrailEntry{Key: k, Provenance: f.Provenance})
		}
	}
	return out
}
