package facts

// Provenance is the confidence tier of a fact value. Tiers form a total
// order: missing < extracted < evidence_verified < user_confirmed. A
// write may only keep or raise the tier for a key unless forced.
type Provenance string

const (
	ProvenanceMissing          Provenance = "missing"
	ProvenanceExtracted        Provenance = "extracted"
	ProvenanceEvidenceVerified Provenance = "evidence_verified"
	ProvenanceUserConfirmed    Provenance = "user_confirmed"
)

var provenanceRank = map[Provenance]int{
	ProvenanceMissing:          0,
	ProvenanceExtracted:        1,
	ProvenanceEvidenceVerified: 2,
	ProvenanceUserConfirmed:    3,
}

// Rank returns the numeric confidence tier. Unknown provenance values
// rank below missing.
func (p Provenance) Rank() int {
	if r, ok := provenanceRank[p]; ok {
		return r
	}
	return -1
}

// Outranks reports whether p is a strictly higher tier than o.
func (p Provenance) Outranks(o Provenance) bool {
	return p.Rank() > o.Rank()
}

// Valid reports whether p is a recognized provenance tier.
func (p Provenance) Valid() bool {
	_, ok := provenanceRank[p]
	return ok
}
