// Package casefile loads validation cases from YAML files, so a whole
// case can be checked from the command line without driving the
// question flow by hand.
package casefile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// File is one parsed case: the regime to validate under and the facts
// known about it.
type File struct {
	ValidatorKey rules.ValidatorKey
	Jurisdiction rules.Jurisdiction
	Reference    string
	Provenance   facts.Provenance
	Facts        []facts.Fact
}

type fileYAML struct {
	ValidatorKey string         `yaml:"validator_key"`
	Jurisdiction string         `yaml:"jurisdiction"`
	Reference    string         `yaml:"reference"`
	Provenance   string         `yaml:"provenance"`
	Facts        map[string]any `yaml:"facts"`
}

type lineItemYAML struct {
	Category    string `yaml:"category"`
	Period      string `yaml:"period"`
	Description string `yaml:"description"`
	AmountDue   any    `yaml:"amount_due"`
	AmountPaid  any    `yaml:"amount_paid"`
}

// Load reads and parses a case file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML case description. Fact values are coerced to the
// kind each key is registered with, so dates and amounts can be written
// the way they appear on the notice.
func Parse(data []byte) (*File, error) {
	var raw fileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing case file: %w", err)
	}

	if raw.ValidatorKey == "" {
		return nil, fmt.Errorf("case file missing validator_key")
	}
	if raw.Jurisdiction == "" {
		return nil, fmt.Errorf("case file missing jurisdiction")
	}

	f := &File{
		ValidatorKey: rules.ValidatorKey(raw.ValidatorKey),
		Jurisdiction: rules.Jurisdiction(raw.Jurisdiction),
		Reference:    raw.Reference,
		Provenance:   facts.ProvenanceExtracted,
	}
	if raw.Provenance != "" {
		p := facts.Provenance(raw.Provenance)
		if !p.Valid() || p == facts.ProvenanceMissing {
			return nil, fmt.Errorf("invalid provenance %q", raw.Provenance)
		}
		f.Provenance = p
	}

	// Registry order keeps output and audit trails deterministic
	// regardless of YAML map ordering.
	coerced := 0
	for _, key := range facts.Keys() {
		node, ok := raw.Facts[string(key)]
		if !ok {
			continue
		}
		value, err := coerce(key, node)
		if err != nil {
			return nil, fmt.Errorf("fact %s: %w", key, err)
		}
		f.Facts = append(f.Facts, facts.Fact{Key: key, Value: value, Provenance: f.Provenance})
		coerced++
	}
	if coerced != len(raw.Facts) {
		for name := range raw.Facts {
			if !facts.Known(facts.FactKey(name)) {
				return nil, fmt.Errorf("unknown fact key %q", name)
			}
		}
	}

	return f, nil
}

func coerce(key facts.FactKey, node any) (facts.Value, error) {
	kind, _ := facts.KindOf(key)

	switch kind {
	case facts.KindText:
		s, ok := node.(string)
		if !ok {
			return facts.Value{}, fmt.Errorf("expected text, got %T", node)
		}
		return facts.Text(s), nil

	case facts.KindDate:
		switch v := node.(type) {
		case string:
			t, ok := datemath.ParseUKDate(v)
			if !ok {
				return facts.Value{}, fmt.Errorf("%q is not a recognisable date", v)
			}
			return facts.Date(t), nil
		case time.Time:
			return facts.Date(v), nil
		}
		return facts.Value{}, fmt.Errorf("expected a date, got %T", node)

	case facts.KindCurrency:
		p, err := coerceAmount(node)
		if err != nil {
			return facts.Value{}, err
		}
		return facts.Currency(p), nil

	case facts.KindBool:
		switch v := node.(type) {
		case bool:
			return facts.Bool(v), nil
		case string:
			switch v {
			case "yes", "y", "true":
				return facts.Bool(true), nil
			case "no", "n", "false":
				return facts.Bool(false), nil
			}
		}
		return facts.Value{}, fmt.Errorf("expected yes or no, got %v", node)

	case facts.KindOption:
		s, ok := node.(string)
		if !ok {
			return facts.Value{}, fmt.Errorf("expected an option, got %T", node)
		}
		info, _ := facts.Info(key)
		for _, opt := range info.Options {
			if s == opt {
				return facts.Option(opt), nil
			}
		}
		return facts.Value{}, fmt.Errorf("%q is not a valid option", s)

	case facts.KindLineItems:
		items, err := coerceLineItems(node)
		if err != nil {
			return facts.Value{}, err
		}
		return facts.LineItems(items), nil
	}

	return facts.Value{}, fmt.Errorf("unknown value kind %q", kind)
}

func coerceAmount(node any) (facts.Pence, error) {
	switch v := node.(type) {
	case string:
		p, ok := facts.ParsePence(v)
		if !ok {
			return 0, fmt.Errorf("%q is not a recognisable amount", v)
		}
		return p, nil
	case int:
		return facts.PoundsToPence(float64(v)), nil
	case float64:
		return facts.PoundsToPence(v), nil
	}
	return 0, fmt.Errorf("expected an amount, got %T", node)
}

func coerceLineItems(node any) ([]facts.ClaimLineItem, error) {
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of line items, got %T", node)
	}

	items := make([]facts.ClaimLineItem, 0, len(list))
	for i, entry := range list {
		// Round-trip through YAML to reuse struct decoding on the
		// already-parsed node.
		raw, err := yaml.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		var item lineItemYAML
		if err := yaml.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		out := facts.ClaimLineItem{
			Category:    facts.CategoryArrears,
			Period:      item.Period,
			Description: item.Description,
		}
		if item.Category != "" {
			c := facts.LineCategory(item.Category)
			switch c {
			case facts.CategoryArrears, facts.CategoryDamage, facts.CategoryOtherCharge:
				out.Category = c
			default:
				return nil, fmt.Errorf("item %d: unknown category %q", i+1, item.Category)
			}
		}
		if item.AmountDue != nil {
			due, err := coerceAmount(item.AmountDue)
			if err != nil {
				return nil, fmt.Errorf("item %d amount_due: %w", i+1, err)
			}
			out.AmountDue = due
		}
		if item.AmountPaid != nil {
			paid, err := coerceAmount(item.AmountPaid)
			if err != nil {
				return nil, fmt.Errorf("item %d amount_paid: %w", i+1, err)
			}
			out.AmountPaid = paid
		}
		items = append(items, out)
	}
	return items, nil
}
