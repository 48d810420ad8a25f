package facts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pence is a monetary amount in pence. Claim arithmetic stays exact by
// never leaving integer minor units.
type Pence int64

// PoundsToPence converts a pounds amount to pence, rounding to the
// nearest penny.
func PoundsToPence(pounds float64) Pence {
	if pounds < 0 {
		return -PoundsToPence(-pounds)
	}
	return Pence(pounds*100 + 0.5)
}

// ParsePence leniently parses amounts like "1,500.00", "£3000" or
// "1500.5". It returns false on malformed input.
func ParsePence(s string) (Pence, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	pounds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}

	var pence int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, false
		}
		if len(frac) == 1 {
			frac += "0"
		}
		pence, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
	}

	total := Pence(pounds*100 + pence)
	if neg {
		total = -total
	}
	return total, true
}

// String renders the amount as pounds with thousands separators,
// e.g. "£3,000.00".
func (p Pence) String() string {
	neg := p < 0
	if neg {
		p = -p
	}
	pounds := int64(p) / 100
	pence := int64(p) % 100

	digits := strconv.FormatInt(pounds, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s£%s.%02d", sign, b.String(), pence)
}

// LineCategory classifies a claim line item.
type LineCategory string

const (
	CategoryArrears     LineCategory = "arrears"
	CategoryDamage      LineCategory = "damage"
	CategoryOtherCharge LineCategory = "other_charge"
)

// ClaimLineItem is one row of a claim schedule. The aggregator only
// reads these; nothing mutates a line item after construction.
type ClaimLineItem struct {
	Category    LineCategory `json:"category"`
	Period      string       `json:"period,omitempty"`
	Description string       `json:"description,omitempty"`
	AmountDue   Pence        `json:"amount_due"`
	AmountPaid  Pence        `json:"amount_paid"`
}

// Balance is the outstanding amount for the item. It may be negative
// when the tenant has overpaid a period.
func (li ClaimLineItem) Balance() Pence {
	return li.AmountDue - li.AmountPaid
}

// Kind tags the variants of a fact value.
type Kind string

const (
	KindText      Kind = "text"
	KindDate      Kind = "date"
	KindCurrency  Kind = "currency"
	KindBool      Kind = "bool"
	KindOption    Kind = "option"
	KindLineItems Kind = "line_items"
)

// Value is a tagged union over the kinds a fact may hold. Construct
// values through Text, Date, Currency, Bool, Option or LineItems;
// untyped blobs are not representable.
type Value struct {
	kind    Kind
	text    string
	date    time.Time
	amount  Pence
	boolean bool
	option  string
	items   []ClaimLineItem
}

// Text returns a text-kind value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Date returns a date-kind value.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Currency returns a currency-kind value.
func Currency(p Pence) Value { return Value{kind: KindCurrency, amount: p} }

// Bool returns a bool-kind value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Option returns an enum-option value.
func Option(s string) Value { return Value{kind: KindOption, option: s} }

// LineItems returns a line-items value holding a copy of items.
func LineItems(items []ClaimLineItem) Value {
	cp := make([]ClaimLineItem, len(items))
	copy(cp, items)
	return Value{kind: KindLineItems, items: cp}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsText returns the text payload if the value is text-kind.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsDate returns the date payload if the value is date-kind.
func (v Value) AsDate() (time.Time, bool) { return v.date, v.kind == KindDate }

// AsCurrency returns the amount if the value is currency-kind.
func (v Value) AsCurrency() (Pence, bool) { return v.amount, v.kind == KindCurrency }

// AsBool returns the boolean payload if the value is bool-kind.
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// AsOption returns the option payload if the value is option-kind.
func (v Value) AsOption() (string, bool) { return v.option, v.kind == KindOption }

// AsLineItems returns a copy of the line items if the value is
// line-items-kind.
func (v Value) AsLineItems() ([]ClaimLineItem, bool) {
	if v.kind != KindLineItems {
		return nil, false
	}
	cp := make([]ClaimLineItem, len(v.items))
	copy(cp, v.items)
	return cp, true
}

// String renders the payload for display.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindDate:
		return v.date.Format("2 January 2006")
	case KindCurrency:
		return v.amount.String()
	case KindBool:
		if v.boolean {
			return "yes"
		}
		return "no"
	case KindOption:
		return v.option
	case KindLineItems:
		return fmt.Sprintf("%d line item(s)", len(v.items))
	default:
		return ""
	}
}

const dateWireLayout = "2006-01-02"

// valueJSON is the wire form of Value, used for session persistence and
// the HTTP API.
type valueJSON struct {
	Kind   Kind            `json:"kind"`
	Text   string          `json:"text,omitempty"`
	Date   string          `json:"date,omitempty"`
	Amount *Pence          `json:"amount,omitempty"`
	Bool   *bool           `json:"bool,omitempty"`
	Option string          `json:"option,omitempty"`
	Items  []ClaimLineItem `json:"items,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	w := valueJSON{Kind: v.kind}
	switch v.kind {
	case KindText:
		w.Text = v.text
	case KindDate:
		w.Date = v.date.Format(dateWireLayout)
	case KindCurrency:
		amount := v.amount
		w.Amount = &amount
	case KindBool:
		b := v.boolean
		w.Bool = &b
	case KindOption:
		w.Option = v.option
	case KindLineItems:
		w.Items = v.items
	default:
		return nil, fmt.Errorf("marshalling fact value: unknown kind %q", v.kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case KindText:
		*v = Text(w.Text)
	case KindDate:
		t, err := time.Parse(dateWireLayout, w.Date)
		if err != nil {
			return fmt.Errorf("unmarshalling date fact: %w", err)
		}
		*v = Date(t)
	case KindCurrency:
		var amount Pence
		if w.Amount != nil {
			amount = *w.Amount
		}
		*v = Currency(amount)
	case KindBool:
		var b bool
		if w.Bool != nil {
			b = *w.Bool
		}
		*v = Bool(b)
	case KindOption:
		*v = Option(w.Option)
	case KindLineItems:
		*v = LineItems(w.Items)
	default:
		return fmt.Errorf("unmarshalling fact value: unknown kind %q", w.Kind)
	}
	return nil
}
