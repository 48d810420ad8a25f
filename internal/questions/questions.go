// Package questions derives an ordered question sequence from the
// missing facts of a validation result and feeds answers back into the
// fact store at user_confirmed provenance.
package questions

import (
	"fmt"
	"strings"

	"github.com/woodhall335/noticecheck/internal/datemath"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// InputKind describes the input control a question needs.
type InputKind string

const (
	InputYesNo        InputKind = "yes_no"
	InputDate         InputKind = "date"
	InputCurrency     InputKind = "currency"
	InputSingleSelect InputKind = "single_select"
	InputMultiSelect  InputKind = "multi_select"
	InputFreeText     InputKind = "free_text"
)

// Question is a typed input descriptor for one missing fact.
type Question struct {
	Key     facts.FactKey `json:"key"`
	Prompt  string        `json:"prompt"`
	Kind    InputKind     `json:"kind"`
	Options []string      `json:"options,omitempty"`
}

// Config customizes the question shown for a fact key. Keys without an
// entry fall back to a question derived from the fact registry.
type Config struct {
	Prompt string
	Kind   InputKind
}

// configs is the static FactKey to question mapping. Prompts are worded
// for the person filling in the notice, not for this codebase.
var configs = map[facts.FactKey]Config{
	facts.KeyServiceDate:           {Prompt: "What date was the notice served on the tenant?", Kind: InputDate},
	facts.KeyExpiryDate:            {Prompt: "What expiry date is stated on the notice?", Kind: InputDate},
	facts.KeyEarliestProceedings:   {Prompt: "What is the earliest date the notice says court proceedings will begin?", Kind: InputDate},
	facts.KeyTenancyStartDate:      {Prompt: "When did the tenancy start?", Kind: InputDate},
	facts.KeyFixedTermEndDate:      {Prompt: "When does the fixed term end?", Kind: InputDate},
	facts.KeyRentAmount:            {Prompt: "How much is the rent per period?", Kind: InputCurrency},
	facts.KeyRentFrequency:         {Prompt: "How often is rent due?", Kind: InputSingleSelect},
	facts.KeyGrounds:               {Prompt: "Which grounds for possession does the notice rely on?", Kind: InputMultiSelect},
	facts.KeyArrearsTotal:          {Prompt: "What is the total rent currently unpaid?", Kind: InputCurrency},
	facts.KeyDepositTaken:          {Prompt: "Was a deposit taken for this tenancy?", Kind: InputYesNo},
	facts.KeyDepositProtected:      {Prompt: "Is the deposit held in a government-approved protection scheme?", Kind: InputYesNo},
	facts.KeyDepositProtectionDate: {Prompt: "What date was the deposit protected?", Kind: InputDate},
	facts.KeyPrescribedInfoGiven:   {Prompt: "Was the prescribed deposit information given to the tenant?", Kind: InputYesNo},
	facts.KeyEPCProvided:           {Prompt: "Was an Energy Performance Certificate given to the tenant?", Kind: InputYesNo},
	facts.KeyGasSafetyProvided:     {Prompt: "Was a gas safety certificate given to the tenant?", Kind: InputYesNo},
	facts.KeyHowToRentProvided:     {Prompt: "Was the 'How to Rent' guide given to the tenant?", Kind: InputYesNo},
	facts.KeyLicenceRequired:       {Prompt: "Does the property need a selective or HMO licence?", Kind: InputYesNo},
	facts.KeyLicenceHeld:           {Prompt: "Is that licence currently held?", Kind: InputYesNo},
	facts.KeyLandlordRegistered:    {Prompt: "Is the landlord registered with Rent Smart Wales?", Kind: InputYesNo},
	facts.KeyNoticeForm:            {Prompt: "Which form was the notice served on?", Kind: InputSingleSelect},
	facts.KeyInterestClaimed:       {Prompt: "Is interest being claimed on the arrears?", Kind: InputYesNo},
	facts.KeyInterestRate:          {Prompt: "What interest rate or statutory basis applies?", Kind: InputFreeText},
}

// kindForValueKind maps registry value kinds to a default input kind.
var kindForValueKind = map[facts.Kind]InputKind{
	facts.KindText:     InputFreeText,
	facts.KindDate:     InputDate,
	facts.KindCurrency: InputCurrency,
	facts.KindBool:     InputYesNo,
	facts.KindOption:   InputSingleSelect,
}

// For builds the question descriptor for a fact key. The second return
// is false for keys that cannot be asked as a single question, such as
// structured line-item schedules.
func For(key facts.FactKey) (Question, bool) {
	info, ok := facts.Info(key)
	if !ok || info.Kind == facts.KindLineItems {
		return Question{}, false
	}

	q := Question{Key: key, Options: info.Options}
	if cfg, ok := configs[key]; ok {
		q.Prompt = cfg.Prompt
		q.Kind = cfg.Kind
	} else {
		q.Prompt = info.Label + "?"
		q.Kind = kindForValueKind[info.Kind]
	}
	return q, true
}

// MissingFactKeys extracts the askable missing facts from a result,
// de-duplicated, in rule registration order (the order the result
// reports them).
func MissingFactKeys(result report.Result) []facts.FactKey {
	var out []facts.FactKey
	seen := make(map[facts.FactKey]bool)
	for _, k := range result.MissingFacts {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ParseAnswer converts raw text input into a typed fact value for the
// key, following the key's registered kind.
func ParseAnswer(key facts.FactKey, raw string) (facts.Value, error) {
	info, ok := facts.Info(key)
	if !ok {
		return facts.Value{}, fmt.Errorf("unknown fact key %q", key)
	}
	raw = strings.TrimSpace(raw)

	switch info.Kind {
	case facts.KindText:
		return facts.Text(raw), nil
	case facts.KindDate:
		t, ok := datemath.ParseUKDate(raw)
		if !ok {
			return facts.Value{}, fmt.Errorf("%q is not a recognisable date", raw)
		}
		return facts.Date(t), nil
	case facts.KindCurrency:
		p, ok := facts.ParsePence(raw)
		if !ok {
			return facts.Value{}, fmt.Errorf("%q is not a recognisable amount", raw)
		}
		return facts.Currency(p), nil
	case facts.KindBool:
		switch strings.ToLower(raw) {
		case "yes", "y", "true":
			return facts.Bool(true), nil
		case "no", "n", "false":
			return facts.Bool(false), nil
		}
		return facts.Value{}, fmt.Errorf("answer %q is not yes or no", raw)
	case facts.KindOption:
		for _, opt := range info.Options {
			if strings.EqualFold(raw, opt) {
				return facts.Option(opt), nil
			}
		}
		return facts.Value{}, fmt.Errorf("%q is not one of %s", raw, strings.Join(info.Options, ", "))
	default:
		return facts.Value{}, fmt.Errorf("fact %s cannot be answered as a single value", key)
	}
}

// Flow walks a user through the outstanding questions for one session.
// Navigation is non-destructive: seeking back to an answered question
// keeps every other answer.
type Flow struct {
	store     *facts.Store
	validator *engine.Validator
	vk        rules.ValidatorKey
	j         rules.Jurisdiction

	pending []facts.FactKey
	pos     int
	latest  report.Result
}

// NewFlow starts a question flow, running an initial evaluation to
// discover the outstanding questions.
func NewFlow(store *facts.Store, v *engine.Validator, vk rules.ValidatorKey, j rules.Jurisdiction) *Flow {
	f := &Flow{store: store, validator: v, vk: vk, j: j}
	f.refresh()
	return f
}

// refresh re-evaluates and rebuilds the pending question list, keeping
// the cursor on the first unanswered question.
func (f *Flow) refresh() {
	f.latest = f.validator.Validate(f.store.Snapshot(), f.vk, f.j)

	var pending []facts.FactKey
	for _, k := range MissingFactKeys(f.latest) {
		if _, askable := For(k); askable {
			pending = append(pending, k)
		}
	}
	f.pending = pending
	if f.pos > len(pending) {
		f.pos = len(pending)
	}
}

// Result returns the most recent validation result.
func (f *Flow) Result() report.Result {
	return f.latest
}

// Remaining returns the keys still awaiting an answer, in order.
func (f *Flow) Remaining() []facts.FactKey {
	out := make([]facts.FactKey, len(f.pending))
	copy(out, f.pending)
	return out
}

// Current returns the question at the cursor; false when every
// question is answered.
func (f *Flow) Current() (Question, bool) {
	if f.pos >= len(f.pending) {
		return Question{}, false
	}
	q, _ := For(f.pending[f.pos])
	return q, true
}

// Seek moves the cursor to the question for the given key, allowing
// random access to any prior question. Answered state is untouched.
func (f *Flow) Seek(key facts.FactKey) bool {
	for i, k := range f.pending {
		if k == key {
			f.pos = i
			return true
		}
	}
	return false
}

// SubmitAnswer records a user answer at user_confirmed provenance and
// advances to the next unanswered question. The full rule set is
// re-evaluated so questions made moot by the answer disappear.
func (f *Flow) SubmitAnswer(key facts.FactKey, value facts.Value) error {
	if err := f.store.Set(key, value, facts.ProvenanceUserConfirmed); err != nil {
		return fmt.Errorf("recording answer for %s: %w", key, err)
	}
	f.pos = 0
	f.refresh()
	return nil
}

// Done reports whether any askable question remains.
func (f *Flow) Done() bool {
	return len(f.pending) == 0
}

// Complete runs the full re-evaluation once every question is answered.
// This is the sole re-entry point into the engine; there is no partial
// re-validation path.
func (f *Flow) Complete() (report.Result, error) {
	if !f.Done() {
		return report.Result{}, fmt.Errorf("%d question(s) still unanswered", len(f.pending))
	}
	f.latest = f.validator.Validate(f.store.Snapshot(), f.vk, f.j)
	return f.latest, nil
}
