package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/woodhall335/noticecheck/internal/audit"
	"github.com/woodhall335/noticecheck/internal/claims"
	"github.com/woodhall335/noticecheck/internal/db"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/questions"
	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

func setupStore(t *testing.T) (*Store, *audit.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	auditStore := audit.NewStore(database)
	return NewStore(database, auditStore, engine.New(claims.PolicyOffset)), auditStore
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateAndGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection8, rules.JurisdictionEngland, "case-42")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Create did not assign an ID")
	}
	if sess.Status != report.StatusUnknown {
		t.Errorf("new session status = %q, want unknown", sess.Status)
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing session")
	}
	if got.ValidatorKey != rules.ValidatorSection8 || got.Jurisdiction != rules.JurisdictionEngland {
		t.Errorf("GetByID = %+v", got)
	}
	if got.Reference != "case-42" {
		t.Errorf("Reference = %q", got.Reference)
	}
}

func TestCreateRejectsUnknownRegime(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, rules.ValidatorKey("section_99"), rules.JurisdictionEngland, ""); err == nil {
		t.Error("Create accepted an unknown validator")
	}
	if _, err := store.Create(ctx, rules.ValidatorSection21, rules.Jurisdiction("scotland"), ""); err == nil {
		t.Error("Create accepted an unknown jurisdiction")
	}
}

func TestGetByIDMissing(t *testing.T) {
	store, _ := setupStore(t)

	got, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("GetByID = %+v, want nil", got)
	}
}

func TestMergeFactsUpdatesStatus(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection8, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, applied, err := store.MergeFacts(ctx, sess.ID, []facts.Fact{
		{Key: facts.KeyServiceDate, Value: facts.Date(day(2025, time.March, 1)), Provenance: facts.ProvenanceExtracted},
		{Key: facts.KeyGrounds, Value: facts.Text("Grounds 10 and 11"), Provenance: facts.ProvenanceExtracted},
	})
	if err != nil {
		t.Fatalf("MergeFacts: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if result.Status != report.StatusNeedsInfo {
		t.Errorf("status = %q, want needs_info with most facts absent", result.Status)
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != report.StatusNeedsInfo {
		t.Errorf("persisted status = %q, want needs_info", got.Status)
	}
}

func TestMergeFactsSkipsDowngrades(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection8, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.KeyServiceDate, "1 March 2025"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	// A later extraction must not replace the user's answer.
	_, applied, err := store.MergeFacts(ctx, sess.ID, []facts.Fact{
		{Key: facts.KeyServiceDate, Value: facts.Date(day(2025, time.April, 1)), Provenance: facts.ProvenanceExtracted},
	})
	if err != nil {
		t.Fatalf("MergeFacts: %v", err)
	}
	if applied != 0 {
		t.Errorf("applied = %d, want 0 for outranked write", applied)
	}

	result, err := store.Result(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	for _, e := range result.ProvenanceTrail {
		if e.Key == facts.KeyServiceDate && e.Provenance != facts.ProvenanceUserConfirmed {
			t.Errorf("service_date provenance = %q, want user_confirmed", e.Provenance)
		}
	}
}

func TestFactsSurviveReload(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorMoneyClaim, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	items := []facts.ClaimLineItem{
		{Category: facts.CategoryArrears, Period: "January 2025", Description: "Rent due", AmountDue: 150000},
		{Category: facts.CategoryArrears, Period: "February 2025", Description: "Rent due", AmountDue: 150000, AmountPaid: 50000},
	}
	if _, _, err := store.MergeFacts(ctx, sess.ID, []facts.Fact{
		{Key: facts.KeyArrearsItems, Value: facts.LineItems(items), Provenance: facts.ProvenanceExtracted},
	}); err != nil {
		t.Fatalf("MergeFacts: %v", err)
	}

	// A fresh evaluation rebuilds the fact store from SQLite.
	result, err := store.Result(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result.TotalClaimAmount != 250000 {
		t.Errorf("TotalClaimAmount = %s, want £2,500.00", result.TotalClaimAmount)
	}
	if result.Status != report.StatusPass {
		t.Errorf("status = %q, want pass for a positive claim", result.Status)
	}
}

func TestSubmitAnswerRemovesQuestion(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection21, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before, err := store.Questions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(before) == 0 {
		t.Fatal("empty section 21 session should have questions")
	}
	hasKey := func(qs []questions.Question, key facts.FactKey) bool {
		for _, q := range qs {
			if q.Key == key {
				return true
			}
		}
		return false
	}
	if !hasKey(before, facts.KeyExpiryDate) {
		t.Fatal("expiry_date not among initial questions")
	}

	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.KeyExpiryDate, "14 July 2026"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	after, err := store.Questions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if hasKey(after, facts.KeyExpiryDate) {
		t.Error("expiry_date still asked after being answered")
	}
	if len(after) >= len(before)+1 {
		t.Errorf("answering grew the question list: %d -> %d", len(before), len(after))
	}
}

func TestSubmitAnswerRejectsBadInput(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection21, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.KeyExpiryDate, "whenever"); err == nil {
		t.Error("SubmitAnswer accepted an unparseable date")
	}
	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.FactKey("bogus"), "yes"); err == nil {
		t.Error("SubmitAnswer accepted an unknown key")
	}
}

func TestAuditTrailRecordsWrites(t *testing.T) {
	store, auditStore := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection8, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.KeyServiceDate, "1 March 2025"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := store.SubmitAnswer(ctx, sess.ID, facts.KeyServiceDate, "2 March 2025"); err != nil {
		t.Fatalf("SubmitAnswer (correction): %v", err)
	}

	entries, err := auditStore.ListBySession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d audit entries, want 2", len(entries))
	}
	if entries[0].PreviousValue != "" {
		t.Errorf("first write PreviousValue = %q, want empty", entries[0].PreviousValue)
	}
	if entries[1].PreviousValue == "" {
		t.Error("correction did not record the previous value")
	}
	for _, e := range entries {
		if e.FactKey != string(facts.KeyServiceDate) {
			t.Errorf("FactKey = %q", e.FactKey)
		}
		if e.Provenance != string(facts.ProvenanceUserConfirmed) {
			t.Errorf("Provenance = %q", e.Provenance)
		}
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, rules.ValidatorSection8, rules.JurisdictionWales, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Error("session still present after delete")
	}
	if err := store.Delete(ctx, sess.ID); err == nil {
		t.Error("second delete should fail")
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store, auditStore := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, auditStore)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshalling request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create.
	resp := postJSON(t, srv.URL+"/api/sessions/", map[string]string{
		"validator_key": "section_21",
		"jurisdiction":  "england",
		"reference":     "case-7",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created Session
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	resp.Body.Close()

	base := srv.URL + "/api/sessions/" + created.ID

	// Submit facts.
	resp = postJSON(t, base+"/facts", map[string]any{
		"provenance": "extracted",
		"facts": map[string]any{
			"service_date": map[string]any{"kind": "date", "date": "2025-12-22"},
			"expiry_date":  map[string]any{"kind": "date", "date": "2026-07-14"},
			"notice_form":  map[string]any{"kind": "option", "option": "form_6a"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("facts status = %d", resp.StatusCode)
	}
	var merged mergeFactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&merged); err != nil {
		t.Fatalf("decoding merge response: %v", err)
	}
	resp.Body.Close()
	if merged.Applied != 3 {
		t.Errorf("applied = %d, want 3", merged.Applied)
	}

	// Outstanding questions.
	qresp, err := http.Get(base + "/questions")
	if err != nil {
		t.Fatalf("GET questions: %v", err)
	}
	var qs []questions.Question
	if err := json.NewDecoder(qresp.Body).Decode(&qs); err != nil {
		t.Fatalf("decoding questions: %v", err)
	}
	qresp.Body.Close()
	if len(qs) == 0 {
		t.Fatal("no questions for an incomplete session")
	}
	for _, q := range qs {
		if q.Key == facts.KeyExpiryDate {
			t.Error("already-known expiry_date still asked")
		}
	}

	// Answer one.
	resp = postJSON(t, base+"/answers", map[string]string{
		"key":    "deposit_taken",
		"answer": "no",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Result.
	rresp, err := http.Get(base + "/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	var result report.Result
	if err := json.NewDecoder(rresp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	rresp.Body.Close()
	if result.Status != report.StatusNeedsInfo {
		t.Errorf("status = %q, want needs_info while compliance facts are absent", result.Status)
	}

	// Audit trail.
	aresp, err := http.Get(base + "/audit")
	if err != nil {
		t.Fatalf("GET audit: %v", err)
	}
	var entries []audit.Entry
	if err := json.NewDecoder(aresp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding audit: %v", err)
	}
	aresp.Body.Close()
	if len(entries) != 4 {
		t.Errorf("audit entries = %d, want 4", len(entries))
	}
}

func TestHTTPValidationErrors(t *testing.T) {
	srv, store := newTestServer(t)

	tests := []struct {
		name   string
		status int
		do     func() *http.Response
	}{
		{
			name:   "unknown jurisdiction",
			status: http.StatusBadRequest,
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/api/sessions/", map[string]string{
					"validator_key": "section_8",
					"jurisdiction":  "scotland",
				})
			},
		},
		{
			name:   "missing body fields",
			status: http.StatusBadRequest,
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/api/sessions/", map[string]string{})
			},
		},
		{
			name:   "facts for unknown session",
			status: http.StatusNotFound,
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/api/sessions/nope/facts", map[string]any{
					"facts": map[string]any{
						"service_date": map[string]any{"kind": "date", "date": "2025-12-22"},
					},
				})
			},
		},
		{
			name:   "unknown session result",
			status: http.StatusNotFound,
			do: func() *http.Response {
				resp, err := http.Get(srv.URL + "/api/sessions/nope/result")
				if err != nil {
					t.Fatalf("GET result: %v", err)
				}
				return resp
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.do()
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	// Unknown fact key in a merge payload.
	sess, err := store.Create(context.Background(), rules.ValidatorSection8, rules.JurisdictionEngland, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	resp := postJSON(t, fmt.Sprintf("%s/api/sessions/%s/facts", srv.URL, sess.ID), map[string]any{
		"facts": map[string]any{
			"bogus_key": map[string]any{"kind": "text", "text": "x"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown key status = %d, want 400", resp.StatusCode)
	}
}
