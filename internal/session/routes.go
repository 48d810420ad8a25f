package session

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/woodhall335/noticecheck/internal/audit"
	"github.com/woodhall335/noticecheck/internal/facts"
	"github.com/woodhall335/noticecheck/internal/questions"
	"github.com/woodhall335/noticecheck/internal/report"
	"github.com/woodhall335/noticecheck/internal/rules"
)

// RegisterRoutes mounts the session API routes.
func RegisterRoutes(r chi.Router, store *Store, auditStore *audit.Store) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{id}", handleGetByID(store))
		r.Delete("/{id}", handleDelete(store))
		r.Post("/{id}/facts", handleMergeFacts(store))
		r.Get("/{id}/questions", handleQuestions(store))
		r.Post("/{id}/answers", handleAnswer(store))
		r.Get("/{id}/result", handleResult(store))
		r.Get("/{id}/audit", handleAudit(auditStore))
	})
}

type createRequest struct {
	ValidatorKey rules.ValidatorKey `json:"validator_key"`
	Jurisdiction rules.Jurisdiction `json:"jurisdiction"`
	Reference    string             `json:"reference"`
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ValidatorKey == "" || req.Jurisdiction == "" {
			http.Error(w, `{"error":"validator_key and jurisdiction are required"}`, http.StatusBadRequest)
			return
		}

		sess, err := store.Create(r.Context(), req.ValidatorKey, req.Jurisdiction, req.Reference)
		if err != nil {
			if strings.HasPrefix(err.Error(), "unknown") {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sess)
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{}
		if v := r.URL.Query().Get("status"); v != "" {
			filter.Status = report.Status(v)
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		sessions, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []Session{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sessions)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := store.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if sess == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type mergeFactsRequest struct {
	Provenance facts.Provenance              `json:"provenance"`
	Facts      map[facts.FactKey]facts.Value `json:"facts"`
}

type mergeFactsResponse struct {
	Applied int           `json:"applied"`
	Result  report.Result `json:"result"`
}

func handleMergeFacts(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req mergeFactsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		if len(req.Facts) == 0 {
			http.Error(w, `{"error":"facts are required"}`, http.StatusBadRequest)
			return
		}
		if req.Provenance == "" {
			req.Provenance = facts.ProvenanceExtracted
		}

		// Apply in registry order so the audit trail is deterministic.
		var batch []facts.Fact
		for _, key := range facts.Keys() {
			if v, ok := req.Facts[key]; ok {
				batch = append(batch, facts.Fact{Key: key, Value: v, Provenance: req.Provenance})
			}
		}
		if len(batch) != len(req.Facts) {
			http.Error(w, `{"error":"unknown fact key in request"}`, http.StatusBadRequest)
			return
		}

		result, applied, err := store.MergeFacts(r.Context(), id, batch)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mergeFactsResponse{Applied: applied, Result: result})
	}
}

func handleQuestions(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		qs, err := store.Questions(r.Context(), id)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if qs == nil {
			qs = []questions.Question{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(qs)
	}
}

type answerRequest struct {
	Key    facts.FactKey `json:"key"`
	Answer string        `json:"answer"`
}

func handleAnswer(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Key == "" || req.Answer == "" {
			http.Error(w, `{"error":"key and answer are required"}`, http.StatusBadRequest)
			return
		}

		result, err := store.SubmitAnswer(r.Context(), id, req.Key, req.Answer)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleResult(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		result, err := store.Result(r.Context(), id)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleAudit(auditStore *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entries, err := auditStore.ListBySession(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []audit.Entry{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
