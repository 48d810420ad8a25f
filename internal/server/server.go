package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/woodhall335/noticecheck/internal/audit"
	"github.com/woodhall335/noticecheck/internal/db"
	"github.com/woodhall335/noticecheck/internal/engine"
	"github.com/woodhall335/noticecheck/internal/rules"
	"github.com/woodhall335/noticecheck/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DataDir  string // directory for the SQLite DB
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server is the noticecheck HTTP API server.
type Server struct {
	cfg        Config
	db         *db.DB
	validator  *engine.Validator
	sessions   *session.Store
	audits     *audit.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies wired.
func New(cfg Config, database *db.DB, validator *engine.Validator) *Server {
	s := &Server{
		cfg:       cfg,
		db:        database,
		validator: validator,
	}
	s.audits = audit.NewStore(database)
	s.sessions = session.NewStore(database, s.audits, validator)

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Rule catalogue
	r.Get("/api/rules", s.handleListRules)

	session.RegisterRoutes(r, s.sessions, s.audits)
	audit.RegisterRoutes(r, s.audits)

	return r
}

// ruleInfo is the wire form of one registered rule.
type ruleInfo struct {
	ID            string               `json:"id"`
	Jurisdictions []rules.Jurisdiction `json:"jurisdictions"`
	ValidatorKeys []rules.ValidatorKey `json:"validator_keys"`
	Severity      rules.Severity       `json:"severity"`
	Section       string               `json:"section,omitempty"`
	Requires      []string             `json:"requires,omitempty"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vk := rules.ValidatorKey(q.Get("validator"))
	j := rules.Jurisdiction(q.Get("jurisdiction"))

	all := s.validator.Registry().All()

	out := make([]ruleInfo, 0, len(all))
	for _, rule := range all {
		if vk != "" && !containsValidatorKey(rule.ValidatorKeys, vk) {
			continue
		}
		if j != "" && !containsJurisdictionValue(rule.Jurisdictions, j) {
			continue
		}
		info := ruleInfo{
			ID:            rule.ID,
			Jurisdictions: rule.Jurisdictions,
			ValidatorKeys: rule.ValidatorKeys,
			Severity:      rule.Severity,
			Section:       rule.Section,
		}
		for _, key := range rule.Requires {
			info.Requires = append(info.Requires, string(key))
		}
		out = append(out, info)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func containsValidatorKey(keys []rules.ValidatorKey, vk rules.ValidatorKey) bool {
	for _, k := range keys {
		if k == vk {
			return true
		}
	}
	return false
}

func containsJurisdictionValue(js []rules.Jurisdiction, j rules.Jurisdiction) bool {
	for _, x := range js {
		if x == j {
			return true
		}
	}
	return false
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("noticecheck server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
