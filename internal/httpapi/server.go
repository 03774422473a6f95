// Package httpapi exposes the trainer's operations as a JSON API plus a
// websocket event stream. It is the contract surface for whatever UI sits in
// front of the trainer.
package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/amf-prep/trainer/internal/questionbank"
	"github.com/amf-prep/trainer/internal/training"
)

// Bank is the question source the API serves from.
type Bank interface {
	IDs() []int
	Get(id int) (questionbank.Question, bool)
	Len() int
	Loaded() bool
	SetSource(path string)
	Load(ctx context.Context) error
}

// Server holds the API's collaborators and the single active session.
// The trainer is single-user: one session at a time, guarded by mu.
type Server struct {
	bank     Bank
	selector *training.Selector
	grader   *training.Grader
	store    training.Store
	dataDir  string
	events   *Broadcaster

	mu   sync.Mutex
	sess *training.Session
}

// NewServer creates the API server.
func NewServer(bank Bank, selector *training.Selector, grader *training.Grader, store training.Store, dataDir string) *Server {
	return &Server{
		bank:     bank,
		selector: selector,
		grader:   grader,
		store:    store,
		dataDir:  dataDir,
		events:   NewBroadcaster(),
	}
}

// Routes returns the HTTP mux for the API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/reset/seen", s.handleResetSeen)
	mux.HandleFunc("POST /api/reset/wrong", s.handleResetWrong)

	mux.HandleFunc("POST /api/session/start", s.handleStart)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/session/flag", s.handleFlag)
	mux.HandleFunc("POST /api/session/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/session/next", s.handleNext)
	mux.HandleFunc("POST /api/session/prev", s.handlePrev)
	mux.HandleFunc("POST /api/session/restart", s.handleRestart)

	mux.HandleFunc("GET /api/session/events", s.handleEvents)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.bank.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no question bank"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
