package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/amf-prep/trainer/internal/training"
)

const maxImportSize = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode            string `json:"mode"`
		ReviewWrongOnly bool   `json:"review_wrong_only"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := training.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.bank.Loaded() {
		writeError(w, http.StatusServiceUnavailable, "question bank not loaded")
		return
	}

	ctx := r.Context()
	allIDs := s.bank.IDs()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case training.ModeExam:
		s.sess = s.selector.StartExam(ctx, allIDs, req.ReviewWrongOnly)
	case training.ModeSequence:
		s.sess = s.selector.StartSequence(ctx, allIDs)
	case training.ModeSprint:
		s.sess = s.selector.StartSprint(ctx, allIDs)
	}

	slog.Info("session started", "mode", mode, "questions", len(s.sess.IDs))
	view := s.newSessionView(s.sess)
	s.events.Publish(Event{Type: "session_started", Payload: view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, s.newSessionView(s.sess))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int    `json:"id"`
		Letter string `json:"letter"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	if s.sess.Submitted {
		writeError(w, http.StatusConflict, "session already submitted")
		return
	}
	if err := s.sess.SetAnswer(req.ID, req.Letter); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.events.Publish(Event{Type: "answered", Payload: s.newSessionView(s.sess)})
	writeJSON(w, http.StatusOK, map[string]int{
		"answered": s.sess.Answered(),
		"total":    len(s.sess.IDs),
	})
}

func (s *Server) handleFlag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      int  `json:"id"`
		Flagged bool `json:"flagged"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	if s.sess.Submitted {
		writeError(w, http.StatusConflict, "session already submitted")
		return
	}
	if err := s.sess.SetFlag(req.ID, req.Flagged); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.events.Publish(Event{Type: "flagged", Payload: s.newSessionView(s.sess)})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	if s.sess.Submitted {
		writeError(w, http.StatusConflict, "session already submitted")
		return
	}

	report := s.grader.Grade(r.Context(), s.batchQuestions(s.sess), s.sess)
	slog.Info("session graded", "mode", s.sess.Mode, "score", report.Score, "total", report.Total)

	view := newReportView(report)
	s.events.Publish(Event{Type: "graded", Payload: view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, 1)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, -1)
}

// advance moves the cursor of the active sequence/sprint session and starts
// the batch at the new position. The unsubmitted or graded previous batch is
// discarded; the persisted seen/wrong sets are not touched here.
func (s *Server) advance(w http.ResponseWriter, r *http.Request, dir int) {
	ctx := r.Context()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	mode := s.sess.Mode
	if _, err := s.selector.Advance(ctx, mode, dir); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	allIDs := s.bank.IDs()
	switch mode {
	case training.ModeSequence:
		s.sess = s.selector.StartSequence(ctx, allIDs)
	case training.ModeSprint:
		s.sess = s.selector.StartSprint(ctx, allIDs)
	}

	view := s.newSessionView(s.sess)
	s.events.Publish(Event{Type: "session_started", Payload: view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRestart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()

	s.events.Publish(Event{Type: "session_discarded"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetSeen(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r, training.DocSeen)
}

func (s *Server) handleResetWrong(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r, training.DocWrong)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request, doc training.Doc) {
	if err := s.store.Reset(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("state reset", "doc", doc)
	s.events.Publish(Event{Type: "reset", Payload: map[string]string{"doc": string(doc)}})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		writeError(w, http.StatusBadRequest, "only .xlsx files are accepted")
		return
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}
	dst := filepath.Join(s.dataDir, "imported.xlsx")
	out, err := os.Create(dst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}
	if err := out.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}

	s.bank.SetSource(dst)
	if err := s.bank.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading workbook: %v", err))
		return
	}

	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()

	slog.Info("workbook imported", "file", header.Filename, "questions", s.bank.Len())
	s.events.Publish(Event{Type: "bank_loaded", Payload: map[string]int{"questions": s.bank.Len()}})
	writeJSON(w, http.StatusOK, map[string]int{"questions": s.bank.Len()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s.mu.Lock()
	defer s.mu.Unlock()

	type cursorStats struct {
		Cursor int `json:"cursor"`
		Total  int `json:"total"`
	}
	seq := s.selector.CursorStats(ctx, training.ModeSequence)
	spr := s.selector.CursorStats(ctx, training.ModeSprint)

	writeJSON(w, http.StatusOK, map[string]any{
		"questions": s.bank.Len(),
		"seen":      len(s.store.LoadIDSet(ctx, training.DocSeen)),
		"wrong":     len(s.store.LoadIDSet(ctx, training.DocWrong)),
		"sequence":  cursorStats{Cursor: seq.Cursor, Total: len(seq.Order)},
		"sprint":    cursorStats{Cursor: spr.Cursor, Total: len(spr.Order)},
	})
}
