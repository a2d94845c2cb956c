package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
)

type startRequest struct {
	Prompt string `json:"prompt" validate:"max=10000"`
}

type startResponse struct {
	SessionID int64     `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	Prompt    string    `json:"prompt"`
}

type inputRequest struct {
	UserInput *string `json:"user_input" validate:"required"`
}

type inputResponse struct {
	SessionID int64  `json:"session_id"`
	UserInput string `json:"user_input"`
}

type completeRequest struct {
	Keystrokes []session.KeystrokeInput `json:"keystrokes"`
	UserInput  *string                  `json:"user_input"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	sess, err := s.sessions.Start(r.Context(), userID(r), req.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, startResponse{SessionID: sess.ID, StartedAt: sess.StartedAt, Prompt: sess.TargetText})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.Restart(r.Context(), userID(r), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, startResponse{SessionID: sess.ID, StartedAt: sess.StartedAt, Prompt: sess.TargetText})
}

func (s *Server) handleKeystrokes(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var batch []session.KeystrokeInput
	if err := decodeJSON(w, r, &batch); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.sessions.UploadKeystrokes(r.Context(), userID(r), sid, batch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.sessions.UpdateInput(r.Context(), userID(r), sid, *req.UserInput)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, inputResponse{SessionID: sess.ID, UserInput: *req.UserInput})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	endedAt, err := s.sessions.End(r.Context(), userID(r), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]time.Time{"ended_at": endedAt})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.sessions.Complete(r.Context(), userID(r), sid, req.Keystrokes, req.UserInput)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	summary, err := s.sessions.Summary(r.Context(), userID(r), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	analysis, err := s.sessions.Analysis(r.Context(), userID(r), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, analysis)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.sessions.History(r.Context(), userID(r), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func sessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "sid")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("session %q: %w", raw, model.ErrNotFound))
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", model.ErrValidation, name)
	}
	return v, nil
}
