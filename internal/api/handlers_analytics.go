package api

import "net/http"

func (s *Server) handleCharacterProblems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.sessions.CharacterProblems(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := s.sessions.Progress(r.Context(), userID(r), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	window, err := queryInt(r, "window")
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := s.sessions.Profile(r.Context(), userID(r), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}
