package http

import (
	"net/http"

	"dompetku/internal/log"
)

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	theme, err := s.repo.Theme(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeRequest{Theme: theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	state, err := s.state.SetTheme(r.Context(), currentUser(r.Context()), req.Theme)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleClearData wipes every collection for the user and reseeds the
// default categories. The account itself survives.
func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := s.repo.ClearData(r.Context(), user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "user data cleared", log.FieldUserID, user.ID)
	w.WriteHeader(http.StatusNoContent)
}
