package http

import (
	"net/http"

	"dompetku/internal/appstate"
)

type credentialsRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type sessionResponse struct {
	State appstate.State `json:"state"`
	Token string         `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	state, token, err := s.state.Register(r.Context(), req.Name, req.PIN)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{State: state, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	state, token, err := s.state.Login(r.Context(), req.Name, req.PIN)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{State: state, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := s.state.Logout(r.Context(), currentUser(r.Context()))
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	state, err := s.state.Current(r.Context(), currentUser(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
