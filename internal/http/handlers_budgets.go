package http

import (
	"fmt"
	"net/http"
	"strings"

	"dompetku/internal/core"
)

type budgetRequest struct {
	Name  string      `json:"name"`
	Limit amountField `json:"limit"`
	Spent amountField `json:"spent"`
	Icon  string      `json:"icon"`
	Color string      `json:"color"`
}

func (req budgetRequest) toBudget(id string) (core.Budget, error) {
	b := core.Budget{
		ID:    id,
		Name:  strings.TrimSpace(req.Name),
		Limit: req.Limit.Money,
		Spent: req.Spent.Money,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	budgets, err := s.repo.Budgets.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	budget, err := req.toBudget(core.NewID())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user := currentUser(r.Context())
	err = s.repo.Budgets.Mutate(r.Context(), user.ID, func(budgets []core.Budget) ([]core.Budget, error) {
		return append(budgets, budget), nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusCreated, budget)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Budget
	err := s.repo.Budgets.Mutate(r.Context(), user.ID, func(budgets []core.Budget) ([]core.Budget, error) {
		for i, b := range budgets {
			if b.ID != id {
				continue
			}
			next, err := req.toBudget(id)
			if err != nil {
				return nil, err
			}
			budgets[i] = next
			updated = next
			return budgets, nil
		}
		return nil, fmt.Errorf("budget %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := currentUser(r.Context())
	err := s.repo.Budgets.Mutate(r.Context(), user.ID, func(budgets []core.Budget) ([]core.Budget, error) {
		for i, b := range budgets {
			if b.ID == id {
				return append(budgets[:i], budgets[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("budget %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	w.WriteHeader(http.StatusNoContent)
}
