package http

import (
	"fmt"
	"net/http"
	"strings"

	"dompetku/internal/core"
)

// goalRequest deliberately has no currentAmount field: saved funds change
// only through the add-funds endpoint, never through create or edit.
type goalRequest struct {
	Name         string      `json:"name"`
	TargetAmount amountField `json:"targetAmount"`
	Deadline     string      `json:"deadline"`
	Icon         string      `json:"icon"`
	Color        string      `json:"color"`
}

func (req goalRequest) toGoal(id string, current core.Money) (core.Goal, error) {
	var deadline core.Date
	if strings.TrimSpace(req.Deadline) != "" {
		parsed, err := core.ParseDate(req.Deadline)
		if err != nil {
			return core.Goal{}, err
		}
		deadline = parsed
	}
	g := core.Goal{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  req.TargetAmount.Money,
		CurrentAmount: current,
		Deadline:      deadline,
		Icon:          req.Icon,
		Color:         req.Color,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	goals, err := s.repo.Goals.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	goal, err := req.toGoal(core.NewID(), 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user := currentUser(r.Context())
	err = s.repo.Goals.Mutate(r.Context(), user.ID, func(goals []core.Goal) ([]core.Goal, error) {
		return append(goals, goal), nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Goal
	err := s.repo.Goals.Mutate(r.Context(), user.ID, func(goals []core.Goal) ([]core.Goal, error) {
		for i, g := range goals {
			if g.ID != id {
				continue
			}
			next, err := req.toGoal(id, g.CurrentAmount)
			if err != nil {
				return nil, err
			}
			goals[i] = next
			updated = next
			return goals, nil
		}
		return nil, fmt.Errorf("goal %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := currentUser(r.Context())
	err := s.repo.Goals.Mutate(r.Context(), user.ID, func(goals []core.Goal) ([]core.Goal, error) {
		for i, g := range goals {
			if g.ID == id {
				return append(goals[:i], goals[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("goal %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addFundsRequest struct {
	Amount amountField `json:"amount"`
}

// handleAddGoalFunds grows a goal's saved amount. Funds are add-only; there
// is no withdraw operation, matching the one-way savings flow.
func (s *Server) handleAddGoalFunds(w http.ResponseWriter, r *http.Request) {
	var req addFundsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Amount.Money <= 0 {
		writeDomainError(w, core.ErrInvalidAmount)
		return
	}

	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Goal
	err := s.repo.Goals.Mutate(r.Context(), user.ID, func(goals []core.Goal) ([]core.Goal, error) {
		for i, g := range goals {
			if g.ID == id {
				goals[i].CurrentAmount += req.Amount.Money
				updated = goals[i]
				return goals, nil
			}
		}
		return nil, fmt.Errorf("goal %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
