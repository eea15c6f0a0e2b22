package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"dompetku/internal/core"
	"dompetku/internal/stats"
)

type subscriptionRequest struct {
	Name            string            `json:"name"`
	Amount          amountField       `json:"amount"`
	BillingCycle    core.BillingCycle `json:"billingCycle"`
	NextBillingDate string            `json:"nextBillingDate"`
	Icon            string            `json:"icon"`
	Category        string            `json:"category"`
	IsActive        *bool             `json:"isActive"`
}

func (req subscriptionRequest) toSubscription(id string) (core.Subscription, error) {
	next, err := core.ParseDate(req.NextBillingDate)
	if err != nil {
		return core.Subscription{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	sub := core.Subscription{
		ID:              id,
		Name:            strings.TrimSpace(req.Name),
		Amount:          req.Amount.Money,
		BillingCycle:    req.BillingCycle,
		NextBillingDate: next,
		Icon:            req.Icon,
		Category:        req.Category,
		IsActive:        active,
	}
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	subs, err := s.repo.Subscriptions.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// handleUpcomingSubscriptions serves the subscriptions page's own reminder
// count, which runs a 7-day window independent of the dashboard card.
func (s *Server) handleUpcomingSubscriptions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	subs, err := s.repo.Subscriptions.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, struct {
		DueCount int          `json:"dueCount"`
		Bills    []stats.Bill `json:"bills"`
	}{
		DueCount: stats.DueWithin(subs, now, 7),
		Bills:    stats.UpcomingBills(subs, now, 7),
	})
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sub, err := req.toSubscription(core.NewID())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user := currentUser(r.Context())
	err = s.repo.Subscriptions.Mutate(r.Context(), user.ID, func(subs []core.Subscription) ([]core.Subscription, error) {
		return append(subs, sub), nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Subscription
	err := s.repo.Subscriptions.Mutate(r.Context(), user.ID, func(subs []core.Subscription) ([]core.Subscription, error) {
		for i, sub := range subs {
			if sub.ID != id {
				continue
			}
			next, err := req.toSubscription(id)
			if err != nil {
				return nil, err
			}
			subs[i] = next
			updated = next
			return subs, nil
		}
		return nil, fmt.Errorf("subscription %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := currentUser(r.Context())
	err := s.repo.Subscriptions.Mutate(r.Context(), user.ID, func(subs []core.Subscription) ([]core.Subscription, error) {
		for i, sub := range subs {
			if sub.ID == id {
				return append(subs[:i], subs[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("subscription %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleToggleSubscription flips the active flag. Paused subscriptions keep
// their billing date but drop out of every upcoming-bills view.
func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Subscription
	err := s.repo.Subscriptions.Mutate(r.Context(), user.ID, func(subs []core.Subscription) ([]core.Subscription, error) {
		for i, sub := range subs {
			if sub.ID == id {
				subs[i].IsActive = !sub.IsActive
				updated = subs[i]
				return subs, nil
			}
		}
		return nil, fmt.Errorf("subscription %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusOK, updated)
}
