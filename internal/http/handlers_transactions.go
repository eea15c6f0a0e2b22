package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"dompetku/internal/core"
	"dompetku/internal/log"
)

// amountField accepts an amount either as a JSON number or as a decimal
// string ("150000", "150000,5"). Parsing happens here, at the write boundary;
// the stored value is always whole rupiah.
type amountField struct {
	core.Money
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	m, err := core.ParseAmount(s)
	if err != nil {
		return err
	}
	a.Money = m
	return nil
}

func (a amountField) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Money)
}

type transactionRequest struct {
	Amount      amountField          `json:"amount"`
	Type        core.TransactionType `json:"type"`
	CategoryID  string               `json:"category_id"`
	Date        string               `json:"transaction_date"`
	Description string               `json:"description"`
	Tags        []string             `json:"tags"`
	ReceiptURL  string               `json:"receipt_url"`
	Location    string               `json:"location"`
	Mood        string               `json:"mood"`
	IsRecurring bool                 `json:"is_recurring"`
}

func (req transactionRequest) toTransaction(id string, createdAt time.Time) (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:          id,
		Amount:      req.Amount.Money,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Tags:        req.Tags,
		ReceiptURL:  req.ReceiptURL,
		Location:    req.Location,
		Mood:        req.Mood,
		IsRecurring: req.IsRecurring,
		CreatedAt:   createdAt,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	txs, err := s.repo.Transactions.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sortTransactions(txs)
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction(core.NewID(), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	user := currentUser(r.Context())
	err = s.repo.Transactions.Mutate(r.Context(), user.ID, func(txs []core.Transaction) ([]core.Transaction, error) {
		return append(txs, tx), nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "transaction created",
		log.FieldUserID, user.ID, log.FieldAmount, int64(tx.Amount), "type", string(tx.Type))
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	id := r.PathValue("id")
	user := currentUser(r.Context())
	var updated core.Transaction
	err := s.repo.Transactions.Mutate(r.Context(), user.ID, func(txs []core.Transaction) ([]core.Transaction, error) {
		for i, tx := range txs {
			if tx.ID != id {
				continue
			}
			next, err := req.toTransaction(id, tx.CreatedAt)
			if err != nil {
				return nil, err
			}
			txs[i] = next
			updated = next
			return txs, nil
		}
		return nil, fmt.Errorf("transaction %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user := currentUser(r.Context())
	err := s.repo.Transactions.Mutate(r.Context(), user.ID, func(txs []core.Transaction) ([]core.Transaction, error) {
		for i, tx := range txs {
			if tx.ID == id {
				return append(txs[:i], txs[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("transaction %s: %w", id, errNotFound)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.invalidateDashboard(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// sortTransactions orders newest first for list views, falling back to
// creation time for same-day entries.
func sortTransactions(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
