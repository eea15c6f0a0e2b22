package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dompetku/internal/core"
	"dompetku/internal/log"
	"dompetku/internal/stats"
)

// dashboardPayload is the one-shot response backing the dashboard page.
type dashboardPayload struct {
	Stats              stats.Stats           `json:"stats"`
	CategoryBreakdown  []stats.CategorySlice `json:"categoryBreakdown"`
	WeeklyTrend        []stats.TrendPoint    `json:"weeklyTrend"`
	SixMonthTrend      []stats.MonthPoint    `json:"sixMonthTrend"`
	UpcomingBills      []stats.Bill          `json:"upcomingBills"`
	RecentTransactions []core.Transaction    `json:"recentTransactions"`
}

const recentTransactionCount = 5

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	if payload, ok := s.dashCache.Get(user.ID); ok {
		s.logger.Debug("dashboard cache hit", "user_id", user.ID)
		writeJSON(w, http.StatusOK, payload)
		return
	}

	payload, err := s.buildDashboard(r.Context(), user.ID, time.Now())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "dashboard build failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDomainError(w, err)
		return
	}

	s.dashCache.Set(user.ID, payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) buildDashboard(ctx context.Context, userID string, now time.Time) (dashboardPayload, error) {
	txs, err := s.repo.Transactions.List(ctx, userID)
	if err != nil {
		return dashboardPayload{}, fmt.Errorf("listing transactions: %w", err)
	}
	categories, err := s.repo.Categories(ctx, userID)
	if err != nil {
		return dashboardPayload{}, fmt.Errorf("listing categories: %w", err)
	}
	subs, err := s.repo.Subscriptions.List(ctx, userID)
	if err != nil {
		return dashboardPayload{}, fmt.Errorf("listing subscriptions: %w", err)
	}

	sortTransactions(txs)
	recent := txs
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}

	return dashboardPayload{
		Stats:              stats.MonthlyStats(txs, now),
		CategoryBreakdown:  stats.CategoryBreakdown(txs, core.CategoryIndex(categories), now),
		WeeklyTrend:        stats.WeeklyTrend(txs, now),
		SixMonthTrend:      stats.SixMonthTrend(txs, now),
		UpcomingBills:      stats.UpcomingBills(subs, now, stats.DashboardBillWindow),
		RecentTransactions: recent,
	}, nil
}
