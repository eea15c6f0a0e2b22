package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dompetku/internal/appstate"
	"dompetku/internal/auth"
	"dompetku/internal/log"
	"dompetku/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	repo := storage.NewRepository(store)
	logger := log.New(log.DefaultConfig())
	tokens := auth.NewTokenManager("server-test-secret-key", time.Hour)
	authSvc := auth.NewService(repo, tokens, logger)
	stateSvc := appstate.NewService(authSvc, repo, logger)

	s := NewServer(Options{
		Addr:      "127.0.0.1:0",
		Repo:      repo,
		Auth:      authSvc,
		State:     stateSvc,
		Logger:    logger,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	})
	ts := httptest.NewServer(s.Server.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { s.janitor.Stop(); s.rateLimiter.stop() })
	return s, ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func registerUser(t *testing.T, ts *httptest.Server, name, pin string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{"name": name, "pin": pin})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d", resp.StatusCode)
	}
	sess := decodeBody[sessionResponse](t, resp)
	if sess.Token == "" {
		t.Fatal("register returned empty token")
	}
	return sess.Token
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s returned %d", path, resp.StatusCode)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	_, ts := newTestServer(t)

	token := registerUser(t, ts, "Budi", "1234")

	// me reflects the registered user
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me returned %d", resp.StatusCode)
	}
	state := decodeBody[appstate.State](t, resp)
	if !state.Authenticated || state.User == nil || state.User.Name != "Budi" {
		t.Fatalf("unexpected state: %+v", state)
	}

	// login with right and wrong pin
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{"name": "Budi", "pin": "1234"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{"name": "Budi", "pin": "9999"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong pin returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	// duplicate registration conflicts
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{"name": "budi", "pin": "5678"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	// logout returns the anonymous state
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout returned %d", resp.StatusCode)
	}
	out := decodeBody[appstate.State](t, resp)
	if out.Authenticated {
		t.Fatal("logout state still authenticated")
	}
}

func TestRequiresAuth(t *testing.T) {
	_, ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/transactions"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/export/json"},
		{http.MethodDelete, "/api/settings/data"},
	} {
		resp := doJSON(t, tc.method, ts.URL+tc.path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s without token returned %d", tc.method, tc.path, resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "garbage-token", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d", resp.StatusCode)
	}
}

func TestTransactionCRUD(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	create := map[string]any{
		"amount":           "150000",
		"type":             "expense",
		"category_id":      "2",
		"transaction_date": "2024-03-10",
		"description":      "makan siang",
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, create)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	created := decodeBody[map[string]any](t, resp)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("created transaction has no id")
	}
	if created["amount"].(float64) != 150000 {
		t.Fatalf("unexpected amount %v", created["amount"])
	}

	// numeric amounts work too
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount":           2000000,
		"type":             "income",
		"category_id":      "1",
		"transaction_date": "2024-03-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("numeric amount create returned %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", token, nil)
	list := decodeBody[[]map[string]any](t, resp)
	if len(list) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(list))
	}
	// newest date first
	if list[0]["transaction_date"] != "2024-03-10" {
		t.Fatalf("expected newest first, got %v", list[0]["transaction_date"])
	}

	update := map[string]any{
		"amount":           "175000",
		"type":             "expense",
		"category_id":      "2",
		"transaction_date": "2024-03-10",
		"description":      "makan malam",
	}
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/transactions/"+id, token, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update returned %d", resp.StatusCode)
	}
	updated := decodeBody[map[string]any](t, resp)
	if updated["description"] != "makan malam" {
		t.Fatalf("update not applied: %v", updated)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+id, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+id, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete returned %d", resp.StatusCode)
	}
}

func TestTransactionValidation(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad amount", map[string]any{"amount": "abc", "type": "expense", "category_id": "2", "transaction_date": "2024-03-10"}, http.StatusBadRequest},
		{"negative amount", map[string]any{"amount": "-50", "type": "expense", "category_id": "2", "transaction_date": "2024-03-10"}, http.StatusBadRequest},
		{"bad type", map[string]any{"amount": "100", "type": "transfer", "category_id": "2", "transaction_date": "2024-03-10"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{"amount": "100", "type": "expense", "category_id": "2", "transaction_date": "10/03/2024"}, http.StatusUnprocessableEntity},
		{"long description", map[string]any{"amount": "100", "type": "expense", "category_id": "2", "transaction_date": "2024-03-10", "description": strings.Repeat("x", 201)}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestCategoriesSeeded(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/categories", token, nil)
	cats := decodeBody[[]map[string]any](t, resp)
	if len(cats) != 10 {
		t.Fatalf("expected 10 seeded categories, got %d", len(cats))
	}
	if cats[0]["name"] != "Gaji" {
		t.Fatalf("unexpected first category: %v", cats[0])
	}
}

func TestSubscriptionToggleAndUpcoming(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	due := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/subscriptions", token, map[string]any{
		"name":            "Netflix",
		"amount":          "186000",
		"billingCycle":    "monthly",
		"nextBillingDate": due,
		"icon":            "🎬",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create subscription returned %d", resp.StatusCode)
	}
	sub := decodeBody[map[string]any](t, resp)
	id := sub["id"].(string)
	if sub["isActive"] != true {
		t.Fatal("new subscription should default to active")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/subscriptions/upcoming", token, nil)
	upcoming := decodeBody[map[string]any](t, resp)
	if upcoming["dueCount"].(float64) != 1 {
		t.Fatalf("expected dueCount 1, got %v", upcoming["dueCount"])
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/subscriptions/"+id+"/toggle", token, nil)
	toggled := decodeBody[map[string]any](t, resp)
	if toggled["isActive"] != false {
		t.Fatal("toggle did not deactivate subscription")
	}

	// paused subscriptions drop out of the reminder window
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/subscriptions/upcoming", token, nil)
	upcoming = decodeBody[map[string]any](t, resp)
	if upcoming["dueCount"].(float64) != 0 {
		t.Fatalf("expected dueCount 0 after pause, got %v", upcoming["dueCount"])
	}
}

func TestGoalFundsAddOnly(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/goals", token, map[string]any{
		"name":         "Dana darurat",
		"targetAmount": "10000000",
		"icon":         "🛟",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal returned %d", resp.StatusCode)
	}
	goal := decodeBody[map[string]any](t, resp)
	id := goal["id"].(string)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goals/"+id+"/funds", token, map[string]any{"amount": "500000"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add funds returned %d", resp.StatusCode)
	}
	goal = decodeBody[map[string]any](t, resp)
	if goal["currentAmount"].(float64) != 500000 {
		t.Fatalf("expected currentAmount 500000, got %v", goal["currentAmount"])
	}

	// a second deposit accumulates
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goals/"+id+"/funds", token, map[string]any{"amount": "250000"})
	goal = decodeBody[map[string]any](t, resp)
	if goal["currentAmount"].(float64) != 750000 {
		t.Fatalf("expected currentAmount 750000, got %v", goal["currentAmount"])
	}

	// zero deposits are rejected
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goals/"+id+"/funds", token, map[string]any{"amount": "0"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("zero deposit returned %d", resp.StatusCode)
	}
}

func TestGoalEditCannotTouchFunds(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/goals", token, map[string]any{
		"name":         "Dana darurat",
		"targetAmount": "10000000",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal returned %d", resp.StatusCode)
	}
	goal := decodeBody[map[string]any](t, resp)
	id := goal["id"].(string)
	if goal["currentAmount"].(float64) != 0 {
		t.Fatalf("new goal should start at 0, got %v", goal["currentAmount"])
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goals/"+id+"/funds", token, map[string]any{"amount": "500000"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add funds returned %d", resp.StatusCode)
	}

	// an edit changes name and target but carries the saved amount forward
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/goals/"+id, token, map[string]any{
		"name":         "Dana liburan",
		"targetAmount": "20000000",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update goal returned %d", resp.StatusCode)
	}
	goal = decodeBody[map[string]any](t, resp)
	if goal["currentAmount"].(float64) != 500000 {
		t.Fatalf("edit changed currentAmount to %v, want 500000", goal["currentAmount"])
	}
	if goal["name"].(string) != "Dana liburan" {
		t.Fatalf("edit did not apply name, got %q", goal["name"])
	}

	// a request that tries to set the saved amount directly is rejected
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/goals/"+id, token, map[string]any{
		"name":          "Dana liburan",
		"targetAmount":  "20000000",
		"currentAmount": "100",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update with currentAmount returned %d, want 400", resp.StatusCode)
	}

	// same on create
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/goals", token, map[string]any{
		"name":          "Rumah",
		"targetAmount":  "300000000",
		"currentAmount": "5000000",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("create with currentAmount returned %d, want 400", resp.StatusCode)
	}

	// stored value survived the rejected edit
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/goals", token, nil)
	goals := decodeBody[[]map[string]any](t, resp)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if goals[0]["currentAmount"].(float64) != 500000 {
		t.Fatalf("stored currentAmount is %v, want 500000", goals[0]["currentAmount"])
	}
}

func TestDashboard(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	month := time.Now().Format("2006-01")
	for i, tx := range []map[string]any{
		{"amount": "5000000", "type": "income", "category_id": "1", "transaction_date": month + "-01"},
		{"amount": "1500000", "type": "expense", "category_id": "4", "transaction_date": month + "-02"},
		{"amount": "500000", "type": "expense", "category_id": "5", "transaction_date": month + "-03"},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, tx)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed tx %d returned %d", i, resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard returned %d", resp.StatusCode)
	}
	payload := decodeBody[dashboardPayload](t, resp)

	if payload.Stats.TotalBalance != 3000000 {
		t.Fatalf("expected balance 3000000, got %d", payload.Stats.TotalBalance)
	}
	if len(payload.WeeklyTrend) != 4 {
		t.Fatalf("expected 4 weekly buckets, got %d", len(payload.WeeklyTrend))
	}
	if len(payload.SixMonthTrend) != 6 {
		t.Fatalf("expected 6 month buckets, got %d", len(payload.SixMonthTrend))
	}
	if len(payload.CategoryBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown slices, got %d", len(payload.CategoryBreakdown))
	}
	if len(payload.RecentTransactions) != 3 {
		t.Fatalf("expected 3 recent transactions, got %d", len(payload.RecentTransactions))
	}

	// a write invalidates the cached payload
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "100000", "type": "expense", "category_id": "4", "transaction_date": month + "-04",
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard", token, nil)
	payload = decodeBody[dashboardPayload](t, resp)
	if payload.Stats.TotalBalance != 2900000 {
		t.Fatalf("expected balance 2900000 after write, got %d", payload.Stats.TotalBalance)
	}
}

func TestThemeAndClearData(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/settings/theme", token, nil)
	theme := decodeBody[themeRequest](t, resp)
	if theme.Theme != "system" {
		t.Fatalf("expected default theme system, got %q", theme.Theme)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/settings/theme", token, map[string]string{"theme": "dark"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set theme returned %d", resp.StatusCode)
	}
	state := decodeBody[appstate.State](t, resp)
	if state.Theme != "dark" {
		t.Fatalf("expected theme dark, got %q", state.Theme)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/settings/theme", token, map[string]string{"theme": "neon"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid theme returned %d", resp.StatusCode)
	}

	// seed a transaction, wipe, and confirm the ledger is empty again
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "100000", "type": "expense", "category_id": "4", "transaction_date": "2024-03-10",
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/settings/data", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear data returned %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", token, nil)
	txs := decodeBody[[]map[string]any](t, resp)
	if len(txs) != 0 {
		t.Fatalf("expected empty ledger after wipe, got %d", len(txs))
	}

	// categories reseed after a wipe
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/categories", token, nil)
	cats := decodeBody[[]map[string]any](t, resp)
	if len(cats) != 10 {
		t.Fatalf("expected reseeded categories, got %d", len(cats))
	}
}

func TestUserIsolation(t *testing.T) {
	_, ts := newTestServer(t)
	tokenA := registerUser(t, ts, "Budi", "1234")
	tokenB := registerUser(t, ts, "Siti", "5678")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tokenA, map[string]any{
		"amount": "100000", "type": "expense", "category_id": "4", "transaction_date": "2024-03-10",
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", tokenB, nil)
	txs := decodeBody[[]map[string]any](t, resp)
	if len(txs) != 0 {
		t.Fatalf("user B sees user A's transactions: %d", len(txs))
	}
}

func TestExports(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "150000", "type": "expense", "category_id": "4", "transaction_date": "2024-03-10", "description": "makan",
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/export/json", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json export returned %d", resp.StatusCode)
	}
	exported := decodeBody[backup](t, resp)
	if len(exported.Transactions) != 1 || len(exported.Categories) != 10 {
		t.Fatalf("unexpected backup contents: %d txs, %d cats", len(exported.Transactions), len(exported.Categories))
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/export/csv", token, nil)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv export returned %d", resp.StatusCode)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "date,type,category,amount,description" {
		t.Fatalf("unexpected csv header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Makanan") {
		t.Fatalf("csv row should resolve category name, got %q", lines[1])
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/export/xlsx", token, nil)
	xlsxBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("xlsx export returned %d", resp.StatusCode)
	}
	// xlsx files are zip archives
	if len(xlsxBody) < 4 || string(xlsxBody[:2]) != "PK" {
		t.Fatal("xlsx export is not a zip archive")
	}
	if got := resp.Header.Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected xlsx content type %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff header, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("missing frame options header, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitRequests; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("request over the limit should be rejected")
	}
	// other clients are unaffected
	if !rl.allow("10.0.0.2") {
		t.Fatal("second client should be allowed")
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	_, ts := newTestServer(t)
	token := registerUser(t, ts, "Budi", "1234")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, map[string]any{
		"amount": "100", "type": "expense", "category_id": "2", "transaction_date": "2024-03-10",
		"bogus": true,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field returned %d", resp.StatusCode)
	}
}
