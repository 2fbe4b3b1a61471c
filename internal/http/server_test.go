package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendy/internal/core"
	"spendy/internal/goals"
	"spendy/internal/notify"
	"spendy/internal/prefs"
	"spendy/internal/service"
	"spendy/internal/storage"
)

type fakeSource struct {
	transactions []core.Transaction
}

func (f *fakeSource) Load(ctx context.Context) ([]core.Transaction, error) {
	return f.transactions, nil
}

type memPrefsStore struct {
	p *prefs.Preferences
}

func (m *memPrefsStore) LoadPreferences(ctx context.Context) (*prefs.Preferences, error) {
	if m.p == nil {
		return prefs.Defaults(), nil
	}
	cp := *m.p
	return &cp, nil
}

func (m *memPrefsStore) SavePreferences(ctx context.Context, p *prefs.Preferences) error {
	cp := *p
	m.p = &cp
	return nil
}

type memGoalStore struct {
	goals map[string]core.SavingsGoal
	order []string
}

func newMemGoalStore() *memGoalStore {
	return &memGoalStore{goals: make(map[string]core.SavingsGoal)}
}

func (m *memGoalStore) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	m.goals[g.ID] = g
	m.order = append(m.order, g.ID)
	return nil
}

func (m *memGoalStore) GetGoal(ctx context.Context, id string) (*core.SavingsGoal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, storage.ErrGoalNotFound
	}
	return &g, nil
}

func (m *memGoalStore) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	out := make([]core.SavingsGoal, 0, len(m.order))
	for _, id := range m.order {
		if g, ok := m.goals[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGoalStore) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	if _, ok := m.goals[g.ID]; !ok {
		return storage.ErrGoalNotFound
	}
	m.goals[g.ID] = g
	return nil
}

func (m *memGoalStore) DeleteGoal(ctx context.Context, id string) error {
	if _, ok := m.goals[id]; !ok {
		return storage.ErrGoalNotFound
	}
	delete(m.goals, id)
	return nil
}

func sampleHistory() []core.Transaction {
	return []core.Transaction{
		{Date: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC), Description: "Salary", Amount: 2000, Type: core.Credit},
		{Date: time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC), Description: "Zara clothes", Amount: 120, Type: core.Debit},
		{Date: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC), Description: "Salary", Amount: 2000, Type: core.Credit},
		{Date: time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC), Description: "Zara clothes", Amount: 250, Type: core.Debit},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	n := 0
	goalSvc := goals.NewService(newMemGoalStore(),
		goals.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("goal-%d", n)
		}))
	insight := service.NewInsightService(
		&fakeSource{transactions: sampleHistory()},
		&memPrefsStore{},
		goalSvc,
		nil,
	)
	srv := NewServer(":0", insight, goalSvc, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestListAlerts(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Alerts []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Category string `json:"category"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Alerts) == 0 {
		t.Fatal("expected alerts for over-budget Shopping month")
	}

	found := false
	for _, a := range resp.Alerts {
		if a.Type == "budget_exceeded" && a.Category == "Shopping" {
			found = true
		}
	}
	if !found {
		t.Errorf("no budget_exceeded Shopping alert in %+v", resp.Alerts)
	}
}

func TestDismissAlertFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	var resp struct {
		Alerts []struct {
			ID string `json:"id"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	before := len(resp.Alerts)
	if before == 0 {
		t.Fatal("expected at least one alert")
	}
	target := resp.Alerts[0].ID

	rec = doJSON(t, srv, http.MethodPost, "/api/alerts/dismiss", map[string]string{"alertId": target})
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Alerts) != before-1 {
		t.Errorf("after dismiss: %d alerts, want %d", len(resp.Alerts), before-1)
	}
	for _, a := range resp.Alerts {
		if a.ID == target {
			t.Errorf("dismissed alert %s still listed", target)
		}
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/alerts/dismissals", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear dismissals status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Alerts) != before {
		t.Errorf("after clear: %d alerts, want %d", len(resp.Alerts), before)
	}
}

func TestDismissAlertValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/alerts/dismiss", map[string]string{"alertId": " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGoalLifecycleAPI(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"name":          "Emergency fund",
		"targetAmount":  3000,
		"monthlyAmount": 250,
		"targetDate":    "2026-06-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created core.SavingsGoal
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created goal has no ID")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/goals/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/goals/"+created.ID+"/amount", map[string]any{
		"amount":    150,
		"operation": "add",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add amount status = %d, body = %s", rec.Code, rec.Body)
	}
	var funded core.SavingsGoal
	if err := json.Unmarshal(rec.Body.Bytes(), &funded); err != nil {
		t.Fatalf("unmarshal funded: %v", err)
	}
	if funded.CurrentAmount != 150 {
		t.Errorf("CurrentAmount = %v, want 150", funded.CurrentAmount)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/goals/"+created.ID+"/amount", map[string]any{
		"amount":    500,
		"operation": "remove",
	})
	if err := json.Unmarshal(rec.Body.Bytes(), &funded); err != nil {
		t.Fatalf("unmarshal after remove: %v", err)
	}
	if funded.CurrentAmount != 0 {
		t.Errorf("CurrentAmount = %v, want floored 0", funded.CurrentAmount)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/goals/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "monthsToGoal") {
		t.Errorf("progress body missing fields: %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/goals/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateGoalValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []map[string]any{
		{"targetAmount": 100, "monthlyAmount": 10}, // no name
		{"name": "x", "monthlyAmount": 10},         // no target
		{"name": "x", "targetAmount": 100},         // no monthly
		{"name": "x", "targetAmount": 100, "monthlyAmount": 10, "targetDate": "June 2026"},
	}
	for i, body := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/goals", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400 (body %s)", i, rec.Code, rec.Body)
		}
	}
}

func TestSavingsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/savings/capacity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("capacity status = %d", rec.Code)
	}
	var capacity struct {
		AvgIncome   float64 `json:"avgIncome"`
		AvgExpenses float64 `json:"avgExpenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &capacity); err != nil {
		t.Fatalf("unmarshal capacity: %v", err)
	}
	if capacity.AvgIncome != 2000 || capacity.AvgExpenses != 185 {
		t.Errorf("capacity = %+v, want income 2000 expenses 185", capacity)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/savings/suggestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions status = %d", rec.Code)
	}
	var suggestions suggestionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &suggestions); err != nil {
		t.Fatalf("unmarshal suggestions: %v", err)
	}
	if suggestions.Amounts.Conservative != 200 {
		t.Errorf("Conservative = %v, want 200", suggestions.Amounts.Conservative)
	}
}

func TestCapacityZeroIncomeStillSerializes(t *testing.T) {
	history := []core.Transaction{
		{Date: time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC), Description: "Zara clothes", Amount: 250, Type: core.Debit},
	}
	goalSvc := goals.NewService(newMemGoalStore())
	insight := service.NewInsightService(&fakeSource{transactions: history}, &memPrefsStore{}, goalSvc, nil)
	srv := NewServer(":0", insight, goalSvc, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	rec := doJSON(t, srv, http.MethodGet, "/api/savings/capacity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var capacity struct {
		AvgIncome   float64 `json:"avgIncome"`
		SavingsRate float64 `json:"savingsRate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &capacity); err != nil {
		t.Fatalf("body is not valid JSON: %v (body %q)", err, rec.Body)
	}
	if capacity.AvgIncome != 0 || capacity.SavingsRate != 0 {
		t.Errorf("capacity = %+v, want zero income and zero rate", capacity)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]string{
		"message": "what's my spending summary?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(resp.Reply, "Total Expenses") {
		t.Errorf("reply = %q", resp.Reply)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", rec.Code)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/preferences", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var p prefs.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.AlertSettings.BudgetWarningThreshold != 80 {
		t.Errorf("default warning threshold = %v, want 80", p.AlertSettings.BudgetWarningThreshold)
	}

	p.AlertSettings.BudgetWarningThreshold = 70
	p.BudgetThresholds["Shopping"] = 500
	rec = doJSON(t, srv, http.MethodPut, "/api/preferences", p)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/preferences", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.AlertSettings.BudgetWarningThreshold != 70 || p.BudgetThresholds["Shopping"] != 500 {
		t.Errorf("preferences not persisted: %+v", p)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/preferences/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/preferences", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.BudgetThresholds["Shopping"] != 200 {
		t.Errorf("reset Shopping threshold = %v, want 200", p.BudgetThresholds["Shopping"])
	}
}

func TestPartialPreferencesKeepDefaults(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/preferences", map[string]any{
		"budgetThresholds": map[string]float64{"Shopping": 100},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/preferences", nil)
	var p prefs.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.BudgetThresholds["Shopping"] != 100 {
		t.Errorf("Shopping threshold = %v, want 100", p.BudgetThresholds["Shopping"])
	}
	if !p.AlertSettings.BudgetExceededEnabled || !p.AlertSettings.CategorySpikesEnabled {
		t.Errorf("omitted alert toggles should keep their defaults: %+v", p.AlertSettings)
	}
	if p.AlertSettings.BudgetWarningThreshold != 80 {
		t.Errorf("warning threshold = %v, want default 80", p.AlertSettings.BudgetWarningThreshold)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	var resp struct {
		Alerts []struct {
			Type string `json:"type"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal alerts: %v", err)
	}
	if len(resp.Alerts) == 0 {
		t.Error("alerts should still fire after a partial preferences update")
	}
}

func TestWhatsAppNotConfigured(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/notifications/whatsapp", map[string]string{
		"message": "hello",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestWhatsAppProxying(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(notify.Response{Success: true, MessageSID: "SM9"})
	}))
	defer gateway.Close()

	goalSvc := goals.NewService(newMemGoalStore())
	insight := service.NewInsightService(&fakeSource{transactions: sampleHistory()}, &memPrefsStore{}, goalSvc, nil)
	srv := NewServer(":0", insight, goalSvc, notify.NewWhatsAppClient(gateway.URL, "+35699000000"))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	rec := doJSON(t, srv, http.MethodPost, "/api/notifications/whatsapp", map[string]string{
		"message": "Budget exceeded",
		"type":    "budget-alert",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "SM9") {
		t.Errorf("body = %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/notifications/whatsapp", map[string]string{
		"type": "budget-alert",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 within a minute should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("different client should not be limited")
	}
}

func TestLRUCache(t *testing.T) {
	c := newLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3") // evicts a

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}

	c.Delete("b")
	if _, ok := c.Get("b"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := newLRUCache[string](10, 10*time.Millisecond)
	c.Set("a", "1")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should not be returned")
	}
	c.Set("b", "2")
	time.Sleep(20 * time.Millisecond)
	if cleaned := c.CleanExpired(); cleaned != 1 {
		t.Errorf("CleanExpired = %d, want 1", cleaned)
	}
}
