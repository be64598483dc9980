package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/susu3304/warikan/internal/config"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/metrics"
)

func newTestAPI() *API {
	cfg := &config.Config{WebBind: "127.0.0.1:0", CORSAllowedOrigins: []string{"*"}}
	registry := metrics.New()
	return New(cfg, group.NewService(nil, registry), registry)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func registerUsers(t *testing.T, h http.Handler) {
	t.Helper()
	for _, body := range []string{
		`{"id":"u1","name":"User1"}`,
		`{"id":"u2","name":"User2"}`,
		`{"id":"u3","name":"User3"}`,
		`{"id":"u4","name":"User4"}`,
	} {
		w := do(t, h, "POST", "/api/groups/trip/participants", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("register %s: status %d body %s", body, w.Code, w.Body.String())
		}
	}
}

func TestHealth(t *testing.T) {
	w := do(t, newTestAPI().Handler(), "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status OK, got %v", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %v", ct)
	}
}

func TestExpenseAndPaymentFlow(t *testing.T) {
	h := newTestAPI().Handler()
	registerUsers(t, h)

	w := do(t, h, "POST", "/api/groups/trip/expenses",
		`{"kind":"EQUAL","amount":1000,"paid_by":"u1","shares":[{"participant_id":"u1"},{"participant_id":"u2"},{"participant_id":"u3"},{"participant_id":"u4"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d body %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["kind"]; got != "EQUAL" {
		t.Errorf("kind = %v", got)
	}

	w = do(t, h, "POST", "/api/groups/trip/expenses",
		`{"kind":"exact","amount":"1250","paid_by":"u1","shares":[{"participant_id":"u2","value":370},{"participant_id":"u3","value":"880"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create exact expense: status %d body %s", w.Code, w.Body.String())
	}

	w = do(t, h, "GET", "/api/groups/trip/balances/u1/u2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("net balance: status %d", w.Code)
	}
	if got := decode(t, w)["amount"]; got != "620" {
		t.Errorf("balance[u1][u2] = %v, want 620", got)
	}

	w = do(t, h, "GET", "/api/groups/trip/balances/u2", "")
	if got := decode(t, w)["report"]; got != "User2 owes User1: 620.00" {
		t.Errorf("report = %v", got)
	}

	w = do(t, h, "POST", "/api/groups/trip/payments", `{"paid_by":"u2","paid_to":"u1","amount":620}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("payment: status %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if msg, _ := body["message"].(string); !strings.Contains(msg, "All balances between User2 and User1 are clear.") {
		t.Errorf("message = %q", msg)
	}

	w = do(t, h, "GET", "/api/groups/trip/balances", "")
	if got := decode(t, w)["report"]; got != "User3 owes User1: 1130.00\nUser4 owes User1: 250.00" {
		t.Errorf("report = %v", got)
	}

	w = do(t, h, "GET", "/api/groups/trip/expenses", "")
	var expenses []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &expenses); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("len(expenses) = %d, want 2", len(expenses))
	}
}

func TestErrorStatuses(t *testing.T) {
	h := newTestAPI().Handler()
	registerUsers(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown group", method: "GET", path: "/api/groups/nope/balances", want: http.StatusNotFound},
		{name: "unknown participant", method: "GET", path: "/api/groups/trip/participants/u9", want: http.StatusNotFound},
		{name: "duplicate participant", method: "POST", path: "/api/groups/trip/participants", body: `{"id":"u1","name":"Again"}`, want: http.StatusConflict},
		{name: "empty participant id", method: "POST", path: "/api/groups/trip/participants", body: `{"name":"Nobody"}`, want: http.StatusUnprocessableEntity},
		{name: "bad json", method: "POST", path: "/api/groups/trip/expenses", body: `{`, want: http.StatusBadRequest},
		{name: "unknown kind", method: "POST", path: "/api/groups/trip/expenses", body: `{"kind":"SHARES","amount":1,"paid_by":"u1"}`, want: http.StatusBadRequest},
		{name: "percent mismatch", method: "POST", path: "/api/groups/trip/expenses", body: `{"kind":"PERCENT","amount":100,"paid_by":"u1","shares":[{"participant_id":"u2","value":50}]}`, want: http.StatusUnprocessableEntity},
		{name: "unknown payer", method: "POST", path: "/api/groups/trip/expenses", body: `{"kind":"EQUAL","amount":100,"paid_by":"u9","shares":[{"participant_id":"u2"}]}`, want: http.StatusNotFound},
		{name: "negative payment", method: "POST", path: "/api/groups/trip/payments", body: `{"paid_by":"u1","paid_to":"u2","amount":-1}`, want: http.StatusUnprocessableEntity},
		{name: "bad command", method: "POST", path: "/api/groups/trip/commands", body: `{"command":"DANCE"}`, want: http.StatusBadRequest},
		{name: "close unknown group", method: "DELETE", path: "/api/groups/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCommandEndpoint(t *testing.T) {
	h := newTestAPI().Handler()
	for _, cmd := range []string{"USER u1 User1", "USER u2 User2", "EXPENSE u2 30 2 u1 u2 EQUAL"} {
		w := do(t, h, "POST", "/api/groups/chat/commands", `{"command":"`+cmd+`"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", cmd, w.Code, w.Body.String())
		}
	}
	w := do(t, h, "POST", "/api/groups/chat/commands", `{"command":"SHOW"}`)
	if got := decode(t, w)["output"]; got != "User1 owes User2: 15.00" {
		t.Errorf("output = %v", got)
	}

	w = do(t, h, "GET", "/api/groups", "")
	groups, _ := decode(t, w)["groups"].([]interface{})
	if len(groups) != 1 || groups[0] != "chat" {
		t.Errorf("groups = %v", groups)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestAPI().Handler()
	registerUsers(t, h)
	w := do(t, h, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `warikan_participants_registered_total{group="trip"} 4`) {
		t.Errorf("metrics missing participant counter:\n%s", w.Body.String())
	}
}
