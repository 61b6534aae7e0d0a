package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/basket-engine/api/middleware"
	"github.com/angelmondragon/basket-engine/internal/basket"
	"github.com/angelmondragon/basket-engine/internal/catalog"
	"github.com/angelmondragon/basket-engine/internal/pricing"
	"github.com/angelmondragon/basket-engine/internal/session"
	authsession "github.com/angelmondragon/basket-engine/pkg/auth/session"
	"github.com/angelmondragon/basket-engine/pkg/config"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/types"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "basket-engine", ExpirationMinutes: 60}

type stubCredential struct{}

func (stubCredential) Matches(username, password string) (bool, error) {
	return username == "user1" && password == "user1", nil
}

type memorySessions struct {
	tokens map[string]string
}

func (m *memorySessions) Generate(_ context.Context, sessionID string) (string, error) {
	m.tokens[sessionID] = "refresh-" + sessionID
	return m.tokens[sessionID], nil
}

func (m *memorySessions) Rotate(_ context.Context, sessionID, provided string) (string, error) {
	if m.tokens[sessionID] == "" || m.tokens[sessionID] != provided {
		return "", authsession.ErrInvalidRefreshToken
	}
	m.tokens[sessionID] = provided + "-next"
	return m.tokens[sessionID], nil
}

func (m *memorySessions) Revoke(_ context.Context, sessionID string) error {
	delete(m.tokens, sessionID)
	return nil
}

func (m *memorySessions) HasSession(_ context.Context, sessionID string) (bool, error) {
	_, ok := m.tokens[sessionID]
	return ok, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func newTestService(t *testing.T) (session.Service, *memorySessions) {
	t.Helper()
	sessions := &memorySessions{tokens: map[string]string{}}
	svc, err := session.NewService(session.ServiceParams{
		Credential:     stubCredential{},
		SessionManager: sessions,
		Baskets:        basket.NewMemoryFactory().For,
		Catalog:        catalog.Default(),
		Pricer:         pricing.NewEngine(),
		JWTConfig:      testJWT,
		Now:            func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, sessions
}

func login(t *testing.T, svc session.Service) *session.LoginResponse {
	t.Helper()
	resp, err := svc.Login(context.Background(), session.LoginRequest{Username: "user1", Password: "user1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v (%s)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

func sessionRequest(method, target, sessionID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithSession(req.Context(), sessionID, "user1"))
}

func TestAuthLogin(t *testing.T) {
	svc, sessions := newTestService(t)
	logg := testLogger()

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"user1","password":"user1"}`))
		rec := httptest.NewRecorder()
		AuthLogin(svc, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp session.LoginResponse
		decodeData(t, rec, &resp)
		if resp.SessionID == "" || resp.AccessToken == "" {
			t.Fatalf("expected session and token, got %+v", resp)
		}
		if rec.Header().Get("X-Basket-Token") != resp.AccessToken {
			t.Fatalf("expected token header to match body")
		}
		if _, ok := sessions.tokens[resp.SessionID]; !ok {
			t.Fatalf("expected refresh session to be stored")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"user1","password":"wrong"}`))
		rec := httptest.NewRecorder()
		AuthLogin(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"user1"}`))
		rec := httptest.NewRecorder()
		AuthLogin(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		AuthLogin(nil, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestAuthRefreshKeepsSession(t *testing.T) {
	svc, _ := newTestService(t)
	first := login(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"`+first.RefreshToken+`"}`))
	req.Header.Set("Authorization", "Bearer "+first.AccessToken)
	rec := httptest.NewRecorder()
	AuthRefresh(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp session.LoginResponse
	decodeData(t, rec, &resp)
	if resp.SessionID != first.SessionID {
		t.Fatalf("expected session %s, got %s", first.SessionID, resp.SessionID)
	}
	if resp.RefreshToken == first.RefreshToken {
		t.Fatalf("expected refresh token rotation")
	}

	stale := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"`+first.RefreshToken+`"}`))
	stale.Header.Set("Authorization", "Bearer "+first.AccessToken)
	rec = httptest.NewRecorder()
	AuthRefresh(svc, testLogger()).ServeHTTP(rec, stale)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected reused refresh token to fail with 401, got %d", rec.Code)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	svc, _ := newTestService(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"x"}`))
	rec := httptest.NewRecorder()
	AuthRefresh(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasketFlow(t *testing.T) {
	svc, _ := newTestService(t)
	logg := testLogger()
	sessionID := login(t, svc).SessionID

	add := func(code string) types.BasketMutationView {
		t.Helper()
		req := sessionRequest(http.MethodPost, "/api/v1/basket/items", sessionID, strings.NewReader(`{"product_code":"`+code+`"}`))
		rec := httptest.NewRecorder()
		BasketAddItem(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("add %s: expected 200, got %d: %s", code, rec.Code, rec.Body.String())
		}
		var view types.BasketMutationView
		decodeData(t, rec, &view)
		return view
	}

	first := add("P001")
	if first.Message != "Fresh Apples added to basket!" {
		t.Fatalf("unexpected message %q", first.Message)
	}
	if first.Basket.Items[0].Price != "5.79" || first.Basket.Items[0].Unit != "g" {
		t.Fatalf("expected adjusted snapshot, got %+v", first.Basket.Items[0])
	}

	second := add("P003")
	if second.Basket.Total != "7.78" || second.Basket.LineCount != 2 || second.Basket.UnitCount != 2 {
		t.Fatalf("expected total 7.78 over 2 items, got %+v", second.Basket)
	}

	third := add("P003")
	if third.Basket.Total != "9.77" || third.Basket.LineCount != 2 || third.Basket.UnitCount != 3 {
		t.Fatalf("expected 2 lines holding 3 units, got %+v", third.Basket)
	}

	rec := httptest.NewRecorder()
	BasketView(svc, logg).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/v1/basket", sessionID, nil))
	var view types.BasketView
	decodeData(t, rec, &view)
	if view.Total != "9.77" || view.IsEmpty {
		t.Fatalf("unexpected basket view %+v", view)
	}
	if view.Items[0].ProductCode != "P001" || view.Items[1].ProductCode != "P003" {
		t.Fatalf("expected insertion order, got %+v", view.Items)
	}

	rec = httptest.NewRecorder()
	BasketClear(svc, logg).ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/basket", sessionID, nil))
	var cleared types.BasketMutationView
	decodeData(t, rec, &cleared)
	if cleared.Message != "Basket cleared!" || !cleared.Basket.IsEmpty || cleared.Basket.Total != "0.00" {
		t.Fatalf("unexpected clear result %+v", cleared)
	}
	if cleared.Basket.Items == nil || len(cleared.Basket.Items) != 0 {
		t.Fatalf("expected empty items array, got %v", cleared.Basket.Items)
	}
}

func TestBasketAddItemErrors(t *testing.T) {
	svc, _ := newTestService(t)
	logg := testLogger()
	sessionID := login(t, svc).SessionID

	tests := []struct {
		name      string
		sessionID string
		body      string
		status    int
		code      string
	}{
		{"unknown product", sessionID, `{"product_code":"P999"}`, http.StatusNotFound, "NOT_FOUND"},
		{"malformed code", sessionID, `{"product_code":"999"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing code", sessionID, `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown field", sessionID, `{"product_code":"P001","qty":3}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"no session", "", `{"product_code":"P001"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired session", "gone", `{"product_code":"P001"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sessionRequest(http.MethodPost, "/api/v1/basket/items", tt.sessionID, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			BasketAddItem(svc, logg).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, got)
			}
		})
	}
}

func TestAuthLogoutClearsBasket(t *testing.T) {
	svc, sessions := newTestService(t)
	logg := testLogger()
	sessionID := login(t, svc).SessionID

	store, err := svc.Basket(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("open basket: %v", err)
	}
	if _, err := store.Add(context.Background(), "P002"); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec := httptest.NewRecorder()
	AuthLogout(svc, logg).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/auth/logout", sessionID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var msg types.MessageView
	decodeData(t, rec, &msg)
	if msg.Message != "Basket cleared!" {
		t.Fatalf("unexpected message %q", msg.Message)
	}
	if _, ok := sessions.tokens[sessionID]; ok {
		t.Fatalf("expected refresh session revoked")
	}
}

func TestProductList(t *testing.T) {
	c := catalog.Default()
	logg := testLogger()

	tests := []struct {
		query string
		codes []string
	}{
		{"", []string{"P001", "P002", "P003", "P004", "P005", "P006"}},
		{"an", []string{"P002"}},
		{"FRESH", []string{"P001", "P004"}},
		{"nonexistent", []string{}},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q="+tt.query, nil)
		rec := httptest.NewRecorder()
		ProductList(c, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("query %q: expected 200, got %d", tt.query, rec.Code)
		}
		var views []types.ProductView
		decodeData(t, rec, &views)
		if len(views) != len(tt.codes) {
			t.Fatalf("query %q: expected %v, got %+v", tt.query, tt.codes, views)
		}
		for i, code := range tt.codes {
			if views[i].ProductCode != code {
				t.Fatalf("query %q: expected %v, got %+v", tt.query, tt.codes, views)
			}
		}
	}

	long := httptest.NewRequest(http.MethodGet, "/api/v1/products?q="+strings.Repeat("a", maxSearchLen+1), nil)
	rec := httptest.NewRecorder()
	ProductList(c, logg).ServeHTTP(rec, long)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected long query to fail with 400, got %d", rec.Code)
	}
}

func TestProductDetail(t *testing.T) {
	c := catalog.Default()
	logg := testLogger()

	get := func(code string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+code, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("code", code)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		ProductDetail(c, logg).ServeHTTP(rec, req)
		return rec
	}

	rec := get("P004")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view types.ProductView
	decodeData(t, rec, &view)
	if view.Description != "Fresh Milk" || view.Price != "2.89" || view.Unit != "liter" || view.Qty != 12 {
		t.Fatalf("unexpected product %+v", view)
	}

	if rec := get("P999"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"redis": stubPinger{}, "db": nil}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}
	if rec.Header().Get("X-Basket-Env") != "dev" {
		t.Fatalf("expected env header")
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"redis": stubPinger{err: errors.New("down")}}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected live, got %d", rec.Code)
	}
}
