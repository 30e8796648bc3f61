package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/farm-shop/internal/api/http"
	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/container"
)

type smsInbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (s *smsInbox) Send(_ context.Context, phone, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = map[string]string{}
	}
	s.last[phone] = body
	return nil
}

func (s *smsInbox) message(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[phone]
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	sms *smsInbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{Name: "farm-shop", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4, OTPTTLMinutes: 10, PasswordResetTTLMinutes: 30},
		Chat: config.ChatConfig{BackendTimeoutSeconds: 2, NavigationDelayMillis: 1000, SessionTTLMinutes: 60, MaxLoginAttempts: 3},
	}
	sms := &smsInbox{}
	c, err := container.New(context.Background(), cfg, zap.NewNop(), container.WithSMSSender(sms))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), c.Metrics, time.Second)
	httptransport.RegisterRoutes(app, c.Routes())
	return &testServer{t: t, app: app, sms: sms}
}

func (s *testServer) do(method, path string, body any, token string) (int, map[string]any) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", body)
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

var alice = map[string]string{
	"username":         "alice",
	"email":            "alice@example.com",
	"phone":            "9876543210",
	"address":          "12 Dairy Lane",
	"password":         "abc123",
	"confirm_password": "abc123",
}

func (s *testServer) registerAndLogin() string {
	s.t.Helper()
	status, _ := s.do(http.MethodPost, "/api/register", alice, "")
	require.Equal(s.t, http.StatusCreated, status)

	status, body := s.do(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "abc123"}, "")
	require.Equal(s.t, http.StatusOK, status)
	token, _ := data(s.t, body)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "in-memory", "redis": "in-memory"}, body["dependencies"])

	status, body = s.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, data(t, body), "requests")
}

func TestUnknownRouteRendersError(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin()

	status, body := s.do(http.MethodPost, "/api/register", alice, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, _ = s.do(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "wrong1"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPost, "/api/forgot-password", map[string]string{"phone": "9876543210"}, "")
	require.Equal(t, http.StatusOK, status)

	otp := regexp.MustCompile(`\d{6}`)
	require.Eventually(t, func() bool { return s.sms.message("9876543210") != "" }, time.Second, 10*time.Millisecond)
	code := otp.FindString(s.sms.message("9876543210"))

	status, body = s.do(http.MethodPost, "/api/verify-otp", map[string]string{"phone": "9876543210", "otp": code}, "")
	require.Equal(t, http.StatusOK, status)
	resetToken, _ := data(t, body)["reset_token"].(string)

	status, _ = s.do(http.MethodPost, "/api/reset-password", map[string]string{
		"reset_token": resetToken, "new_password": "fresh1", "confirm_password": "fresh1",
	}, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "fresh1"}, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/api/logout", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCatalogAndOrders(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodGet, "/api/products?category=dairy", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 5)

	status, body = s.do(http.MethodGet, "/api/products/8", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Farm Fresh Eggs", data(t, body)["name"])

	status, _ = s.do(http.MethodGet, "/api/products/99", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	order := map[string]any{
		"items":            []map[string]int{{"id": 1, "quantity": 2}, {"id": 8, "quantity": 1}},
		"payment_method":   "cash",
		"delivery_address": "12 Dairy Lane",
	}
	status, body = s.do(http.MethodPost, "/api/place-order", order, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	token := s.registerAndLogin()
	status, body = s.do(http.MethodPost, "/api/place-order", order, token)
	require.Equal(t, http.StatusCreated, status)
	placed := data(t, body)["order"].(map[string]any)
	assert.Equal(t, "13.97", placed["total_amount"])
	assert.Equal(t, "pending", placed["status"])

	status, body = s.do(http.MethodGet, "/api/orders", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestChatSession(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin()

	status, body := s.do(http.MethodPost, "/api/chat/sessions", nil, "")
	require.Equal(t, http.StatusCreated, status)
	session := data(t, body)
	id := session["session_id"].(string)
	assert.Equal(t, "idle", session["phase"])
	require.Len(t, session["messages"], 1)

	send := func(text string) map[string]any {
		status, body := s.do(http.MethodPost, "/api/chat/sessions/"+id+"/messages", map[string]string{"text": text}, "")
		require.Equal(t, http.StatusOK, status)
		return data(t, body)
	}

	assert.Equal(t, "login_username", send("login")["phase"])
	assert.Equal(t, "login_password", send("alice")["phase"])

	turn := send("abc123")
	assert.Equal(t, true, turn["authenticated"])
	assert.Equal(t, map[string]any{"path": "/shopping", "delay_ms": float64(1000)}, turn["navigation"])

	details := send("my details")
	msgs := details["messages"].([]any)
	last := msgs[len(msgs)-1].(map[string]any)
	assert.Contains(t, last["text"], "Username: alice")
	assert.Contains(t, last["html"], "<br")

	status, body = s.do(http.MethodGet, "/api/chat/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, status)
	got := data(t, body)
	assert.Equal(t, true, got["authenticated"])
	assert.Equal(t, "alice", got["user"].(map[string]any)["username"])

	status, _ = s.do(http.MethodGet, "/api/chat/sessions/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}
