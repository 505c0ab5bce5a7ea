package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"account-auth-service/internal/core/password"
	"account-auth-service/internal/core/server"
	"account-auth-service/internal/repo"
	"account-auth-service/internal/service"
	"account-auth-service/internal/transport/http/handler"
	mdw "account-auth-service/internal/transport/http/middleware"
)

func newEngines(t *testing.T, lim Limits) (api, admin *gin.Engine) {
	t.Helper()
	hasher, err := password.NewBcrypt(password.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	store := repo.NewMemoryAccountStore()
	l := zap.NewNop()

	api = NewAPIEngine(l, APIDeps{
		Accounts: handler.NewAccountHandler(
			service.NewRegistrar(store, hasher, l),
			service.NewVerifier(store, hasher, l),
		),
		Server: server.Options{Mode: gin.TestMode},
		Limits: lim,
	})
	admin = NewAdminEngine(l, AdminDeps{
		Admin:  handler.NewAdminHandler(service.NewAccountAdmin(store, l)),
		Server: server.Options{Mode: gin.TestMode},
		Limits: lim,
	})
	return api, admin
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelopeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var env struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Code
}

func TestHealth(t *testing.T) {
	api, admin := newEngines(t, DefaultLimits())
	for _, r := range []*gin.Engine{api, admin} {
		w := serve(r, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":1}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get(mdw.KeyRequestID))
	}
}

func TestSignupThenLoginThroughEngines(t *testing.T) {
	api, admin := newEngines(t, DefaultLimits())
	signup := `{"identifier":"alice","email":"alice@example.com","first_name":"Alice","last_name":"L","password":"pw","role":"user"}`

	assert.Equal(t, 0, envelopeCode(t, serve(api, http.MethodPost, "/api/v1/auth", signup)))
	assert.Equal(t, 0, envelopeCode(t, serve(api, http.MethodPost, "/api/v1/auth/token", `{"username":"alice","password":"pw"}`)))

	assert.Equal(t, 0, envelopeCode(t, serve(admin, http.MethodPost, "/admin/v1/accounts/alice/deactivate", "")))
	assert.Equal(t, 401, envelopeCode(t, serve(api, http.MethodPost, "/api/v1/auth/token", `{"username":"alice","password":"pw"}`)))
}

func TestAdminOnlyRoutesAreNotOnPublicEngine(t *testing.T) {
	api, _ := newEngines(t, DefaultLimits())
	assert.Equal(t, http.StatusNotFound, serve(api, http.MethodGet, "/admin/v1/accounts", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(api, http.MethodGet, "/metrics", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api, admin := newEngines(t, DefaultLimits())
	serve(api, http.MethodPost, "/api/v1/auth/token", `{"username":"ghost","password":"pw"}`)

	w := serve(admin, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `auth_attempts_total{result="rejected"}`)
}

func TestRateLimit(t *testing.T) {
	lim := DefaultLimits()
	lim.RPS, lim.Burst = 0.001, 1
	api, _ := newEngines(t, lim)

	assert.Equal(t, http.StatusOK, serve(api, http.MethodGet, "/health", "").Code)
	w := serve(api, http.MethodGet, "/health", "")
	assert.Equal(t, 429, envelopeCode(t, w))
}

func TestBodyLimit(t *testing.T) {
	lim := DefaultLimits()
	lim.MaxBody = 32
	api, _ := newEngines(t, lim)

	big := `{"identifier":"` + strings.Repeat("a", 128) + `"}`
	w := serve(api, http.MethodPost, "/api/v1/auth", big)
	assert.Equal(t, 400, envelopeCode(t, w))
	assert.Contains(t, w.Body.String(), "request body too large")

	small := `{"identifier":`
	w = serve(api, http.MethodPost, "/api/v1/auth", small)
	assert.Equal(t, 400, envelopeCode(t, w))
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestDefaultLimits(t *testing.T) {
	lim := DefaultLimits()
	assert.Equal(t, 10*time.Second, lim.Timeout)
	assert.Positive(t, lim.Concurrency)
}
