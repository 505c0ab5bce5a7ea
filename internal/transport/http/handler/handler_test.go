package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"account-auth-service/internal/core/password"
	"account-auth-service/internal/domain"
	"account-auth-service/internal/repo"
	"account-auth-service/internal/service"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testApp struct {
	engine *gin.Engine
	store  *repo.MemoryAccountStore
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hasher, err := password.NewBcrypt(password.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	store := repo.NewMemoryAccountStore()
	r := gin.New()
	NewAccountHandler(
		service.NewRegistrar(store, hasher, zap.NewNop()),
		service.NewVerifier(store, hasher, zap.NewNop()),
	).Mount(r.Group("/api/v1"))
	NewAdminHandler(service.NewAccountAdmin(store, zap.NewNop())).Mount(r.Group("/admin/v1"))
	return testApp{engine: r, store: store}
}

func (a testApp) do(t *testing.T, method, path, contentType, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

const aliceSignup = `{"identifier":"alice","email":"alice@example.com","first_name":"Alice","last_name":"Liddell","password":"s3cret","role":"user"}`

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	env := app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup)
	require.Equal(t, 0, env.Code, env.Msg)

	var view map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "alice", view["identifier"])
	assert.Equal(t, true, view["is_active"])
	assert.NotContains(t, view, "password_hash")
	assert.NotContains(t, string(env.Data), "s3cret")

	stored, err := app.store.FindByIdentifier(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
}

func TestSignup_Errors(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup).Code)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"duplicate", aliceSignup, 409},
		{"missing fields", `{"identifier":"bob"}`, 400},
		{"bad email", `{"identifier":"bob","email":"nope","first_name":"B","last_name":"B","password":"x","role":"user"}`, 400},
		{"malformed json", `{"identifier":`, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := app.do(t, http.MethodPost, "/api/v1/auth", "application/json", tc.body)
			assert.Equal(t, tc.code, env.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup).Code)

	t.Run("json", func(t *testing.T) {
		env := app.do(t, http.MethodPost, "/api/v1/auth/token", "application/json", `{"username":"alice","password":"s3cret"}`)
		require.Equal(t, 0, env.Code, env.Msg)
		assert.JSONEq(t, `{"authenticated":true}`, string(env.Data))
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"s3cret"}}.Encode()
		env := app.do(t, http.MethodPost, "/api/v1/auth/token", "application/x-www-form-urlencoded", form)
		assert.Equal(t, 0, env.Code, env.Msg)
	})
}

func TestLogin_RejectionsAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup).Code)
	require.NoError(t, app.store.SetActive(context.Background(), "alice", false))
	require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth",
		"application/json", strings.ReplaceAll(aliceSignup, "alice", "carol")).Code)

	bodies := []string{
		`{"username":"carol","password":"wrong"}`,  // 密码错误
		`{"username":"nobody","password":"s3cret"}`, // 账号不存在
		`{"username":"alice","password":"s3cret"}`,  // 已停用
		`{"username":"","password":""}`,             // 缺字段
	}
	var first envelope
	for i, b := range bodies {
		env := app.do(t, http.MethodPost, "/api/v1/auth/token", "application/json", b)
		assert.Equal(t, 401, env.Code, b)
		if i == 0 {
			first = env
			continue
		}
		assert.Equal(t, first, env, b)
	}
}

func TestAdmin_DeactivateAndActivate(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup).Code)
	login := `{"username":"alice","password":"s3cret"}`

	env := app.do(t, http.MethodPost, "/admin/v1/accounts/alice/deactivate", "", "")
	require.Equal(t, 0, env.Code, env.Msg)
	assert.JSONEq(t, `{"identifier":"alice","is_active":false}`, string(env.Data))
	assert.Equal(t, 401, app.do(t, http.MethodPost, "/api/v1/auth/token", "application/json", login).Code)

	env = app.do(t, http.MethodPost, "/admin/v1/accounts/alice/activate", "", "")
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth/token", "application/json", login).Code)

	env = app.do(t, http.MethodPost, "/admin/v1/accounts/ghost/deactivate", "", "")
	assert.Equal(t, 404, env.Code)
}

func TestAdmin_List(t *testing.T) {
	app := newTestApp(t)
	for _, id := range []string{"alice", "bob", "carol"} {
		body := strings.ReplaceAll(aliceSignup, "alice", id)
		require.Equal(t, 0, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", body).Code)
	}

	env := app.do(t, http.MethodGet, "/admin/v1/accounts?limit=2", "", "")
	require.Equal(t, 0, env.Code, env.Msg)

	var out struct {
		Total int64            `json:"total"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.EqualValues(t, 3, out.Total)
	assert.Len(t, out.Items, 2)
	for _, it := range out.Items {
		assert.NotContains(t, it, "password_hash")
	}

	assert.Equal(t, 400, app.do(t, http.MethodGet, "/admin/v1/accounts?offset=-1", "", "").Code)
}

type downStore struct{}

func (downStore) Insert(context.Context, domain.Account) (domain.Account, error) {
	return domain.Account{}, domain.ErrStoreUnavailable
}

func (downStore) FindByIdentifier(context.Context, string) (domain.Account, error) {
	return domain.Account{}, domain.ErrStoreUnavailable
}

func TestStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hasher, err := password.NewBcrypt(password.Config{Cost: bcrypt.MinCost})
	require.NoError(t, err)

	r := gin.New()
	NewAccountHandler(
		service.NewRegistrar(downStore{}, hasher, zap.NewNop()),
		service.NewVerifier(downStore{}, hasher, zap.NewNop()),
	).Mount(r.Group("/api/v1"))
	app := testApp{engine: r}

	assert.Equal(t, 503, app.do(t, http.MethodPost, "/api/v1/auth", "application/json", aliceSignup).Code)
	assert.Equal(t, 503, app.do(t, http.MethodPost, "/api/v1/auth/token", "application/json", `{"username":"alice","password":"x"}`).Code)
}
