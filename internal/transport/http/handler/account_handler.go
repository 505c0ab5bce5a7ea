package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"account-auth-service/internal/domain"
	"account-auth-service/internal/service"
	"account-auth-service/internal/transport/http/ez"
)

type Registrar interface {
	Register(ctx context.Context, req service.RegisterRequest) (domain.Account, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, req service.LoginRequest) (service.Result, error)
}

// 登录失败统一文案：不区分账号不存在、已停用、密码错误
const msgInvalidCredentials = "invalid credentials"

type AccountHandler struct {
	reg  Registrar
	auth Authenticator
}

func NewAccountHandler(reg Registrar, auth Authenticator) *AccountHandler {
	return &AccountHandler{reg: reg, auth: auth}
}

type signupIn struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

// AccountView 对外的账号视图，不含哈希
type AccountView struct {
	Identifier string    `json:"identifier"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToView(a domain.Account) AccountView {
	return AccountView{
		Identifier: a.Identifier,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Role:       a.Role,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
	}
}

// 兼容 OAuth2 password 表单：username/password
type loginIn struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginOut struct {
	Authenticated bool `json:"authenticated"`
}

// Mount 挂载 POST /auth 和 POST /auth/token
func (h *AccountHandler) Mount(g *gin.RouterGroup) {
	ez.Register(g, ez.Action[signupIn, AccountView]{
		Method:  http.MethodPost,
		Path:    "/auth",
		Binder:  ez.BindJSON,
		Handler: h.signup,
	})
	ez.Register(g, ez.Action[loginIn, loginOut]{
		Method:  http.MethodPost,
		Path:    "/auth/token",
		Binder:  ez.BindAuto,
		Handler: h.login,
	})
}

func (h *AccountHandler) signup(c *gin.Context, in *signupIn) (AccountView, error) {
	acc, err := h.reg.Register(c.Request.Context(), service.RegisterRequest{
		Identifier: in.Identifier,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Password:   in.Password,
		Role:       in.Role,
	})
	if err != nil {
		return AccountView{}, err
	}
	return ToView(acc), nil
}

func (h *AccountHandler) login(c *gin.Context, in *loginIn) (loginOut, error) {
	res, err := h.auth.Authenticate(c.Request.Context(), service.LoginRequest{
		Identifier: in.Username,
		Password:   in.Password,
	})
	if err != nil {
		return loginOut{}, err
	}
	if res.Verdict != service.Verified {
		return loginOut{}, ez.Unauthorized(msgInvalidCredentials)
	}
	return loginOut{Authenticated: true}, nil
}
