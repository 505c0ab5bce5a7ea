package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account-auth-service/internal/domain"
	resp "account-auth-service/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindAuto  Binder = "auto"  // 按 Content-Type 选择（JSON / 表单）
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Unavailable(msg string, err error) error {
	return &AErr{Code: resp.CodeUnavailable, Msg: msg, Err: err}
}
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/auth/token"、"/accounts/:identifier/activate"
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register 在分组下注册动作接口
func Register[I any, O any](g gin.IRoutes, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindAuto:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			resp.JSON(c, bindErrorResp(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			resp.JSON(c, errorResp(err))
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		g.GET(a.Path, h)
	case http.MethodPut:
		g.PUT(a.Path, h)
	case http.MethodDelete:
		g.DELETE(a.Path, h)
	default: // 默认 POST
		g.POST(a.Path, h)
	}
}

// bindErrorResp 请求体超过 MaxBodyBytes 限制时单独提示
func bindErrorResp(err error) resp.Resp {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return resp.Error(resp.CodeBadRequest, "request body too large")
	}
	return resp.Error(resp.CodeBadRequest, "invalid request body")
}

// errorResp 错误映射：AErr 原样输出，领域错误按语义给码，其余一律 500 且不透出细节
func errorResp(err error) resp.Resp {
	var ae *AErr
	if errors.As(err, &ae) {
		return resp.Error(ae.Code, ae.Error())
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return resp.Error(resp.CodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateIdentifier):
		return resp.Error(resp.CodeConflict, "identifier already registered")
	case errors.Is(err, domain.ErrAccountNotFound):
		return resp.Error(resp.CodeNotFound, "account not found")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return resp.Error(resp.CodeUnavailable, "account store unavailable")
	}
	return resp.Error(resp.CodeServerError, "")
}
