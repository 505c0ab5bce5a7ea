package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CtxKeyCode 写回 gin.Context 的业务码，访问日志和指标按它统计（HTTP 状态码恒为 200）
const CtxKeyCode = "resp_code"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

func JSON(c *gin.Context, r Resp) {
	c.Set(CtxKeyCode, r.Code)
	c.JSON(http.StatusOK, r)
}

func Abort(c *gin.Context, code int, msg string) {
	c.Set(CtxKeyCode, code)
	c.AbortWithStatusJSON(http.StatusOK, Error(code, msg))
}
