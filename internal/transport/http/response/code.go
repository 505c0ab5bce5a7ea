package response

// 业务码直接沿用 HTTP 语义；HTTP 状态码统一 200
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeUnavailable     = 503
	CodeTimeout         = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeNotFound:        "Not Found",
	CodeConflict:        "Conflict",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeUnavailable:     "Service Unavailable",
	CodeTimeout:         "Gateway Timeout",
}
