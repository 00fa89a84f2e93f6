package response

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"OnShift/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success 成功响应
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, Response{
		Code:    "SUCCESS",
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，根据业务错误码映射 HTTP 状态
func Error(ctx context.Context, c *app.RequestContext, err errors.Definition) {
	ErrorWithDetails(ctx, c, err, nil)
}

// ErrorWithDetails 错误响应，附带补充信息（如距离围栏的米数）
func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err errors.Definition, details interface{}) {
	c.JSON(errorToHTTPStatus(err.Code), Response{
		Code:    err.Code,
		Message: err.Message,
		Details: details,
	})
}

func errorToHTTPStatus(code string) int {
	switch code {
	case "UNAUTHORIZED":
		return consts.StatusUnauthorized
	case "TOO_MANY_ATTEMPTS":
		return consts.StatusTooManyRequests
	case "ALREADY_CHECKED_IN", "ALREADY_CHECKED_OUT", "SCHEDULE_AMBIGUOUS":
		return consts.StatusConflict
	case "CODE_INVALID_OR_EXPIRED", "OUTSIDE_OFFICE_RANGE", "NOT_CHECKED_IN",
		"NO_ACTIVE_SCHEDULE", "NO_OFFICE_CONFIG", "INVALID_REQUEST", "INVALID_USER_ID":
		return consts.StatusBadRequest
	case "SERVICE_UNAVAILABLE":
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
