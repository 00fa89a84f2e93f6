package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"OnShift/internal/middleware"
	"OnShift/internal/model/dto"
	"OnShift/internal/service"
	apperrors "OnShift/pkg/errors"
	"OnShift/pkg/logger"
	"OnShift/pkg/response"
	"OnShift/utils"
)

// CheckIn 签到打卡
// POST /v1/attendance/check-in
func CheckIn(ctx context.Context, c *app.RequestContext) {
	redeem(ctx, c, service.Attendance().CheckIn)
}

// CheckOut 签退打卡
// POST /v1/attendance/check-out
func CheckOut(ctx context.Context, c *app.RequestContext) {
	redeem(ctx, c, service.Attendance().CheckOut)
}

func redeem(ctx context.Context, c *app.RequestContext, fn func(context.Context, string, *dto.RedeemRequest) (*dto.RedeemResponse, error)) {
	employeeID, ok := middleware.GetEmployeeID(ctx, c)
	if !ok {
		response.Error(ctx, c, apperrors.Unauthorized)
		return
	}

	var req dto.RedeemRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Error(ctx, c, apperrors.InvalidRequest)
		return
	}

	// 格式不对的请求直接打回，不消耗失败额度
	if !utils.ValidateCode(req.Code) || !utils.ValidateCoordinates(req.Latitude, req.Longitude) {
		response.Error(ctx, c, apperrors.InvalidRequest)
		return
	}

	resp, err := fn(ctx, employeeID, &req)
	if err != nil {
		writeServiceError(ctx, c, err)
		return
	}

	response.Success(ctx, c, resp)
}

// History 出勤历史查询
// GET /v1/attendance/history?month=2026-08
func History(ctx context.Context, c *app.RequestContext) {
	employeeID, ok := middleware.GetEmployeeID(ctx, c)
	if !ok {
		response.Error(ctx, c, apperrors.Unauthorized)
		return
	}

	month := c.Query("month")

	items, err := service.Attendance().History(ctx, employeeID, month)
	if err != nil {
		writeServiceError(ctx, c, err)
		return
	}

	response.Success(ctx, c, items)
}

func writeServiceError(ctx context.Context, c *app.RequestContext, err error) {
	if def, ok := apperrors.AsDefinition(err); ok {
		response.ErrorWithDetails(ctx, c, def, apperrors.Details(err))
		return
	}

	logger.Logger.Error("Attendance handler failed",
		zap.String("path", string(c.Path())),
		zap.Error(err),
	)
	response.Error(ctx, c, apperrors.ServiceUnavailable)
}
