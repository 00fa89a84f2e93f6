package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"OnShift/config"
	"OnShift/internal/model"
	"OnShift/internal/model/dto"
	"OnShift/internal/repository"
	apperrors "OnShift/pkg/errors"
	"OnShift/pkg/geo"
	"OnShift/pkg/logger"
	"OnShift/pkg/metrics"
	"OnShift/pkg/snowflake"
	"OnShift/utils"
)

// CodeStore 轮换码核销入口
type CodeStore interface {
	Redeem(ctx context.Context, officeID int64, code string) (bool, error)
}

// FailureThrottle 失败尝试节流
type FailureThrottle interface {
	Allowed(ctx context.Context, employeeID string) (bool, error)
	RecordFailure(ctx context.Context, employeeID string) (bool, error)
	Clear(ctx context.Context, employeeID string) error
}

// Broadcaster 事件广播，实现方必须尽力而为，不得阻塞打卡链路
type Broadcaster interface {
	RedemptionLogged(officeID int64, employeeID, employeeName, action, status string, earlyLeave bool, occurredAt time.Time)
	StatsUpdated(officeID int64, date string)
}

// AttendanceService 打卡核销的编排层
// 一次核销 = 身份校验 -> 节流 -> 排班解析 -> 码核销 -> 围栏校验 -> 落库 -> 广播
type AttendanceService struct {
	attendance repository.AttendanceRepository
	requests   repository.RequestRepository
	employees  repository.EmployeeRepository
	offices    repository.OfficeRepository
	resolver   *ScheduleResolver
	codes      CodeStore
	throttle   FailureThrottle
	events     Broadcaster

	now func() time.Time
}

func NewAttendanceService(
	attendance repository.AttendanceRepository,
	requests repository.RequestRepository,
	employees repository.EmployeeRepository,
	offices repository.OfficeRepository,
	resolver *ScheduleResolver,
	codes CodeStore,
	throttle FailureThrottle,
	events Broadcaster,
) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		requests:   requests,
		employees:  employees,
		offices:    offices,
		resolver:   resolver,
		codes:      codes,
		throttle:   throttle,
		events:     events,
		now:        time.Now,
	}
}

// CheckIn 签到核销
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
	now := s.now()

	employee, err := s.precheck(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, employeeID, now)
	if err != nil {
		// 排班缺失和歧义是配置问题，不消耗失败额度
		return nil, err
	}

	existing, err := s.attendance.FindByDate(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CheckInTime != nil {
		return nil, apperrors.AlreadyCheckedIn
	}

	if err := s.redeemAndVerify(ctx, employeeID, "check_in", resolved, req); err != nil {
		return nil, err
	}

	status := model.StatusPresent
	if now.After(resolved.Start.Add(resolved.Grace)) {
		status = model.StatusLate
	}

	point := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	record := existing
	if record != nil {
		// 收班扫描可能已经落了一条缺勤记录，签到时原地改写
		record.OfficeConfigID = resolved.Office.ID
		record.WorkshiftID = resolved.Shift.ID
		record.Status = status
		record.CheckInTime = &now
		record.CheckInLocation = &point
		if err := s.attendance.Update(ctx, record); err != nil {
			return nil, err
		}
	} else {
		record = &model.AttendanceRecord{
			EmployeeID:      employeeID,
			Date:            utils.DateOnly(now),
			OfficeConfigID:  resolved.Office.ID,
			WorkshiftID:     resolved.Shift.ID,
			Status:          status,
			CheckInTime:     &now,
			CheckInLocation: &point,
		}
		if err := s.attendance.Create(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// 并发双开：唯一索引兜住了，当作重复签到处理
				return nil, apperrors.AlreadyCheckedIn
			}
			return nil, err
		}
	}

	resp := &dto.RedeemResponse{
		RecordID:    record.ID,
		Status:      status,
		CheckInTime: &now,
	}

	s.finish(ctx, employee, "check_in", status, false, resolved.Office.ID, now)
	return resp, nil
}

// CheckOut 签退核销，失败节流额度与签到共用
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string, req *dto.RedeemRequest) (*dto.RedeemResponse, error) {
	now := s.now()

	employee, err := s.precheck(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	// 记录按自然日检索：跨零点的夜班过了午夜按未签到处理，与排班解析同一口径
	record, err := s.attendance.FindByDate(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}
	if record == nil || record.CheckInTime == nil {
		return nil, apperrors.NotCheckedIn
	}
	if record.CheckOutTime != nil {
		return nil, apperrors.AlreadyCheckedOut
	}

	if err := s.redeemAndVerify(ctx, employeeID, "check_out", resolved, req); err != nil {
		return nil, err
	}

	// 在 end-grace 之前签退算早退
	earlyLeave := now.Before(resolved.End.Add(-resolved.Grace))

	point := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	record.CheckOutTime = &now
	record.CheckOutLocation = &point
	record.EarlyLeave = earlyLeave

	resp := &dto.RedeemResponse{
		RecordID:     record.ID,
		Status:       record.Status,
		EarlyLeave:   earlyLeave,
		CheckInTime:  record.CheckInTime,
		CheckOutTime: &now,
	}

	if earlyLeave {
		if correction := s.fileCorrection(ctx, record, now); correction != nil {
			resp.CorrectionRequestID = &correction.PublicID
		}
	}

	if err := s.attendance.Update(ctx, record); err != nil {
		return nil, err
	}

	s.finish(ctx, employee, "check_out", record.Status, earlyLeave, resolved.Office.ID, now)
	return resp, nil
}

// History 按月查询出勤历史，month 形如 2026-08，缺省为当月
func (s *AttendanceService) History(ctx context.Context, employeeID, month string) ([]dto.HistoryItem, error) {
	now := s.now()
	year, m := now.Year(), now.Month()
	if month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, apperrors.InvalidRequest
		}
		year, m = parsed.Year(), parsed.Month()
	}

	records, err := s.attendance.ListForMonth(ctx, employeeID, year, m)
	if err != nil {
		return nil, err
	}

	officeNames := map[int64]string{}
	items := make([]dto.HistoryItem, 0, len(records))
	for _, r := range records {
		name, ok := officeNames[r.OfficeConfigID]
		if !ok {
			if office, err := s.offices.GetByID(ctx, r.OfficeConfigID); err == nil && office != nil {
				name = office.Name
			}
			officeNames[r.OfficeConfigID] = name
		}
		items = append(items, dto.HistoryItem{
			Date:         utils.DateKey(r.Date),
			Status:       r.Status,
			EarlyLeave:   r.EarlyLeave,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
			Office:       name,
		})
	}
	return items, nil
}

// precheck 员工有效性 + 节流额度
func (s *AttendanceService) precheck(ctx context.Context, employeeID string) (*model.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil || !employee.Active {
		return nil, apperrors.Unauthorized
	}

	allowed, err := s.throttle.Allowed(ctx, employeeID)
	if err != nil {
		return nil, apperrors.ServiceUnavailable
	}
	if !allowed {
		return nil, apperrors.RateLimited
	}
	return employee, nil
}

// redeemAndVerify 核销轮换码并校验位置
// 码是先销毁再验位置：位置不过关也不退码，防止围栏外反复试探同一个码
// 失败额度只约束猜码，核销成功即清零，围栏不过关不计失败
func (s *AttendanceService) redeemAndVerify(ctx context.Context, employeeID, action string, resolved *ResolvedShift, req *dto.RedeemRequest) error {
	ok, err := s.codes.Redeem(ctx, resolved.Office.ID, req.Code)
	if err != nil {
		return apperrors.ServiceUnavailable
	}
	if !ok {
		return s.strike(ctx, employeeID, action, apperrors.InvalidOrExpiredCode)
	}

	if err := s.throttle.Clear(ctx, employeeID); err != nil {
		logger.Logger.Warn("Failed to clear strikes",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}

	point := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	if inside, details := evaluateLocation(&resolved.Office, point, config.Cfg.GeofenceBufferFactor); !inside {
		return apperrors.WithDetails(apperrors.OutsideOfficeRange, details)
	}
	return nil
}

// evaluateLocation 办公点围栏校验：先半径后多边形，两者都配置时必须同时通过
// 只配了多边形的办公点用外接半径乘 GPS 噪声缓冲做粗筛，再走多边形精判
func evaluateLocation(office *model.OfficeConfig, p geo.Point, buffer float64) (bool, *dto.GeofenceDetails) {
	distance := geo.Distance(office.Center(), p)
	hasFence := office.Geofence != nil && len(office.Geofence.Included) > 0

	allowed := 0.0
	if office.Radius != nil {
		allowed = *office.Radius
	} else if hasFence {
		allowed = geo.BoundingRadius(office.Center(), *office.Geofence, buffer)
	}

	if allowed > 0 && distance > allowed {
		return false, &dto.GeofenceDetails{
			DistanceMeters: distance,
			AllowedMeters:  allowed,
			Location:       p,
		}
	}

	if hasFence && !geo.InGeofence(p, *office.Geofence) {
		return false, &dto.GeofenceDetails{
			DistanceMeters:  distance,
			Location:        p,
			FailedByPolygon: true,
		}
	}

	return true, nil
}

// strike 记一次失败并返回对应业务错误
func (s *AttendanceService) strike(ctx context.Context, employeeID, action string, cause error) error {
	capped, err := s.throttle.RecordFailure(ctx, employeeID)
	if err != nil {
		logger.Logger.Warn("Failed to record strike",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return cause
	}
	if capped {
		metrics.RecordStrikeLockout(ctx, action)
		logger.Logger.Info("Employee hit strike limit",
			zap.String("employee_id", employeeID),
			zap.String("action", action),
		)
	}
	return cause
}

// fileCorrection 早退时自动提交补卡申请，失败只记日志不影响打卡结果
func (s *AttendanceService) fileCorrection(ctx context.Context, record *model.AttendanceRecord, now time.Time) *model.CorrectionRequest {
	publicID, err := snowflake.NextID()
	if err != nil {
		logger.Logger.Warn("Failed to generate correction request ID", zap.Error(err))
		return nil
	}

	correction := &model.CorrectionRequest{
		PublicID:   publicID,
		EmployeeID: record.EmployeeID,
		Type:       model.RequestTypeLateEarly,
		Status:     model.RequestStatusPending,
		Date:       utils.DateOnly(now),
		Reason:     fmt.Sprintf("Early leave on %s (auto-filed)", utils.DateKey(now)),
	}
	if err := s.requests.Create(ctx, correction); err != nil {
		logger.Logger.Warn("Failed to file correction request",
			zap.String("employee_id", record.EmployeeID),
			zap.Error(err),
		)
		return nil
	}

	record.CorrectionRequestID = &correction.ID
	if err := s.attendance.Update(ctx, record); err != nil {
		logger.Logger.Warn("Failed to link correction request",
			zap.Int64("request_id", correction.ID),
			zap.Error(err),
		)
	}
	return correction
}

// finish 成功收尾：广播事件、记指标
func (s *AttendanceService) finish(ctx context.Context, employee *model.Employee, action, status string, earlyLeave bool, officeID int64, now time.Time) {
	s.events.RedemptionLogged(officeID, employee.ID, employee.Name, action, status, earlyLeave, now)
	s.events.StatsUpdated(officeID, utils.DateKey(now))
	metrics.RecordRedemption(ctx, action, strings.ToLower(status))
}
