package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"OnShift/internal/model"
	"OnShift/internal/model/dto"
	"OnShift/internal/repository"
	apperrors "OnShift/pkg/errors"
	"OnShift/pkg/geo"
	"OnShift/pkg/snowflake"
	"OnShift/utils"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ---- fakes ----

type fakeAttendanceRepo struct {
	records   map[string]*model.AttendanceRecord
	createErr error
	nextID    int64
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]*model.AttendanceRecord{}}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "/" + utils.DateKey(date)
}

func (r *fakeAttendanceRepo) FindByDate(ctx context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error) {
	if rec, ok := r.records[recordKey(employeeID, date)]; ok {
		return rec, nil
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	key := recordKey(record.EmployeeID, record.Date)
	if _, exists := r.records[key]; exists {
		return repository.ErrDuplicate
	}
	r.nextID++
	record.ID = r.nextID
	r.records[key] = record
	return nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record *model.AttendanceRecord) error {
	r.records[recordKey(record.EmployeeID, record.Date)] = record
	return nil
}

func (r *fakeAttendanceRepo) ListForMonth(ctx context.Context, employeeID string, year int, month time.Month) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date.Year() == year && rec.Date.Month() == month {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListEmployeeIDsWithRecordOn(ctx context.Context, date time.Time) ([]string, error) {
	var ids []string
	for _, rec := range r.records {
		if utils.DateKey(rec.Date) == utils.DateKey(date) {
			ids = append(ids, rec.EmployeeID)
		}
	}
	return ids, nil
}

type fakeScheduleRepo struct {
	schedules []model.Schedule
}

func (r *fakeScheduleRepo) ListActiveForDate(ctx context.Context, employeeID string, date time.Time) ([]model.Schedule, error) {
	var out []model.Schedule
	for _, s := range r.schedules {
		if s.EmployeeID == employeeID && s.CoversDate(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) ListActiveOn(ctx context.Context, date time.Time) ([]model.Schedule, error) {
	var out []model.Schedule
	for _, s := range r.schedules {
		if s.CoversDate(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	inactive map[string]bool
	missing  map[string]bool
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	if r.missing[id] {
		return nil, nil
	}
	return &model.Employee{ID: id, Name: "Test", Active: !r.inactive[id]}, nil
}

type fakeOfficeRepo struct {
	offices map[int64]*model.OfficeConfig
}

func (r *fakeOfficeRepo) GetByID(ctx context.Context, id int64) (*model.OfficeConfig, error) {
	return r.offices[id], nil
}

func (r *fakeOfficeRepo) ListActive(ctx context.Context) ([]model.OfficeConfig, error) {
	var out []model.OfficeConfig
	for _, o := range r.offices {
		out = append(out, *o)
	}
	return out, nil
}

type fakeRequestRepo struct {
	created []*model.CorrectionRequest
	nextID  int64
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *model.CorrectionRequest) error {
	r.nextID++
	request.ID = r.nextID
	r.created = append(r.created, request)
	return nil
}

type fakeCodeStore struct {
	codes map[string]bool
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: map[string]bool{}}
}

func (s *fakeCodeStore) put(officeID int64, code string) {
	s.codes[fmt.Sprintf("%d:%s", officeID, code)] = true
}

func (s *fakeCodeStore) Redeem(ctx context.Context, officeID int64, code string) (bool, error) {
	key := fmt.Sprintf("%d:%s", officeID, code)
	if !s.codes[key] {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}

type fakeThrottle struct {
	limit    int
	failures int
	cleared  int
}

func (t *fakeThrottle) Allowed(ctx context.Context, employeeID string) (bool, error) {
	return t.failures < t.limit, nil
}

func (t *fakeThrottle) RecordFailure(ctx context.Context, employeeID string) (bool, error) {
	t.failures++
	return t.failures >= t.limit, nil
}

func (t *fakeThrottle) Clear(ctx context.Context, employeeID string) error {
	t.failures = 0
	t.cleared++
	return nil
}

type broadcastEvent struct {
	kind   string
	action string
	status string
}

type fakeBroadcaster struct {
	events []broadcastEvent
}

func (b *fakeBroadcaster) RedemptionLogged(officeID int64, employeeID, employeeName, action, status string, earlyLeave bool, occurredAt time.Time) {
	b.events = append(b.events, broadcastEvent{kind: "redemption", action: action, status: status})
}

func (b *fakeBroadcaster) StatsUpdated(officeID int64, date string) {
	b.events = append(b.events, broadcastEvent{kind: "stats"})
}

// ---- fixture ----

const (
	testEmployee = "5f0c2f1a-1111-4222-8333-944444444444"
	testOfficeID = int64(42)
	testCode     = "0042"
)

func float64Ptr(v float64) *float64 { return &v }

// makeSchedule 生成一个挂在测试办公点上的排班
// 办公点中心 (10.0, 106.0)，半径 200 米
func makeSchedule(employeeID string, scheduleID int64, start, end string, grace int, workDays []int) model.Schedule {
	office := &model.OfficeConfig{
		BaseModel: model.BaseModel{ID: testOfficeID},
		Name:      "HQ",
		Latitude:  10.0,
		Longitude: 106.0,
		Radius:    float64Ptr(200),
		Active:    true,
	}
	shift := &model.Workshift{
		BaseModel:      model.BaseModel{ID: 7},
		Name:           "day shift",
		StartTime:      start,
		EndTime:        end,
		GracePeriod:    grace,
		WorkDays:       workDays,
		OfficeConfigID: testOfficeID,
		OfficeConfig:   office,
	}
	return model.Schedule{
		BaseModel:   model.BaseModel{ID: scheduleID},
		EmployeeID:  employeeID,
		WorkshiftID: 7,
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Workshift:   shift,
	}
}

type fixture struct {
	svc        *AttendanceService
	attendance *fakeAttendanceRepo
	requests   *fakeRequestRepo
	codes      *fakeCodeStore
	throttle   *fakeThrottle
	events     *fakeBroadcaster
	employees  *fakeEmployeeRepo
	now        time.Time
}

func newFixture(now time.Time, schedules ...model.Schedule) *fixture {
	f := &fixture{
		attendance: newFakeAttendanceRepo(),
		requests:   &fakeRequestRepo{},
		codes:      newFakeCodeStore(),
		throttle:   &fakeThrottle{limit: 3},
		events:     &fakeBroadcaster{},
		employees:  &fakeEmployeeRepo{inactive: map[string]bool{}, missing: map[string]bool{}},
		now:        now,
	}
	f.svc = NewAttendanceService(
		f.attendance,
		f.requests,
		f.employees,
		&fakeOfficeRepo{offices: map[int64]*model.OfficeConfig{}},
		NewScheduleResolver(&fakeScheduleRepo{schedules: schedules}),
		f.codes,
		f.throttle,
		f.events,
	)
	f.svc.now = func() time.Time { return now }
	return f
}

// at 返回测试基准日（排班生效区间内）的某个时刻
func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2026-08-31 "+clock)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func insideRequest() *dto.RedeemRequest {
	return &dto.RedeemRequest{Code: testCode, Latitude: 10.0, Longitude: 106.0}
}

func everyDay() []int { return nil }

// ---- check-in ----

func TestCheckInOnTime(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != model.StatusPresent {
		t.Errorf("status = %s, want %s", resp.Status, model.StatusPresent)
	}
	if resp.CorrectionRequestID != nil {
		t.Errorf("unexpected correction request for on-time check-in")
	}

	rec, _ := f.attendance.FindByDate(context.Background(), testEmployee, now)
	if rec == nil {
		t.Fatal("record not created")
	}
	if rec.CheckInTime == nil || !rec.CheckInTime.Equal(now) {
		t.Errorf("check-in time not recorded")
	}
	if f.throttle.cleared != 1 {
		t.Errorf("throttle not cleared after success")
	}
	if len(f.events.events) != 2 {
		t.Errorf("expected redemption + stats events, got %d", len(f.events.events))
	}
}

func TestCheckInWithinGraceIsPresent(t *testing.T) {
	// 宽限期边界：09:10 整仍算准时
	now := at("09:10")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != model.StatusPresent {
		t.Errorf("status = %s, want %s", resp.Status, model.StatusPresent)
	}
}

func TestCheckInLateNoCorrectionRequest(t *testing.T) {
	// 迟到只标状态，补卡申请只在早退签退时自动提交
	now := at("09:25")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	resp, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != model.StatusLate {
		t.Errorf("status = %s, want %s", resp.Status, model.StatusLate)
	}
	if len(f.requests.created) != 0 {
		t.Errorf("late check-in should not file a correction request, got %d", len(f.requests.created))
	}
	if resp.CorrectionRequestID != nil {
		t.Errorf("unexpected correction request id on check-in response")
	}
}

func TestCheckInUpdatesAbsentRecord(t *testing.T) {
	// 收班扫描先落了缺勤记录，之后补签到要原地改写而不是报重复
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	absent := &model.AttendanceRecord{
		EmployeeID:     testEmployee,
		Date:           utils.DateOnly(now),
		OfficeConfigID: testOfficeID,
		WorkshiftID:    7,
		Status:         model.StatusAbsent,
	}
	if err := f.attendance.Create(context.Background(), absent); err != nil {
		t.Fatalf("seed absent record: %v", err)
	}

	resp, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RecordID != absent.ID {
		t.Errorf("record id = %d, want the absent record %d updated in place", resp.RecordID, absent.ID)
	}

	rec, _ := f.attendance.FindByDate(context.Background(), testEmployee, now)
	if rec.Status != model.StatusPresent {
		t.Errorf("status = %s, want %s", rec.Status, model.StatusPresent)
	}
	if rec.CheckInTime == nil || !rec.CheckInTime.Equal(now) {
		t.Errorf("check-in time not recorded on the updated record")
	}
}

func TestCheckInInvalidCodeBurnsStrike(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	// 不放任何码

	_, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.InvalidOrExpiredCode) {
		t.Fatalf("err = %v, want InvalidOrExpiredCode", err)
	}
	if f.throttle.failures != 1 {
		t.Errorf("failures = %d, want 1", f.throttle.failures)
	}
}

func TestCheckInCodeIsSingleUse(t *testing.T) {
	now := at("09:05")
	other := "8a0c2f1a-2222-4222-8333-955555555555"
	f := newFixture(now,
		makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()),
		makeSchedule(other, 2, "09:00", "18:00", 10, everyDay()),
	)
	f.codes.put(testOfficeID, testCode)

	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	_, err := f.svc.CheckIn(context.Background(), other, insideRequest())
	if !apperrors.Is(err, apperrors.InvalidOrExpiredCode) {
		t.Fatalf("second redemption: err = %v, want InvalidOrExpiredCode", err)
	}
}

func TestCheckInOutsideRangeBurnsCode(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	// 离办公点约 1.1 公里
	outside := &dto.RedeemRequest{Code: testCode, Latitude: 10.01, Longitude: 106.0}

	_, err := f.svc.CheckIn(context.Background(), testEmployee, outside)
	if !apperrors.Is(err, apperrors.OutsideOfficeRange) {
		t.Fatalf("err = %v, want OutsideOfficeRange", err)
	}
	// 围栏不过关不算猜码失败
	if f.throttle.failures != 0 {
		t.Errorf("failures = %d, want 0", f.throttle.failures)
	}
	if f.throttle.cleared != 1 {
		t.Errorf("successful redemption should clear strikes, cleared = %d", f.throttle.cleared)
	}

	details, ok := apperrors.Details(err).(*dto.GeofenceDetails)
	if !ok {
		t.Fatalf("expected geofence details, got %T", apperrors.Details(err))
	}
	if details.DistanceMeters <= details.AllowedMeters {
		t.Errorf("details distance %.1f should exceed allowed %.1f", details.DistanceMeters, details.AllowedMeters)
	}

	// 码在围栏校验前已销毁，哪怕回到围栏内也不能再用
	_, err = f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.InvalidOrExpiredCode) {
		t.Fatalf("burned code should be gone: err = %v", err)
	}
}

func TestCheckInOutsideRangeDoesNotLockOut(t *testing.T) {
	// 反复在围栏外用有效码尝试不会耗尽失败额度，回到围栏内立刻能打上卡
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	outside := &dto.RedeemRequest{Code: testCode, Latitude: 10.01, Longitude: 106.0}

	for i := 0; i < 3; i++ {
		f.codes.put(testOfficeID, testCode)
		if _, err := f.svc.CheckIn(context.Background(), testEmployee, outside); !apperrors.Is(err, apperrors.OutsideOfficeRange) {
			t.Fatalf("attempt %d: err = %v, want OutsideOfficeRange", i, err)
		}
	}
	if f.throttle.failures != 0 {
		t.Fatalf("failures = %d, want 0 after geofence-only failures", f.throttle.failures)
	}

	f.codes.put(testOfficeID, testCode)
	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); err != nil {
		t.Fatalf("check-in from inside the fence failed: %v", err)
	}
}

func TestRedeemClearsEarlierStrikes(t *testing.T) {
	// 之前猜错攒下的失败计数，码核销成功那一刻就清零，与后续围栏结果无关
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.throttle.failures = 2
	f.codes.put(testOfficeID, testCode)

	outside := &dto.RedeemRequest{Code: testCode, Latitude: 10.01, Longitude: 106.0}
	if _, err := f.svc.CheckIn(context.Background(), testEmployee, outside); !apperrors.Is(err, apperrors.OutsideOfficeRange) {
		t.Fatalf("err = %v, want OutsideOfficeRange", err)
	}
	if f.throttle.failures != 0 {
		t.Errorf("failures = %d, want 0 after a successful redemption", f.throttle.failures)
	}
}

func TestCheckInThrottled(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.throttle.failures = 3
	f.codes.put(testOfficeID, testCode)

	_, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.RateLimited) {
		t.Fatalf("err = %v, want RateLimited", err)
	}

	// 被节流时不应消耗码
	if ok, _ := f.codes.Redeem(context.Background(), testOfficeID, testCode); !ok {
		t.Errorf("code was consumed while throttled")
	}
}

func TestCheckInTwiceRejected(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}

	f.codes.put(testOfficeID, "7777")
	_, err := f.svc.CheckIn(context.Background(), testEmployee, &dto.RedeemRequest{Code: "7777", Latitude: 10.0, Longitude: 106.0})
	if !apperrors.Is(err, apperrors.AlreadyCheckedIn) {
		t.Fatalf("err = %v, want AlreadyCheckedIn", err)
	}
	if f.throttle.failures != 0 {
		t.Errorf("duplicate check-in should not count as a failed attempt")
	}
}

func TestCheckInDuplicateInsertRace(t *testing.T) {
	// FindByDate 没看到记录，但并发写入让唯一索引先落了一条
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)
	f.attendance.createErr = repository.ErrDuplicate

	_, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.AlreadyCheckedIn) {
		t.Fatalf("err = %v, want AlreadyCheckedIn", err)
	}
}

func TestCheckInNoScheduleNoPenalty(t *testing.T) {
	now := at("09:05")
	f := newFixture(now) // 没有任何排班
	f.codes.put(testOfficeID, testCode)

	_, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.NoActiveSchedule) {
		t.Fatalf("err = %v, want NoActiveSchedule", err)
	}
	if f.throttle.failures != 0 {
		t.Errorf("configuration gap should not count as a failed attempt")
	}
	if ok, _ := f.codes.Redeem(context.Background(), testOfficeID, testCode); !ok {
		t.Errorf("code should not be consumed without a schedule")
	}
}

func TestCheckInInactiveEmployee(t *testing.T) {
	now := at("09:05")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.employees.inactive[testEmployee] = true

	_, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.Unauthorized) {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
}

// ---- check-out ----

func checkInFirst(t *testing.T, f *fixture) {
	t.Helper()
	f.codes.put(testOfficeID, testCode)
	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); err != nil {
		t.Fatalf("check-in setup failed: %v", err)
	}
}

func TestCheckOutAtEndOfShift(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)

	now := at("18:01")
	f.svc.now = func() time.Time { return now }
	f.codes.put(testOfficeID, "1234")

	resp, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.EarlyLeave {
		t.Errorf("check-out after shift end flagged as early leave")
	}
	if resp.CheckOutTime == nil || !resp.CheckOutTime.Equal(now) {
		t.Errorf("check-out time not recorded")
	}
	if len(f.requests.created) != 0 {
		t.Errorf("unexpected correction request: %d", len(f.requests.created))
	}
}

func TestCheckOutEarlyLeaveFilesCorrectionRequest(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)

	// 17:49 < 18:00 - 10min 宽限，算早退
	now := at("17:49")
	f.svc.now = func() time.Time { return now }
	f.codes.put(testOfficeID, "1234")

	resp, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.EarlyLeave {
		t.Errorf("expected early leave flag")
	}
	if len(f.requests.created) != 1 {
		t.Fatalf("expected 1 correction request, got %d", len(f.requests.created))
	}
}

func TestCheckOutWithinGraceNotEarly(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)

	// 17:50 = 18:00 - 宽限，不算早退
	f.svc.now = func() time.Time { return at("17:50") }
	f.codes.put(testOfficeID, "1234")

	resp, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.EarlyLeave {
		t.Errorf("check-out within grace flagged as early leave")
	}
}

func TestCheckOutEarlyLeaveAfterLateCheckIn(t *testing.T) {
	// 迟到签到不提申请，早退签退照常提且只提一条
	f := newFixture(at("09:30"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)
	if len(f.requests.created) != 0 {
		t.Fatalf("late check-in should not have filed a request, got %d", len(f.requests.created))
	}

	f.svc.now = func() time.Time { return at("16:00") }
	f.codes.put(testOfficeID, "1234")

	resp, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.EarlyLeave {
		t.Errorf("expected early leave flag")
	}
	if len(f.requests.created) != 1 {
		t.Fatalf("expected exactly 1 correction request, got %d", len(f.requests.created))
	}

	rec, _ := f.attendance.FindByDate(context.Background(), testEmployee, at("16:00"))
	if rec.CorrectionRequestID == nil || *rec.CorrectionRequestID != f.requests.created[0].ID {
		t.Errorf("record not linked to the correction request")
	}
}

func TestCheckOutOvernightAfterMidnight(t *testing.T) {
	// 记录按自然日定位，跨零点夜班在次日凌晨签退查不到当天记录
	f := newFixture(at("22:05"), makeSchedule(testEmployee, 1, "22:00", "06:00", 10, everyDay()))
	checkInFirst(t, f)

	f.svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 5, 58, 0, 0, time.UTC)
	}
	f.codes.put(testOfficeID, "1234")

	_, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0})
	if !apperrors.Is(err, apperrors.NotCheckedIn) {
		t.Fatalf("err = %v, want NotCheckedIn", err)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	now := at("18:00")
	f := newFixture(now, makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	f.codes.put(testOfficeID, testCode)

	_, err := f.svc.CheckOut(context.Background(), testEmployee, insideRequest())
	if !apperrors.Is(err, apperrors.NotCheckedIn) {
		t.Fatalf("err = %v, want NotCheckedIn", err)
	}
	if ok, _ := f.codes.Redeem(context.Background(), testOfficeID, testCode); !ok {
		t.Errorf("code should not be consumed without a check-in record")
	}
}

func TestCheckOutTwiceRejected(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)

	f.svc.now = func() time.Time { return at("18:05") }
	f.codes.put(testOfficeID, "1234")
	if _, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "1234", Latitude: 10.0, Longitude: 106.0}); err != nil {
		t.Fatalf("first check-out failed: %v", err)
	}

	f.codes.put(testOfficeID, "5678")
	_, err := f.svc.CheckOut(context.Background(), testEmployee, &dto.RedeemRequest{Code: "5678", Latitude: 10.0, Longitude: 106.0})
	if !apperrors.Is(err, apperrors.AlreadyCheckedOut) {
		t.Fatalf("err = %v, want AlreadyCheckedOut", err)
	}
}

func TestSharedStrikeBudgetAcrossActions(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))

	// 签到猜错两次
	for i := 0; i < 2; i++ {
		if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); !apperrors.Is(err, apperrors.InvalidOrExpiredCode) {
			t.Fatalf("attempt %d: err = %v", i, err)
		}
	}
	// 签退再错一次，额度用光
	if _, err := f.svc.CheckOut(context.Background(), testEmployee, insideRequest()); !apperrors.Is(err, apperrors.NotCheckedIn) {
		// 没有签到记录时签退先报 NotCheckedIn，不触码也不计失败
		t.Fatalf("err = %v, want NotCheckedIn", err)
	}

	// 第三次签到失败后触顶
	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); !apperrors.Is(err, apperrors.InvalidOrExpiredCode) {
		t.Fatalf("err = %v", err)
	}
	if _, err := f.svc.CheckIn(context.Background(), testEmployee, insideRequest()); !apperrors.Is(err, apperrors.RateLimited) {
		t.Fatalf("err = %v, want RateLimited after limit", err)
	}
}

// ---- history ----

func TestHistory(t *testing.T) {
	f := newFixture(at("09:05"), makeSchedule(testEmployee, 1, "09:00", "18:00", 10, everyDay()))
	checkInFirst(t, f)

	items, err := f.svc.History(context.Background(), testEmployee, "2026-08")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Date != "2026-08-31" {
		t.Errorf("date = %s, want 2026-08-31", items[0].Date)
	}

	if _, err := f.svc.History(context.Background(), testEmployee, "08/2026"); !apperrors.Is(err, apperrors.InvalidRequest) {
		t.Errorf("malformed month should be rejected, got %v", err)
	}
}

// ---- geofence evaluation ----

func TestEvaluateLocationPolygon(t *testing.T) {
	office := &model.OfficeConfig{
		BaseModel: model.BaseModel{ID: 1},
		Latitude:  10.0,
		Longitude: 106.0,
		Geofence: &geo.Geofence{
			Included: [][]geo.Point{{
				{Latitude: 9.99, Longitude: 105.99},
				{Latitude: 9.99, Longitude: 106.01},
				{Latitude: 10.01, Longitude: 106.01},
				{Latitude: 10.01, Longitude: 105.99},
			}},
		},
	}

	if ok, _ := evaluateLocation(office, geo.Point{Latitude: 10.0, Longitude: 106.0}, 1.2); !ok {
		t.Errorf("center should be inside the polygon")
	}

	// 刚出多边形但还在外接半径内：多边形精判拦截
	ok, details := evaluateLocation(office, geo.Point{Latitude: 10.012, Longitude: 106.0}, 1.2)
	if ok {
		t.Errorf("point outside polygon accepted")
	}
	if details == nil || !details.FailedByPolygon {
		t.Errorf("expected polygon failure details")
	}

	// 远超外接半径：粗筛直接拦截，带派生的允许半径
	ok, details = evaluateLocation(office, geo.Point{Latitude: 10.05, Longitude: 106.0}, 1.2)
	if ok {
		t.Errorf("far point accepted")
	}
	if details == nil || details.FailedByPolygon {
		t.Errorf("far point should fail the derived radius pre-check")
	}
	if details != nil && details.AllowedMeters <= 0 {
		t.Errorf("derived radius missing from details")
	}
}

func TestEvaluateLocationNoConstraints(t *testing.T) {
	office := &model.OfficeConfig{BaseModel: model.BaseModel{ID: 1}, Latitude: 10.0, Longitude: 106.0}
	if ok, _ := evaluateLocation(office, geo.Point{Latitude: 50.0, Longitude: 0.0}, 1.2); !ok {
		t.Errorf("office without radius or fence should accept any location")
	}
}
