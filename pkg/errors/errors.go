package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized   = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID  = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	InvalidRequest = Definition{Code: "INVALID_REQUEST", Message: "Invalid request payload"}
)

// 打卡兑换错误。这些都是预期内的业务结果，按值返回，不走 panic。
var (
	RateLimited          = Definition{Code: "TOO_MANY_ATTEMPTS", Message: "Too many failed attempts, try again later"}
	InvalidOrExpiredCode = Definition{Code: "CODE_INVALID_OR_EXPIRED", Message: "Check-in code is invalid or expired"}
	OutsideOfficeRange   = Definition{Code: "OUTSIDE_OFFICE_RANGE", Message: "You are outside the office range"}
	AlreadyCheckedIn     = Definition{Code: "ALREADY_CHECKED_IN", Message: "Already checked in today"}
	AlreadyCheckedOut    = Definition{Code: "ALREADY_CHECKED_OUT", Message: "Already checked out today"}
	NotCheckedIn         = Definition{Code: "NOT_CHECKED_IN", Message: "You have not checked in yet"}
)

// 排班配置错误。属于管理员需要介入的配置缺口，客户端不应盲目重试。
var (
	NoActiveSchedule   = Definition{Code: "NO_ACTIVE_SCHEDULE", Message: "No active schedule for this date"}
	ScheduleAmbiguous  = Definition{Code: "SCHEDULE_AMBIGUOUS", Message: "Multiple active schedules for this date"}
	NoOfficeConfig     = Definition{Code: "NO_OFFICE_CONFIG", Message: "Shift has no office configuration"}
)

// 基础设施错误。缓存或数据库不可用时的兜底信号。
var (
	ServiceUnavailable = Definition{Code: "SERVICE_UNAVAILABLE", Message: "Service temporarily unavailable"}
)

// DetailedError 在业务错误之上附带结构化补充信息，
// 比如围栏校验失败时距离办公点的米数。
type DetailedError struct {
	Definition
	Details interface{}
}

// WithDetails 给业务错误附加补充信息。
func WithDetails(def Definition, details interface{}) *DetailedError {
	return &DetailedError{Definition: def, Details: details}
}

// Details 提取错误携带的补充信息，没有时返回 nil。
func Details(err error) interface{} {
	if d, ok := err.(*DetailedError); ok {
		return d.Details
	}
	return nil
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	InvalidUserID.Code:        InvalidUserID,
	InvalidRequest.Code:       InvalidRequest,
	RateLimited.Code:          RateLimited,
	InvalidOrExpiredCode.Code: InvalidOrExpiredCode,
	OutsideOfficeRange.Code:   OutsideOfficeRange,
	AlreadyCheckedIn.Code:     AlreadyCheckedIn,
	AlreadyCheckedOut.Code:    AlreadyCheckedOut,
	NotCheckedIn.Code:         NotCheckedIn,
	NoActiveSchedule.Code:     NoActiveSchedule,
	ScheduleAmbiguous.Code:    ScheduleAmbiguous,
	NoOfficeConfig.Code:       NoOfficeConfig,
	ServiceUnavailable.Code:   ServiceUnavailable,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// Is 判断 err 是否为指定业务错误。
func Is(err error, def Definition) bool {
	switch e := err.(type) {
	case Definition:
		return e.Code == def.Code
	case *DetailedError:
		return e.Code == def.Code
	}
	return false
}

// AsDefinition 把 err 还原成业务错误定义，非业务错误返回 false。
func AsDefinition(err error) (Definition, bool) {
	switch e := err.(type) {
	case Definition:
		return e, true
	case *DetailedError:
		return e.Definition, true
	}
	return Definition{}, false
}
