package utils

import (
	"regexp"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// ValidateCode 轮换码必须是 4 位数字（保留前导零）
func ValidateCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidateCoordinates 经纬度范围校验
func ValidateCoordinates(latitude, longitude float64) bool {
	if latitude < -90 || latitude > 90 {
		return false
	}
	if longitude < -180 || longitude > 180 {
		return false
	}
	return true
}
