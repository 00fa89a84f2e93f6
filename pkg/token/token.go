package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"OnShift/config"
)

const (
	IdentityKey = "uid"
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
)

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})

	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// Generate 签发一个携带员工身份的 access token。
// 认证本身由外部系统负责，这里只保留兑换接口需要的最小签发能力（测试、内部工具用）。
func Generate(employeeID string) (string, error) {
	if sharedGenerator == nil {
		return "", fmt.Errorf("token generator not initialized")
	}

	now := time.Now()
	claims := jwtv5.MapClaims{
		IdentityKey: employeeID,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute).Unix(),
	}

	obj := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := obj.SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
