package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`                       // 监听地址
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`         // 读超时
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`       // 写超时
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"` // 优雅关闭等待时间

	// JWT 配置（认证中间件）
	JWTSecret string        `json:"jwtSecret" yaml:"jwtSecret"` // 签名密钥（生产从环境变量读取）
	JWTExpiry time.Duration `json:"jwtExpiry" yaml:"jwtExpiry"` // Token 有效期

	// 限流配置
	RateLimitCapacity int     `json:"rateLimitCapacity" yaml:"rateLimitCapacity"` // 令牌桶容量
	RateLimitPerSec   float64 `json:"rateLimitPerSec" yaml:"rateLimitPerSec"`     // 每秒令牌产生速率
}

// DefaultServerConfig 返回本地开发的默认配置。
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		JWTSecret:         "dev-secret-do-not-use-in-prod",
		JWTExpiry:         24 * time.Hour,
		RateLimitCapacity: 100,
		RateLimitPerSec:   50,
	}
}
