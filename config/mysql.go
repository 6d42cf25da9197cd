package config

import "time"

// MySQLConfig MySQL 连接配置
type MySQLConfig struct {
	// 主库 DSN（写）
	DSN string `json:"dsn" yaml:"dsn"`
	// 只读副本 DSN 列表（为空时读写都走主库）
	ReplicaDSNs []string `json:"replicaDsns" yaml:"replicaDsns"`

	// 连接池配置
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`       // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`       // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"` // 连接最大存活时间

	// 行为配置
	SlowThreshold time.Duration `json:"slowThreshold" yaml:"slowThreshold"` // 慢查询阈值
	LogLevel      string        `json:"logLevel" yaml:"logLevel"`           // gorm 日志级别: silent/error/warn/info
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 docker-compose.yml 对齐）。
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		DSN:             "share:share@tcp(mysql:3306)/shareserver?charset=utf8mb4&parseTime=True&loc=Local",
		ReplicaDSNs:     nil,
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
		LogLevel:        "warn",
	}
}
