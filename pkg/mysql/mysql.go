package mysql

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"ShareServer/config"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var global *gorm.DB

// DB 返回全局数据库句柄（未初始化时为 nil）。
func DB() *gorm.DB { return global }

// ReplaceGlobal 设置全局数据库句柄。
func ReplaceGlobal(db *gorm.DB) { global = db }

// Build 基于配置创建 gorm 句柄。
// - 配置了只读副本时通过 dbresolver 做读写分离（写走主库，读走副本）。
// - TranslateError 开启后唯一键冲突会映射为 gorm.ErrDuplicatedKey，供仓储层识别。
func Build(cfg config.MySQLConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("mysql dsn is empty")
	}

	db, err := gorm.Open(gormmysql.Open(cfg.DSN), &gorm.Config{
		Logger:         buildGormLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 读写分离
	if len(cfg.ReplicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaDSNs))
		for _, dsn := range cfg.ReplicaDSNs {
			replicas = append(replicas, gormmysql.Open(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// buildGormLogger 构建 gorm 内置日志（慢查询阈值来自配置）。
func buildGormLogger(cfg config.MySQLConfig) gormlogger.Interface {
	level := gormlogger.Warn
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		level = gormlogger.Silent
	case "error":
		level = gormlogger.Error
	case "info":
		level = gormlogger.Info
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}

	return gormlogger.New(log.New(os.Stdout, "", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true, // NotFound 由业务语义处理，不当错误刷日志
	})
}
