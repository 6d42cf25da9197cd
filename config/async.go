package config

import "time"

// AsyncConfig 协程池配置。
// 池承接 Feed 扇出与关系回填两类后台任务，不负责定时/调度。
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize"`                 // 协程池容量
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks"` // 最大阻塞任务数（0 表示不限制）
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration"`     // 空闲 worker 过期时间
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking"`           // 是否非阻塞提交
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout"`     // 优雅释放等待时间
}

// DefaultAsyncConfig 返回本地开发的默认配置。
// 扇出任务以分批 DB 写为主，单任务可能跑到分钟级，容量给足避免发布高峰排队；
// 释放等待放宽到单个写批次的量级，停机时尽量让进行中的批次落库。
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         512,
		MaxBlockingTasks: 0,
		ExpiryDuration:   30 * time.Second,
		Nonblocking:      false,
		ReleaseTimeout:   15 * time.Second,
	}
}
