package config

import "time"

// AIFlowConfig 生成式摘要执行器配置。
// 重试参数对应执行器的有界重试语义：最多 MaxAttempts 次，间隔 AttemptDelay。
type AIFlowConfig struct {
	// 生成后端（OpenAI 兼容接口）
	BaseURL string        `json:"baseUrl" yaml:"baseUrl"` // 如: http://ollama:11434/v1
	APIKey  string        `json:"apiKey" yaml:"apiKey"`   // 鉴权密钥（从环境变量读取）
	Model   string        `json:"model" yaml:"model"`     // 模型名
	Timeout time.Duration `json:"timeout" yaml:"timeout"` // 单次调用超时

	// 重试配置
	MaxAttempts  int           `json:"maxAttempts" yaml:"maxAttempts"`   // 最大尝试次数
	AttemptDelay time.Duration `json:"attemptDelay" yaml:"attemptDelay"` // 相邻尝试间隔

	// 熔断配置（保护生成后端）
	BreakerMaxRequests uint32        `json:"breakerMaxRequests" yaml:"breakerMaxRequests"` // 半开状态允许的探测请求数
	BreakerInterval    time.Duration `json:"breakerInterval" yaml:"breakerInterval"`       // 闭合状态统计窗口
	BreakerTimeout     time.Duration `json:"breakerTimeout" yaml:"breakerTimeout"`         // 打开状态持续时间
}

// DefaultAIFlowConfig 返回本地开发的默认配置。
func DefaultAIFlowConfig() AIFlowConfig {
	return AIFlowConfig{
		BaseURL:            "http://ollama:11434/v1",
		APIKey:             "",
		Model:              "qwen2.5:7b",
		Timeout:            30 * time.Second,
		MaxAttempts:        3,
		AttemptDelay:       time.Second,
		BreakerMaxRequests: 3,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     30 * time.Second,
	}
}
