package service

import (
	"context"
	"strings"
	"time"

	"ShareServer/config"
	"ShareServer/model"
	"ShareServer/pkg/llm"
	"ShareServer/pkg/logger"
)

// placeholderSentinels 首次使用时的空态文案。发给生成后端前剥掉（表示"无历史上下文"），
// 但失败兜底仍用剥离前的原值——剥离只影响发送内容，不影响返回内容。
var placeholderSentinels = map[string]struct{}{
	"你们刚刚成为好友，还没有互动摘要。":  {},
	"多发几条动态，让 TA 更了解你吧。": {},
	"No summary yet.":    {},
	"No suggestion yet.": {},
}

// aiflowServiceImpl 生成式摘要执行器实现
type aiflowServiceImpl struct {
	provider     llm.Provider
	maxAttempts  int
	attemptDelay time.Duration
	sleep        func(time.Duration) // 测试时可替换
}

// NewAIFlowService 创建摘要执行器实例
func NewAIFlowService(provider llm.Provider, cfg config.AIFlowConfig) IAIFlowService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &aiflowServiceImpl{
		provider:     provider,
		maxAttempts:  maxAttempts,
		attemptDelay: cfg.AttemptDelay,
		sleep:        time.Sleep,
	}
}

// FoldSummary 最多尝试 maxAttempts 次，首个非空结构化结果立即返回。
// 全部失败或全空时返回 existing；部分字段为空时按字段回填 existing 对应值，
// 保证部分成功不会抹掉已存的非空内容。
func (s *aiflowServiceImpl) FoldSummary(ctx context.Context, existing SummaryPair, update *model.Update) SummaryPair {
	req := llm.Request{
		Template: llm.TemplateRelationshipSummary,
		Params: map[string]string{
			"existing_summary":     stripPlaceholder(existing.Summary),
			"existing_suggestions": stripPlaceholder(existing.Suggestions),
			"update_content":       update.Content,
			"sentiment":            update.Sentiment,
			"emoji":                update.Emoji,
		},
	}

	var result llm.Result
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		got, err := s.provider.Generate(ctx, req)
		if err == nil && !got.IsEmpty() {
			result = got
			break
		}

		logger.Warn(ctx, "生成调用失败，准备重试",
			logger.String("update_uuid", update.UpdateUuid),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", s.maxAttempts),
			logger.ErrorField("error", err),
		)
		if attempt < s.maxAttempts {
			s.sleep(s.attemptDelay)
		}
	}

	if result.IsEmpty() {
		logger.Warn(ctx, "生成全部失败，沿用已有摘要",
			logger.String("update_uuid", update.UpdateUuid),
		)
		return existing
	}

	// 按字段合并：空白输出字段回填调用前的原值
	merged := SummaryPair{
		Summary:     result.Summary,
		Suggestions: result.Suggestions,
	}
	if strings.TrimSpace(merged.Summary) == "" {
		merged.Summary = existing.Summary
	}
	if strings.TrimSpace(merged.Suggestions) == "" {
		merged.Suggestions = existing.Suggestions
	}
	return merged
}

// stripPlaceholder 空态文案视为无历史上下文
func stripPlaceholder(value string) string {
	if _, ok := placeholderSentinels[strings.TrimSpace(value)]; ok {
		return ""
	}
	return value
}
