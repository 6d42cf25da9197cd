package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider 生成式文本后端。给定模板名与参数，返回结构化结果或失败。
// 上层（AI Flow 执行器）负责重试与兜底，Provider 只做一次调用。
type Provider interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Request 一次生成调用的输入。
type Request struct {
	Template string            // 提示词模板名
	Params   map[string]string // 模板参数
}

// Result 结构化生成结果。
type Result struct {
	Summary     string `json:"summary"`     // 关系摘要
	Suggestions string `json:"suggestions"` // 互动建议
}

// IsEmpty 判断结果是否为空（所有字段均为空白）。
func (r Result) IsEmpty() bool {
	return strings.TrimSpace(r.Summary) == "" && strings.TrimSpace(r.Suggestions) == ""
}

// ==================== 提示词模板 ====================

// TemplateRelationshipSummary 关系摘要折叠模板名
const TemplateRelationshipSummary = "relationship_summary"

// promptTemplates 模板名 -> 系统提示词。占位符形如 {{key}}，由 Params 填充。
var promptTemplates = map[string]string{
	TemplateRelationshipSummary: `你是一个社交应用的关系洞察助手。已有摘要与建议如下：
摘要：{{existing_summary}}
建议：{{existing_suggestions}}
请把这条新动态折叠进已有摘要（保留历史脉络，不超过 200 字），并更新互动建议：
动态内容：{{update_content}}
情绪：{{sentiment}} {{emoji}}
以 JSON 返回，字段为 summary 和 suggestions。`,
}

// RenderPrompt 渲染模板。未知模板名返回错误（属调用方编码错误，不做兜底）。
func RenderPrompt(template string, params map[string]string) (string, error) {
	tpl, ok := promptTemplates[template]
	if !ok {
		return "", fmt.Errorf("unknown prompt template: %s", template)
	}
	for key, val := range params {
		tpl = strings.ReplaceAll(tpl, "{{"+key+"}}", val)
	}
	return tpl, nil
}
