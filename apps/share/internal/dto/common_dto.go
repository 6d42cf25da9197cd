package dto

// ==================== 通用 DTO 定义 ====================

// CursorPageRequest 游标分页请求 DTO。
// limit 超出 1-100 由 binding 拒绝；缺省时服务层补默认值。
type CursorPageRequest struct {
	Limit       int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"` // 每页条数
	AfterCursor string `form:"after_cursor" json:"after_cursor"`                     // 不透明游标，空串表示第一页
}

// CursorPageEnvelope 游标分页响应外壳：{items, next_cursor|null}
type CursorPageEnvelope[T any] struct {
	Items      []T     `json:"items"`       // 本页条目
	NextCursor *string `json:"next_cursor"` // 下一页游标；没有更多时为 null
}

// NewCursorPageEnvelope 构造分页外壳（空游标序列化为 null）
func NewCursorPageEnvelope[T any](items []T, nextCursor string) *CursorPageEnvelope[T] {
	env := &CursorPageEnvelope[T]{Items: items}
	if env.Items == nil {
		env.Items = []T{}
	}
	if nextCursor != "" {
		env.NextCursor = &nextCursor
	}
	return env
}
