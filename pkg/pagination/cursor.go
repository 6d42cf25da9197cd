package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCursor 游标解码失败（客户端可自行纠正的错误，不允许导致崩溃）。
var ErrInvalidCursor = errors.New("invalid cursor")

// ErrLimitOutOfRange 分页大小超出允许范围。
var ErrLimitOutOfRange = errors.New("limit out of range")

// Cursor 不透明游标的解码形态：一条记录在有序查询中的位置。
// 无状态，每次调用独立解码；按创建时间倒序 + id 倒序做稳定排序，
// 游标作为排他边界（严格小于）续接下一页。
// 编码是纯函数且与解码严格对称；不做防伪（不用于鉴权）。
type Cursor struct {
	CreatedAtMs int64  `json:"t"`  // 创建时间（毫秒）
	ID          string `json:"id"` // 同一毫秒内的次级排序键
}

// CreatedAt 返回游标位置的创建时间。
func (c *Cursor) CreatedAt() time.Time {
	return time.UnixMilli(c.CreatedAtMs)
}

// Encode 将排序位置编码为不透明游标。
func Encode(createdAt time.Time, id string) string {
	raw, _ := json.Marshal(Cursor{
		CreatedAtMs: createdAt.UnixMilli(),
		ID:          id,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode 解码游标。空串表示首页，返回 (nil, nil)。
// 任何解码失败都映射到 ErrInvalidCursor。
func Decode(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.CreatedAtMs <= 0 || c.ID == "" {
		return nil, fmt.Errorf("%w: missing position fields", ErrInvalidCursor)
	}

	return &c, nil
}

// ==================== 分页结果 ====================

// Page 一页结果。NextCursor 为空串表示没有更多（包括空结果）。
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor"`
}

// NewPage 构造分页结果。
// 仅当返回条数恰好等于 limit 时给出 next_cursor（"可能还有更多"的启发式），
// position 从最后一条记录提取排序位置。
func NewPage[T any](items []T, limit int, position func(T) (time.Time, string)) Page[T] {
	page := Page[T]{Items: items}
	if limit > 0 && len(items) == limit {
		createdAt, id := position(items[len(items)-1])
		page.NextCursor = Encode(createdAt, id)
	}
	return page
}

// NormalizeLimit 校验分页大小：0 取默认值，超出 [1, max] 返回错误。
func NormalizeLimit(limit, def, max int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > max {
		return 0, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrLimitOutOfRange, max, limit)
	}
	return limit, nil
}
