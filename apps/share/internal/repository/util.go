package repository

import (
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ==================== ID 生成 ====================

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// InitIDGenerator 初始化雪花 ID 节点（进程启动时调用一次）。
func InitIDGenerator(nodeID int64) error {
	var err error
	idNodeOnce.Do(func() {
		idNode, err = snowflake.NewNode(nodeID)
	})
	return err
}

// NewEntityUUID 生成新的实体 uuid（19 位数字串，适配 char(20) 列）。
func NewEntityUUID() string {
	return idNode.Generate().String()
}

// ==================== JSON 列辅助 ====================

// marshalStringList 序列化字符串列表到 JSON 列；失败兜底为空数组。
func marshalStringList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalStringList 解析 JSON 列为字符串列表；解析失败返回空列表。
func unmarshalStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// ==================== 缓存辅助 ====================

func isRedisWrongType(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "WRONGTYPE")
}

// getRandomExpireTime 生成带随机抖动的过期时间
// baseExpire: 基础过期时间
// 返回: 基础过期时间 ± 10% 的随机时间
func getRandomExpireTime(baseExpire time.Duration) time.Duration {
	jitterRange := float64(baseExpire) * 0.1
	jitter := time.Duration(rand.Float64()*float64(jitterRange)*2 - float64(jitterRange))

	return baseExpire + jitter
}

// getRandomBool 生成随机布尔值
// probability: 概率
func getRandomBool(probability float64) bool {
	return rand.Float64() < probability
}
