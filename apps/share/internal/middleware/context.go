package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// NewContextWithGin 从 gin.Context 创建携带 trace_id、user_uuid、client_ip 的 context.Context，
// 用于把请求上下文传递给服务层与日志系统
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceId, exists := c.Get("trace_id"); exists {
		ctx = context.WithValue(ctx, "trace_id", traceId)
	}
	if userUUID, exists := c.Get("user_uuid"); exists {
		ctx = context.WithValue(ctx, "user_uuid", userUUID)
	}
	if clientIP, exists := c.Get("client_ip"); exists {
		ctx = context.WithValue(ctx, "client_ip", clientIP)
	}
	return ctx
}
