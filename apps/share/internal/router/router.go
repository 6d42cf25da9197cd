package router

import (
	"ShareServer/apps/share/internal/handler"
	"ShareServer/apps/share/internal/middleware"
	"ShareServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter 初始化路由（处理器与限流器依赖注入）
func InitRouter(
	updateHandler *handler.UpdateHandler,
	feedHandler *handler.FeedHandler,
	relationHandler *handler.RelationHandler,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// IP 限流中间件
	if rateLimiter != nil {
		r.Use(middleware.IPRateLimitMiddleware(rateLimiter))
	}

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组（全部需要认证）
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	{
		// 动态相关接口
		updates := api.Group("/updates")
		{
			updates.POST("", updateHandler.CreateUpdate)
			updates.GET("", updateHandler.ListMyUpdates)
			updates.GET("/:updateUuid", updateHandler.GetUpdate)
			updates.POST("/:updateUuid/share", updateHandler.ShareUpdate)
		}

		// Feed 接口
		api.GET("/feed", feedHandler.ListFeed)

		// 好友关系接口
		invitations := api.Group("/invitations")
		{
			invitations.POST("", relationHandler.Invite)
			invitations.GET("", relationHandler.ListInvitations)
			invitations.POST("/:sourceUuid/accept", relationHandler.Accept)
			invitations.POST("/:sourceUuid/reject", relationHandler.Reject)
		}
		api.GET("/friends", relationHandler.ListFriends)
	}

	return r
}
