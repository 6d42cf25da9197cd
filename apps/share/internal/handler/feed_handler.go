package handler

import (
	"ShareServer/apps/share/internal/dto"
	"ShareServer/apps/share/internal/middleware"
	"ShareServer/apps/share/internal/service"
	"ShareServer/consts"
	"ShareServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// FeedHandler Feed 处理器
type FeedHandler struct {
	feedService service.IFeedService
}

// NewFeedHandler 创建 Feed 处理器
func NewFeedHandler(feedService service.IFeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// ListFeed 获取个人 Feed 接口
// @Summary 我的 Feed
// @Description 游标分页读取预物化的个人 Feed（按动态创建时间新到旧）
// @Tags Feed接口
// @Accept json
// @Produce json
// @Param limit query int false "每页条数(1-100,默认20)"
// @Param after_cursor query string false "分页游标"
// @Router /api/v1/feed [get]
func (h *FeedHandler) ListFeed(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	var req dto.CursorPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeLimitOutOfRange)
		return
	}

	page, err := h.feedService.ListFeed(ctx, userUUID, req.AfterCursor, req.Limit)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeResourceNotFound)
		return
	}

	items := dto.ConvertFeedItemsFromModel(page.Items)
	result.Success(c, dto.NewCursorPageEnvelope(items, page.NextCursor))
}
