package handler

import (
	"ShareServer/apps/share/internal/dto"
	"ShareServer/apps/share/internal/middleware"
	"ShareServer/apps/share/internal/service"
	"ShareServer/consts"
	pkgminio "ShareServer/pkg/minio"
	"ShareServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// UpdateHandler 动态处理器
type UpdateHandler struct {
	updateService service.IUpdateService
	minioClient   *pkgminio.MinIOClient
}

// NewUpdateHandler 创建动态处理器
func NewUpdateHandler(updateService service.IUpdateService, minioClient *pkgminio.MinIOClient) *UpdateHandler {
	return &UpdateHandler{
		updateService: updateService,
		minioClient:   minioClient,
	}
}

// CreateUpdate 发布动态接口
// @Summary 发布动态
// @Description 创建动态并异步扇出到接收者 Feed
// @Tags 动态接口
// @Accept json
// @Produce json
// @Success 200 {object} dto.CreateUpdateResponse
// @Router /api/v1/updates [post]
func (h *UpdateHandler) CreateUpdate(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	// 1. 解析请求
	var req dto.CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层
	update, err := h.updateService.CreateUpdate(ctx, service.CreateUpdateParams{
		CreatorUUID:    userUUID,
		Content:        req.Content,
		Sentiment:      req.Sentiment,
		SentimentScore: req.SentimentScore,
		Emoji:          req.Emoji,
		FriendUUIDs:    req.FriendUuids,
		GroupUUIDs:     req.GroupUuids,
		Broadcast:      req.Broadcast,
		ImageKeys:      req.ImageKeys,
	})
	if err != nil {
		failWithError(c, ctx, err, consts.CodeUpdateCreateFail)
		return
	}

	// 3. 返回成功响应
	result.Success(c, &dto.CreateUpdateResponse{
		Update: dto.ConvertUpdateItemFromModel(update, h.imageResolver(c)),
	})
}

// ShareUpdate 追加分享接口
// @Summary 追加分享
// @Description 把已有动态追加分享给新的好友或圈子（只增不减）
// @Tags 动态接口
// @Accept json
// @Produce json
// @Param updateUuid path string true "动态UUID"
// @Router /api/v1/updates/{updateUuid}/share [post]
func (h *UpdateHandler) ShareUpdate(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	updateUUID := c.Param("updateUuid")
	if updateUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	var req dto.ShareUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	if len(req.FriendUuids) == 0 && len(req.GroupUuids) == 0 {
		result.Fail(c, nil, consts.CodeShareTargetEmpty)
		return
	}

	if err := h.updateService.ShareUpdate(ctx, userUUID, updateUUID, req.FriendUuids, req.GroupUuids); err != nil {
		failWithError(c, ctx, err, consts.CodeUpdateNotFound)
		return
	}

	result.Success(c, nil)
}

// GetUpdate 获取动态详情接口
// @Summary 获取动态详情
// @Description 获取单条动态，需持有任一可见性令牌
// @Tags 动态接口
// @Accept json
// @Produce json
// @Param updateUuid path string true "动态UUID"
// @Success 200 {object} dto.UpdateItem
// @Router /api/v1/updates/{updateUuid} [get]
func (h *UpdateHandler) GetUpdate(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	updateUUID := c.Param("updateUuid")
	if updateUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	update, err := h.updateService.GetUpdate(ctx, userUUID, updateUUID)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeUpdateNotFound)
		return
	}

	result.Success(c, dto.ConvertUpdateItemFromModel(update, h.imageResolver(c)))
}

// ListMyUpdates 获取自己的动态列表接口
// @Summary 我的动态列表
// @Description 游标分页列出自己发布的动态（新到旧）
// @Tags 动态接口
// @Accept json
// @Produce json
// @Param limit query int false "每页条数(1-100,默认20)"
// @Param after_cursor query string false "分页游标"
// @Router /api/v1/updates [get]
func (h *UpdateHandler) ListMyUpdates(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	var req dto.CursorPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeLimitOutOfRange)
		return
	}

	page, err := h.updateService.ListMyUpdates(ctx, userUUID, req.AfterCursor, req.Limit)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeUpdateNotFound)
		return
	}

	items := dto.ConvertUpdateItemsFromModel(page.Items, h.imageResolver(c))
	result.Success(c, dto.NewCursorPageEnvelope(items, page.NextCursor))
}

// imageResolver 构造图片对象键到预签名 URL 的解析函数（MinIO 未配置时返回 nil）
func (h *UpdateHandler) imageResolver(c *gin.Context) func([]string) []string {
	if h.minioClient == nil {
		return nil
	}
	ctx := middleware.NewContextWithGin(c)
	return func(keys []string) []string {
		return h.minioClient.PresignGetURLs(ctx, keys)
	}
}
