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

// RelationHandler 好友关系处理器
type RelationHandler struct {
	relationService service.IRelationService
	minioClient     *pkgminio.MinIOClient
}

// NewRelationHandler 创建好友关系处理器
func NewRelationHandler(relationService service.IRelationService, minioClient *pkgminio.MinIOClient) *RelationHandler {
	return &RelationHandler{
		relationService: relationService,
		minioClient:     minioClient,
	}
}

// Invite 发起好友邀请接口
// @Summary 发起好友邀请
// @Description 向目标用户发起好友邀请（pending 状态）
// @Tags 好友接口
// @Accept json
// @Produce json
// @Router /api/v1/invitations [post]
func (h *RelationHandler) Invite(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	// 1. 解析请求
	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 创建邀请（目标用户不存在时按资源不存在处理）
	relation, err := h.relationService.Invite(ctx, userUUID, req.TargetUuid)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeResourceNotFound)
		return
	}

	// 3. 返回成功响应
	result.Success(c, dto.ConvertRelationItemFromModel(relation, h.avatarResolver(c)))
}

// Accept 接受好友邀请接口
// @Summary 接受好友邀请
// @Description 接受来自 sourceUuid 的邀请；成功后触发双向历史回填
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param sourceUuid path string true "邀请发起方UUID"
// @Router /api/v1/invitations/{sourceUuid}/accept [post]
func (h *RelationHandler) Accept(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	sourceUUID := c.Param("sourceUuid")
	if sourceUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	relation, err := h.relationService.Accept(ctx, sourceUUID, userUUID)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeInvitationNotFound)
		return
	}

	result.Success(c, dto.ConvertRelationItemFromModel(relation, h.avatarResolver(c)))
}

// Reject 拒绝好友邀请接口
// @Summary 拒绝好友邀请
// @Description 拒绝来自 sourceUuid 的邀请（终态，不可再接受）
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param sourceUuid path string true "邀请发起方UUID"
// @Router /api/v1/invitations/{sourceUuid}/reject [post]
func (h *RelationHandler) Reject(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	sourceUUID := c.Param("sourceUuid")
	if sourceUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.relationService.Reject(ctx, sourceUUID, userUUID); err != nil {
		failWithError(c, ctx, err, consts.CodeInvitationNotFound)
		return
	}

	result.Success(c, nil)
}

// ListFriends 获取好友列表接口
// @Summary 好友列表
// @Description 游标分页列出已接受的好友关系
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param limit query int false "每页条数(1-100,默认20)"
// @Param after_cursor query string false "分页游标"
// @Router /api/v1/friends [get]
func (h *RelationHandler) ListFriends(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	var req dto.CursorPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeLimitOutOfRange)
		return
	}

	page, err := h.relationService.ListFriends(ctx, userUUID, req.AfterCursor, req.Limit)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeResourceNotFound)
		return
	}

	items := dto.ConvertRelationItemsFromModel(page.Items, h.avatarResolver(c))
	result.Success(c, dto.NewCursorPageEnvelope(items, page.NextCursor))
}

// ListInvitations 获取待处理邀请接口
// @Summary 待处理邀请列表
// @Description 游标分页列出自己收到的 pending 邀请
// @Tags 好友接口
// @Accept json
// @Produce json
// @Param limit query int false "每页条数(1-100,默认20)"
// @Param after_cursor query string false "分页游标"
// @Router /api/v1/invitations [get]
func (h *RelationHandler) ListInvitations(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	var req dto.CursorPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeLimitOutOfRange)
		return
	}

	page, err := h.relationService.ListInvitations(ctx, userUUID, req.AfterCursor, req.Limit)
	if err != nil {
		failWithError(c, ctx, err, consts.CodeResourceNotFound)
		return
	}

	items := dto.ConvertRelationItemsFromModel(page.Items, h.avatarResolver(c))
	result.Success(c, dto.NewCursorPageEnvelope(items, page.NextCursor))
}

// avatarResolver 构造头像对象键到预签名 URL 的解析函数（MinIO 未配置时返回 nil）
func (h *RelationHandler) avatarResolver(c *gin.Context) func(string) string {
	if h.minioClient == nil {
		return nil
	}
	ctx := middleware.NewContextWithGin(c)
	return func(key string) string {
		if key == "" {
			return ""
		}
		url, err := h.minioClient.PresignGetURL(ctx, key)
		if err != nil {
			return ""
		}
		return url
	}
}
