package handler

import (
	"context"
	"errors"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/apps/share/internal/service"
	"ShareServer/consts"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/pagination"
	"ShareServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// failWithError 统一的服务层错误到业务码映射。
// notFoundCode 由各接口指定（动态/邀请等资源各有错误码）。
func failWithError(c *gin.Context, ctx context.Context, err error, notFoundCode int32) {
	switch {
	case errors.Is(err, pagination.ErrInvalidCursor):
		result.Fail(c, nil, consts.CodeCursorInvalid)
	case errors.Is(err, pagination.ErrLimitOutOfRange):
		result.Fail(c, nil, consts.CodeLimitOutOfRange)
	case errors.Is(err, repository.ErrRecordNotFound):
		result.Fail(c, nil, notFoundCode)
	case errors.Is(err, service.ErrNotVisible):
		result.Fail(c, nil, consts.CodeUpdateNotVisible)
	case errors.Is(err, service.ErrSelfInvitation):
		result.Fail(c, nil, consts.CodeSelfInvitation)
	case errors.Is(err, service.ErrAlreadyFriend):
		result.Fail(c, nil, consts.CodeAlreadyFriend)
	case errors.Is(err, service.ErrInvitationExists):
		result.Fail(c, nil, consts.CodeInvitationSent)
	case errors.Is(err, service.ErrInvitationHandled):
		result.Fail(c, nil, consts.CodeInvitationHandled)
	default:
		logger.Error(ctx, "服务内部错误",
			logger.String("path", c.Request.URL.Path),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
	}
}
