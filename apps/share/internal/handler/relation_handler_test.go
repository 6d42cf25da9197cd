package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/apps/share/internal/service"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelationHTTPService struct {
	inviteFn          func(context.Context, string, string) (*model.Relationship, error)
	acceptFn          func(context.Context, string, string) (*model.Relationship, error)
	rejectFn          func(context.Context, string, string) error
	listFriendsFn     func(context.Context, string, string, int) (pagination.Page[*model.Relationship], error)
	listInvitationsFn func(context.Context, string, string, int) (pagination.Page[*model.Relationship], error)
}

func (f *fakeRelationHTTPService) Invite(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	if f.inviteFn == nil {
		return &model.Relationship{}, nil
	}
	return f.inviteFn(ctx, sourceUUID, targetUUID)
}

func (f *fakeRelationHTTPService) Accept(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	if f.acceptFn == nil {
		return &model.Relationship{}, nil
	}
	return f.acceptFn(ctx, sourceUUID, targetUUID)
}

func (f *fakeRelationHTTPService) Reject(ctx context.Context, sourceUUID, targetUUID string) error {
	if f.rejectFn == nil {
		return nil
	}
	return f.rejectFn(ctx, sourceUUID, targetUUID)
}

func (f *fakeRelationHTTPService) ListFriends(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error) {
	if f.listFriendsFn == nil {
		return pagination.Page[*model.Relationship]{}, nil
	}
	return f.listFriendsFn(ctx, userUUID, afterCursor, limit)
}

func (f *fakeRelationHTTPService) ListInvitations(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error) {
	if f.listInvitationsFn == nil {
		return pagination.Page[*model.Relationship]{}, nil
	}
	return f.listInvitationsFn(ctx, userUUID, afterCursor, limit)
}

func TestRelationHandlerInvite(t *testing.T) {
	initHandlerTest()

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int32
	}{
		{name: "success", body: `{"targetUuid":"bbbb"}`, wantCode: consts.CodeSuccess},
		{name: "bind_failed", body: `{}`, wantCode: consts.CodeParamError},
		{name: "self_invitation", body: `{"targetUuid":"bbbb"}`, err: service.ErrSelfInvitation, wantCode: consts.CodeSelfInvitation},
		{name: "already_friend", body: `{"targetUuid":"bbbb"}`, err: service.ErrAlreadyFriend, wantCode: consts.CodeAlreadyFriend},
		{name: "invitation_exists", body: `{"targetUuid":"bbbb"}`, err: service.ErrInvitationExists, wantCode: consts.CodeInvitationSent},
		{name: "target_not_found", body: `{"targetUuid":"bbbb"}`, err: repository.ErrRecordNotFound, wantCode: consts.CodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRelationHandler(&fakeRelationHTTPService{
				inviteFn: func(_ context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
					require.Equal(t, "aaaa", sourceUUID)
					require.Equal(t, "bbbb", targetUUID)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Relationship{
						PairKey:    model.PairKey(sourceUUID, targetUUID),
						SourceUuid: sourceUUID,
						TargetUuid: targetUUID,
						Status:     consts.RelationPending,
					}, nil
				},
			}, nil)
			w := httptest.NewRecorder()
			c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations", tt.body, "aaaa")

			h.Invite(c)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantCode, decodeHandlerBody(t, w).Code)
		})
	}
}

func TestRelationHandlerAccept(t *testing.T) {
	initHandlerTest()

	t.Run("missing_path_param", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations//accept", "", "bbbb")

		h.Accept(c)
		assert.Equal(t, int32(consts.CodeParamError), decodeHandlerBody(t, w).Code)
	})

	t.Run("success_target_is_authed_user", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			acceptFn: func(_ context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
				// 路径里的 sourceUuid 是邀请发起方，接受方是当前登录用户
				require.Equal(t, "aaaa", sourceUUID)
				require.Equal(t, "bbbb", targetUUID)
				return &model.Relationship{
					SourceUuid: sourceUUID,
					TargetUuid: targetUUID,
					Status:     consts.RelationAccepted,
					UpdatedAt:  time.Now(),
				}, nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations/aaaa/accept", "", "bbbb")
		c.Params = gin.Params{{Key: "sourceUuid", Value: "aaaa"}}

		h.Accept(c)
		assert.Equal(t, int32(consts.CodeSuccess), decodeHandlerBody(t, w).Code)
	})

	t.Run("invitation_not_found", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			acceptFn: func(_ context.Context, _, _ string) (*model.Relationship, error) {
				return nil, repository.ErrRecordNotFound
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations/aaaa/accept", "", "bbbb")
		c.Params = gin.Params{{Key: "sourceUuid", Value: "aaaa"}}

		h.Accept(c)
		assert.Equal(t, int32(consts.CodeInvitationNotFound), decodeHandlerBody(t, w).Code)
	})

	t.Run("already_handled", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			acceptFn: func(_ context.Context, _, _ string) (*model.Relationship, error) {
				return nil, service.ErrInvitationHandled
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations/aaaa/accept", "", "bbbb")
		c.Params = gin.Params{{Key: "sourceUuid", Value: "aaaa"}}

		h.Accept(c)
		assert.Equal(t, int32(consts.CodeInvitationHandled), decodeHandlerBody(t, w).Code)
	})
}

func TestRelationHandlerReject(t *testing.T) {
	initHandlerTest()

	t.Run("success", func(t *testing.T) {
		called := false
		h := NewRelationHandler(&fakeRelationHTTPService{
			rejectFn: func(_ context.Context, sourceUUID, targetUUID string) error {
				called = true
				require.Equal(t, "aaaa", sourceUUID)
				require.Equal(t, "bbbb", targetUUID)
				return nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations/aaaa/reject", "", "bbbb")
		c.Params = gin.Params{{Key: "sourceUuid", Value: "aaaa"}}

		h.Reject(c)
		assert.Equal(t, int32(consts.CodeSuccess), decodeHandlerBody(t, w).Code)
		assert.True(t, called)
	})

	t.Run("already_handled", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			rejectFn: func(_ context.Context, _, _ string) error {
				return service.ErrInvitationHandled
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/invitations/aaaa/reject", "", "bbbb")
		c.Params = gin.Params{{Key: "sourceUuid", Value: "aaaa"}}

		h.Reject(c)
		assert.Equal(t, int32(consts.CodeInvitationHandled), decodeHandlerBody(t, w).Code)
	})
}

func TestRelationHandlerListFriends(t *testing.T) {
	initHandlerTest()

	t.Run("success_with_cursor", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			listFriendsFn: func(_ context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error) {
				require.Equal(t, "aaaa", userUUID)
				require.Equal(t, "c-1", afterCursor)
				require.Equal(t, 10, limit)
				return pagination.Page[*model.Relationship]{
					Items: []*model.Relationship{
						{SourceUuid: "aaaa", TargetUuid: "bbbb", Status: consts.RelationAccepted},
					},
				}, nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/friends?limit=10&after_cursor=c-1", "", "aaaa")

		h.ListFriends(c)
		body := decodeHandlerBody(t, w)
		assert.Equal(t, int32(consts.CodeSuccess), body.Code)
		assert.Contains(t, string(body.Data), `"next_cursor":null`)
	})

	t.Run("invalid_cursor", func(t *testing.T) {
		h := NewRelationHandler(&fakeRelationHTTPService{
			listFriendsFn: func(_ context.Context, _, _ string, _ int) (pagination.Page[*model.Relationship], error) {
				return pagination.Page[*model.Relationship]{}, pagination.ErrInvalidCursor
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/friends?after_cursor=bad", "", "aaaa")

		h.ListFriends(c)
		assert.Equal(t, int32(consts.CodeCursorInvalid), decodeHandlerBody(t, w).Code)
	})
}

func TestRelationHandlerListInvitations(t *testing.T) {
	initHandlerTest()

	h := NewRelationHandler(&fakeRelationHTTPService{
		listInvitationsFn: func(_ context.Context, userUUID, _ string, _ int) (pagination.Page[*model.Relationship], error) {
			require.Equal(t, "bbbb", userUUID)
			return pagination.Page[*model.Relationship]{
				Items: []*model.Relationship{
					{SourceUuid: "aaaa", TargetUuid: "bbbb", Status: consts.RelationPending, SourceDisplayName: "阿张"},
				},
				NextCursor: "c-2",
			}, nil
		},
	}, nil)
	w := httptest.NewRecorder()
	c := newHandlerContext(t, w, http.MethodGet, "/api/v1/invitations", "", "bbbb")

	h.ListInvitations(c)
	body := decodeHandlerBody(t, w)
	assert.Equal(t, int32(consts.CodeSuccess), body.Code)
	assert.Contains(t, string(body.Data), `"next_cursor":"c-2"`)
	assert.Contains(t, string(body.Data), "阿张")
}
