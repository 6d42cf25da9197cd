package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ShareServer/apps/share/internal/handler"
	"ShareServer/apps/share/internal/middleware"
	"ShareServer/apps/share/internal/service"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRouterUpdateService struct {
	createUpdateFn func(context.Context, service.CreateUpdateParams) (*model.Update, error)
	getUpdateFn    func(context.Context, string, string) (*model.Update, error)
}

func (f *fakeRouterUpdateService) CreateUpdate(ctx context.Context, params service.CreateUpdateParams) (*model.Update, error) {
	if f.createUpdateFn == nil {
		return &model.Update{}, nil
	}
	return f.createUpdateFn(ctx, params)
}

func (f *fakeRouterUpdateService) ShareUpdate(context.Context, string, string, []string, []string) error {
	return nil
}

func (f *fakeRouterUpdateService) GetUpdate(ctx context.Context, viewerUUID, updateUUID string) (*model.Update, error) {
	if f.getUpdateFn == nil {
		return &model.Update{}, nil
	}
	return f.getUpdateFn(ctx, viewerUUID, updateUUID)
}

func (f *fakeRouterUpdateService) ListMyUpdates(context.Context, string, string, int) (pagination.Page[*model.Update], error) {
	return pagination.Page[*model.Update]{}, nil
}

type fakeRouterFeedService struct {
	listFeedFn func(context.Context, string, string, int) (pagination.Page[*model.FeedEntry], error)
}

func (f *fakeRouterFeedService) ListFeed(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.FeedEntry], error) {
	if f.listFeedFn == nil {
		return pagination.Page[*model.FeedEntry]{}, nil
	}
	return f.listFeedFn(ctx, userUUID, afterCursor, limit)
}

type fakeRouterRelationService struct {
	inviteFn func(context.Context, string, string) (*model.Relationship, error)
}

func (f *fakeRouterRelationService) Invite(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	if f.inviteFn == nil {
		return &model.Relationship{}, nil
	}
	return f.inviteFn(ctx, sourceUUID, targetUUID)
}

func (f *fakeRouterRelationService) Accept(context.Context, string, string) (*model.Relationship, error) {
	return &model.Relationship{}, nil
}

func (f *fakeRouterRelationService) Reject(context.Context, string, string) error {
	return nil
}

func (f *fakeRouterRelationService) ListFriends(context.Context, string, string, int) (pagination.Page[*model.Relationship], error) {
	return pagination.Page[*model.Relationship]{}, nil
}

func (f *fakeRouterRelationService) ListInvitations(context.Context, string, string, int) (pagination.Page[*model.Relationship], error) {
	return pagination.Page[*model.Relationship]{}, nil
}

var routerTestOnce sync.Once

func initRouterTest() {
	routerTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
		middleware.InitJWT("router-test-secret", time.Hour)
	})
}

func buildTestRouter(updateSvc service.IUpdateService, feedSvc service.IFeedService, relationSvc service.IRelationService) *gin.Engine {
	return InitRouter(
		handler.NewUpdateHandler(updateSvc, nil),
		handler.NewFeedHandler(feedSvc),
		handler.NewRelationHandler(relationSvc, nil),
		nil,
	)
}

func mustAuthToken(t *testing.T, userUUID string) string {
	t.Helper()
	token, err := middleware.GenerateToken(userUUID)
	require.NoError(t, err)
	return token
}

func newRouterRequest(t *testing.T, method, target, body, token string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeRouterCode(t *testing.T, w *httptest.ResponseRecorder) int32 {
	t.Helper()
	var body struct {
		Code int32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestRouterHealthAndMetricsArePublic(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeRouterUpdateService{}, &fakeRouterFeedService{}, &fakeRouterRelationService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newRouterRequest(t, http.MethodGet, "/health", "", ""))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, newRouterRequest(t, http.MethodGet, "/metrics", "", ""))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRejectsUnauthenticated(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeRouterUpdateService{}, &fakeRouterFeedService{}, &fakeRouterRelationService{})

	targets := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/updates"},
		{http.MethodGet, "/api/v1/feed"},
		{http.MethodGet, "/api/v1/friends"},
		{http.MethodPost, "/api/v1/invitations"},
	}
	for _, tt := range targets {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newRouterRequest(t, tt.method, tt.target, "", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tt.target)
		assert.Equal(t, int32(consts.CodeUnauthorized), decodeRouterCode(t, w), tt.target)
	}
}

func TestRouterRejectsBadToken(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeRouterUpdateService{}, &fakeRouterFeedService{}, &fakeRouterRelationService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newRouterRequest(t, http.MethodGet, "/api/v1/feed", "", "not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int32(consts.CodeInvalidToken), decodeRouterCode(t, w))
}

func TestRouterCreateUpdateCarriesAuthedUser(t *testing.T) {
	initRouterTest()

	called := false
	r := buildTestRouter(&fakeRouterUpdateService{
		createUpdateFn: func(_ context.Context, params service.CreateUpdateParams) (*model.Update, error) {
			called = true
			require.Equal(t, "aaaa", params.CreatorUUID)
			require.Equal(t, "你好", params.Content)
			return &model.Update{UpdateUuid: "up-1", CreatorUuid: "aaaa", CreatedAt: time.Now()}, nil
		},
	}, &fakeRouterFeedService{}, &fakeRouterRelationService{})

	w := httptest.NewRecorder()
	req := newRouterRequest(t, http.MethodPost, "/api/v1/updates", `{"content":"你好"}`, mustAuthToken(t, "aaaa"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeRouterCode(t, w))
	assert.True(t, called)
}

func TestRouterFeedRoute(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeRouterUpdateService{}, &fakeRouterFeedService{
		listFeedFn: func(_ context.Context, userUUID, _ string, limit int) (pagination.Page[*model.FeedEntry], error) {
			require.Equal(t, "bbbb", userUUID)
			require.Equal(t, 5, limit)
			return pagination.Page[*model.FeedEntry]{
				Items: []*model.FeedEntry{{UpdateUuid: "up-1", UpdateCreatedAt: time.Now()}},
			}, nil
		},
	}, &fakeRouterRelationService{})

	w := httptest.NewRecorder()
	req := newRouterRequest(t, http.MethodGet, "/api/v1/feed?limit=5", "", mustAuthToken(t, "bbbb"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeRouterCode(t, w))
}

func TestRouterInviteRoute(t *testing.T) {
	initRouterTest()

	r := buildTestRouter(&fakeRouterUpdateService{}, &fakeRouterFeedService{}, &fakeRouterRelationService{
		inviteFn: func(_ context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
			require.Equal(t, "aaaa", sourceUUID)
			require.Equal(t, "bbbb", targetUUID)
			return &model.Relationship{SourceUuid: sourceUUID, TargetUuid: targetUUID}, nil
		},
	})

	w := httptest.NewRecorder()
	req := newRouterRequest(t, http.MethodPost, "/api/v1/invitations", `{"targetUuid":"bbbb"}`, mustAuthToken(t, "aaaa"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(consts.CodeSuccess), decodeRouterCode(t, w))
}
