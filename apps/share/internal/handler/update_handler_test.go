package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ShareServer/apps/share/internal/repository"
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

type fakeUpdateHTTPService struct {
	createUpdateFn  func(context.Context, service.CreateUpdateParams) (*model.Update, error)
	shareUpdateFn   func(context.Context, string, string, []string, []string) error
	getUpdateFn     func(context.Context, string, string) (*model.Update, error)
	listMyUpdatesFn func(context.Context, string, string, int) (pagination.Page[*model.Update], error)
}

func (f *fakeUpdateHTTPService) CreateUpdate(ctx context.Context, params service.CreateUpdateParams) (*model.Update, error) {
	if f.createUpdateFn == nil {
		return &model.Update{}, nil
	}
	return f.createUpdateFn(ctx, params)
}

func (f *fakeUpdateHTTPService) ShareUpdate(ctx context.Context, userUUID, updateUUID string, friendUUIDs, groupUUIDs []string) error {
	if f.shareUpdateFn == nil {
		return nil
	}
	return f.shareUpdateFn(ctx, userUUID, updateUUID, friendUUIDs, groupUUIDs)
}

func (f *fakeUpdateHTTPService) GetUpdate(ctx context.Context, viewerUUID, updateUUID string) (*model.Update, error) {
	if f.getUpdateFn == nil {
		return &model.Update{}, nil
	}
	return f.getUpdateFn(ctx, viewerUUID, updateUUID)
}

func (f *fakeUpdateHTTPService) ListMyUpdates(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Update], error) {
	if f.listMyUpdatesFn == nil {
		return pagination.Page[*model.Update]{}, nil
	}
	return f.listMyUpdatesFn(ctx, userUUID, afterCursor, limit)
}

type handlerResultBody struct {
	Code int32           `json:"code"`
	Data json.RawMessage `json:"data"`
}

var handlerLoggerOnce sync.Once

func initHandlerTest() {
	handlerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func decodeHandlerBody(t *testing.T, w *httptest.ResponseRecorder) handlerResultBody {
	t.Helper()
	var body handlerResultBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// newHandlerContext 构造带登录用户的测试上下文
func newHandlerContext(t *testing.T, w *httptest.ResponseRecorder, method, target, body, userUUID string) *gin.Context {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userUUID != "" {
		c.Set("user_uuid", userUUID)
	}
	return c
}

func TestUpdateHandlerCreateUpdate(t *testing.T) {
	initHandlerTest()

	t.Run("bind_failed", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates", `{"content":""}`, "aaaa")

		h.CreateUpdate(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeParamError), decodeHandlerBody(t, w).Code)
	})

	t.Run("success", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			createUpdateFn: func(_ context.Context, params service.CreateUpdateParams) (*model.Update, error) {
				require.Equal(t, "aaaa", params.CreatorUUID)
				require.Equal(t, "今天很开心", params.Content)
				require.Equal(t, []string{"bbbb"}, params.FriendUUIDs)
				require.True(t, params.Broadcast)
				return &model.Update{
					UpdateUuid:  "up-1",
					CreatorUuid: params.CreatorUUID,
					Content:     params.Content,
					Broadcast:   true,
					CreatedAt:   time.Now(),
				}, nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates",
			`{"content":"今天很开心","friendUuids":["bbbb"],"broadcast":true}`, "aaaa")

		h.CreateUpdate(c)
		assert.Equal(t, http.StatusOK, w.Code)

		body := decodeHandlerBody(t, w)
		assert.Equal(t, int32(consts.CodeSuccess), body.Code)
		assert.Contains(t, string(body.Data), `"updateUuid":"up-1"`)
	})

	t.Run("internal_error", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			createUpdateFn: func(_ context.Context, _ service.CreateUpdateParams) (*model.Update, error) {
				return nil, errors.New("db down")
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates", `{"content":"hi"}`, "aaaa")

		h.CreateUpdate(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeInternalError), decodeHandlerBody(t, w).Code)
	})
}

func TestUpdateHandlerShareUpdate(t *testing.T) {
	initHandlerTest()

	t.Run("empty_target", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates/up-1/share", `{}`, "aaaa")
		c.Params = gin.Params{{Key: "updateUuid", Value: "up-1"}}

		h.ShareUpdate(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeShareTargetEmpty), decodeHandlerBody(t, w).Code)
	})

	t.Run("not_visible", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			shareUpdateFn: func(_ context.Context, _, _ string, _, _ []string) error {
				return service.ErrNotVisible
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates/up-1/share", `{"friendUuids":["cccc"]}`, "bbbb")
		c.Params = gin.Params{{Key: "updateUuid", Value: "up-1"}}

		h.ShareUpdate(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeUpdateNotVisible), decodeHandlerBody(t, w).Code)
	})

	t.Run("success", func(t *testing.T) {
		var gotUpdate string
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			shareUpdateFn: func(_ context.Context, userUUID, updateUUID string, friendUUIDs, _ []string) error {
				gotUpdate = updateUUID
				require.Equal(t, "aaaa", userUUID)
				require.Equal(t, []string{"cccc"}, friendUUIDs)
				return nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodPost, "/api/v1/updates/up-1/share", `{"friendUuids":["cccc"]}`, "aaaa")
		c.Params = gin.Params{{Key: "updateUuid", Value: "up-1"}}

		h.ShareUpdate(c)
		assert.Equal(t, int32(consts.CodeSuccess), decodeHandlerBody(t, w).Code)
		assert.Equal(t, "up-1", gotUpdate)
	})
}

func TestUpdateHandlerGetUpdate(t *testing.T) {
	initHandlerTest()

	tests := []struct {
		name     string
		err      error
		wantCode int32
	}{
		{name: "success", err: nil, wantCode: consts.CodeSuccess},
		{name: "not_found", err: repository.ErrRecordNotFound, wantCode: consts.CodeUpdateNotFound},
		{name: "not_visible", err: service.ErrNotVisible, wantCode: consts.CodeUpdateNotVisible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUpdateHandler(&fakeUpdateHTTPService{
				getUpdateFn: func(_ context.Context, viewerUUID, updateUUID string) (*model.Update, error) {
					require.Equal(t, "bbbb", viewerUUID)
					require.Equal(t, "up-1", updateUUID)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Update{UpdateUuid: "up-1"}, nil
				},
			}, nil)
			w := httptest.NewRecorder()
			c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates/up-1", "", "bbbb")
			c.Params = gin.Params{{Key: "updateUuid", Value: "up-1"}}

			h.GetUpdate(c)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantCode, decodeHandlerBody(t, w).Code)
		})
	}
}

func TestUpdateHandlerListMyUpdates(t *testing.T) {
	initHandlerTest()

	t.Run("limit_out_of_range", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates?limit=500", "", "aaaa")

		h.ListMyUpdates(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(consts.CodeLimitOutOfRange), decodeHandlerBody(t, w).Code)
	})

	t.Run("service_rejects_limit", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			listMyUpdatesFn: func(_ context.Context, _, _ string, _ int) (pagination.Page[*model.Update], error) {
				return pagination.Page[*model.Update]{}, pagination.ErrLimitOutOfRange
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates", "", "aaaa")

		h.ListMyUpdates(c)
		assert.Equal(t, int32(consts.CodeLimitOutOfRange), decodeHandlerBody(t, w).Code)
	})

	t.Run("invalid_cursor", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			listMyUpdatesFn: func(_ context.Context, _, _ string, _ int) (pagination.Page[*model.Update], error) {
				return pagination.Page[*model.Update]{}, pagination.ErrInvalidCursor
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates?after_cursor=%21%21", "", "aaaa")

		h.ListMyUpdates(c)
		assert.Equal(t, int32(consts.CodeCursorInvalid), decodeHandlerBody(t, w).Code)
	})

	t.Run("page_with_next_cursor", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			listMyUpdatesFn: func(_ context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Update], error) {
				require.Equal(t, "aaaa", userUUID)
				require.Equal(t, "", afterCursor)
				require.Equal(t, 2, limit)
				return pagination.Page[*model.Update]{
					Items: []*model.Update{
						{UpdateUuid: "up-2", CreatedAt: time.Now()},
						{UpdateUuid: "up-1", CreatedAt: time.Now().Add(-time.Minute)},
					},
					NextCursor: "cursor-next",
				}, nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates?limit=2", "", "aaaa")

		h.ListMyUpdates(c)
		body := decodeHandlerBody(t, w)
		assert.Equal(t, int32(consts.CodeSuccess), body.Code)

		var envelope struct {
			Items      []json.RawMessage `json:"items"`
			NextCursor *string           `json:"next_cursor"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &envelope))
		assert.Len(t, envelope.Items, 2)
		require.NotNil(t, envelope.NextCursor)
		assert.Equal(t, "cursor-next", *envelope.NextCursor)
	})

	t.Run("last_page_null_cursor", func(t *testing.T) {
		h := NewUpdateHandler(&fakeUpdateHTTPService{
			listMyUpdatesFn: func(_ context.Context, _, _ string, _ int) (pagination.Page[*model.Update], error) {
				return pagination.Page[*model.Update]{Items: nil, NextCursor: ""}, nil
			},
		}, nil)
		w := httptest.NewRecorder()
		c := newHandlerContext(t, w, http.MethodGet, "/api/v1/updates", "", "aaaa")

		h.ListMyUpdates(c)
		body := decodeHandlerBody(t, w)
		assert.Equal(t, int32(consts.CodeSuccess), body.Code)
		// 空页 items 序列化为 []，next_cursor 为 null
		assert.Contains(t, string(body.Data), `"items":[]`)
		assert.Contains(t, string(body.Data), `"next_cursor":null`)
	})
}
