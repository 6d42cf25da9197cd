package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ShareServer/model"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var feedLoggerOnce sync.Once

func initFeedTestLogger() {
	feedLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// fixedFeedDataset 固定数据集上模拟仓储的游标查询语义
func fixedFeedDataset(n int) []*model.FeedEntry {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*model.FeedEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.FeedEntry{
			RecipientUuid:   "alice",
			UpdateUuid:      string(rune('a' + n - 1 - i)),
			UpdateCreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestListFeed_PagingIsComplete(t *testing.T) {
	initFeedTestLogger()

	dataset := fixedFeedDataset(7)
	feedRepo := &fakeFeedRepoForService{
		listFeedFn: func(_ context.Context, _ string, cur *pagination.Cursor, limit int) ([]*model.FeedEntry, error) {
			start := 0
			if cur != nil {
				for i, e := range dataset {
					if e.UpdateCreatedAt.Equal(cur.CreatedAt()) && e.UpdateUuid == cur.ID {
						start = i + 1
						break
					}
				}
			}
			end := start + limit
			if end > len(dataset) {
				end = len(dataset)
			}
			return dataset[start:end], nil
		},
	}
	svc := NewFeedService(feedRepo)

	// 逐页跟随 next_cursor，拼接结果应与完整数据集一致
	var collected []*model.FeedEntry
	cursor := ""
	for {
		page, err := svc.ListFeed(context.Background(), "alice", cursor, 3)
		require.NoError(t, err)
		collected = append(collected, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, collected, len(dataset))
	for i, e := range collected {
		assert.Equal(t, dataset[i].UpdateUuid, e.UpdateUuid)
	}
}

func TestListFeed_EmptyResultHasNoCursor(t *testing.T) {
	initFeedTestLogger()

	svc := NewFeedService(&fakeFeedRepoForService{})
	page, err := svc.ListFeed(context.Background(), "alice", "", 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}

func TestListFeed_InvalidCursor(t *testing.T) {
	initFeedTestLogger()

	svc := NewFeedService(&fakeFeedRepoForService{})
	_, err := svc.ListFeed(context.Background(), "alice", "!!!", 20)
	assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
}

func TestListFeed_LimitOutOfRange(t *testing.T) {
	initFeedTestLogger()

	repoCalled := false
	gotLimit := 0
	feedRepo := &fakeFeedRepoForService{
		listFeedFn: func(_ context.Context, _ string, _ *pagination.Cursor, limit int) ([]*model.FeedEntry, error) {
			repoCalled = true
			gotLimit = limit
			return nil, nil
		},
	}
	svc := NewFeedService(feedRepo)

	// 超限与负数在进仓储前被拒绝
	_, err := svc.ListFeed(context.Background(), "alice", "", 101)
	assert.ErrorIs(t, err, pagination.ErrLimitOutOfRange)
	_, err = svc.ListFeed(context.Background(), "alice", "", -1)
	assert.ErrorIs(t, err, pagination.ErrLimitOutOfRange)
	assert.False(t, repoCalled)

	// 0 取默认值
	_, err = svc.ListFeed(context.Background(), "alice", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
}
