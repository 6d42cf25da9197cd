package repository

import (
	"strconv"
	"testing"

	"ShareServer/consts"
	"ShareServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFeedEntries(n int) []*model.FeedEntry {
	out := make([]*model.FeedEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.FeedEntry{
			RecipientUuid: "r-" + strconv.Itoa(i),
			UpdateUuid:    "up-1",
		})
	}
	return out
}

func TestChunkFeedEntries(t *testing.T) {
	t.Run("600_entries_split_500_plus_100", func(t *testing.T) {
		chunks := chunkFeedEntries(makeFeedEntries(600), consts.MaxBatchWriteOps)
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0], 500)
		assert.Len(t, chunks[1], 100)
	})

	t.Run("exactly_one_batch", func(t *testing.T) {
		chunks := chunkFeedEntries(makeFeedEntries(consts.MaxBatchWriteOps), consts.MaxBatchWriteOps)
		require.Len(t, chunks, 1)
		assert.Len(t, chunks[0], consts.MaxBatchWriteOps)
	})

	t.Run("one_over_boundary", func(t *testing.T) {
		chunks := chunkFeedEntries(makeFeedEntries(consts.MaxBatchWriteOps+1), consts.MaxBatchWriteOps)
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0], consts.MaxBatchWriteOps)
		assert.Len(t, chunks[1], 1)
	})

	t.Run("single_entry", func(t *testing.T) {
		chunks := chunkFeedEntries(makeFeedEntries(1), consts.MaxBatchWriteOps)
		require.Len(t, chunks, 1)
		assert.Len(t, chunks[0], 1)
	})

	t.Run("empty_input", func(t *testing.T) {
		assert.Nil(t, chunkFeedEntries(nil, consts.MaxBatchWriteOps))
		assert.Nil(t, chunkFeedEntries([]*model.FeedEntry{}, consts.MaxBatchWriteOps))
	})

	t.Run("order_preserved_across_chunks", func(t *testing.T) {
		entries := makeFeedEntries(7)
		chunks := chunkFeedEntries(entries, 3)
		require.Len(t, chunks, 3)

		i := 0
		for _, chunk := range chunks {
			for _, e := range chunk {
				assert.Same(t, entries[i], e)
				i++
			}
		}
		assert.Equal(t, len(entries), i)
	})
}
