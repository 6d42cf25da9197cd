package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.UnixMilli(1735689600123)
	raw := Encode(createdAt, "1234567890123456789")

	c, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, createdAt.UnixMilli(), c.CreatedAtMs)
	assert.Equal(t, "1234567890123456789", c.ID)
	assert.True(t, createdAt.Equal(c.CreatedAt()))
}

func TestDecodeEmptyCursor(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeInvalidCursor(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"非 base64", "!!!not-base64!!!"},
		{"非 JSON", "bm90LWpzb24"},           // "not-json"
		{"缺少字段", "eyJ0IjowLCJpZCI6IiJ9"}, // {"t":0,"id":""}
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Decode(tc.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCursor)
			assert.Nil(t, c)
		})
	}
}

func TestNewPageNextCursorHeuristic(t *testing.T) {
	type row struct {
		createdAt time.Time
		id        string
	}
	position := func(r row) (time.Time, string) { return r.createdAt, r.id }

	base := time.UnixMilli(1735689600000)
	rows := []row{
		{base.Add(3 * time.Second), "3"},
		{base.Add(2 * time.Second), "2"},
		{base.Add(1 * time.Second), "1"},
	}

	// 满页：给出 next_cursor，位置取最后一条
	full := NewPage(rows, 3, position)
	require.NotEmpty(t, full.NextCursor)
	c, err := Decode(full.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "1", c.ID)

	// 未满页：没有 next_cursor
	partial := NewPage(rows, 5, position)
	assert.Empty(t, partial.NextCursor)

	// 空结果：没有 next_cursor
	empty := NewPage([]row{}, 5, position)
	assert.Empty(t, empty.NextCursor)
	assert.Len(t, empty.Items, 0)
}

func TestNormalizeLimit(t *testing.T) {
	got, err := NormalizeLimit(0, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	got, err = NormalizeLimit(100, 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	_, err = NormalizeLimit(101, 20, 100)
	require.ErrorIs(t, err, ErrLimitOutOfRange)

	_, err = NormalizeLimit(-1, 20, 100)
	require.ErrorIs(t, err, ErrLimitOutOfRange)
}
