package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestKeysetCursor(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	assert.Equal(t, want.ID, got.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = ParseCursor(EncodeOffsetCursor(10))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestOffsetCursor(t *testing.T) {
	got, err := ParseOffsetCursor(EncodeOffsetCursor(48))
	require.NoError(t, err)
	assert.Equal(t, 48, got)

	got, err = ParseOffsetCursor("")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = ParseOffsetCursor(EncodeCursor(Cursor{CreatedAt: time.Now(), ID: uuid.New()}))
	assert.ErrorIs(t, err, ErrInvalidCursor)
	_, err = ParseOffsetCursor(EncodeOffsetCursor(-1))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestBuild(t *testing.T) {
	next := func(last int) string { return EncodeOffsetCursor(last) }

	page := Build([]int{1, 2, 3}, 2, next)
	assert.Equal(t, []int{1, 2}, page.Items)
	offset, err := ParseOffsetCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, 2, offset)

	last := Build([]int{1, 2}, 2, next)
	assert.Empty(t, last.NextCursor)

	none := Build[int](nil, 5, next)
	assert.NotNil(t, none.Items)
	assert.Empty(t, none.Items)
}
