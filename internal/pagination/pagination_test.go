package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{SortKey: time.Date(2025, 9, 15, 10, 0, 0, 123, time.UTC), ID: "0199-a"}
	decoded, err := Decode(c.Encode())
	require.NoError(t, err)
	assert.True(t, c.SortKey.Equal(decoded.SortKey))
	assert.Equal(t, c.ID, decoded.ID)
	assert.NotContains(t, c.Encode(), "=")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"!!!", "bm90LWpzb24", "e30"} {
		_, err := Decode(s)
		assert.True(t, errors.Is(err, ErrInvalidCursor), s)
	}

	c, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNormalize(t *testing.T) {
	tests := map[int]int{0: DefaultLimit, -5: DefaultLimit, 1: 1, 100: 100, 500: MaxLimit}
	for in, want := range tests {
		r := CursorRequest{Limit: in}
		r.Normalize()
		assert.Equal(t, want, r.Limit, in)
	}
}

type row struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func TestSeekWalksAllRows(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:pagination?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))

	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	// Two rows share a timestamp so the id tie-break is exercised.
	rows := []row{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "c", CreatedAt: base.Add(time.Hour)},
		{ID: "d", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "e", CreatedAt: base.Add(3 * time.Hour)},
	}
	require.NoError(t, db.Create(&rows).Error)

	key := func(r row) Cursor { return Cursor{SortKey: r.CreatedAt, ID: r.ID} }

	var seen []string
	var after *Cursor
	for i := 0; i < 10; i++ {
		var got []row
		require.NoError(t, db.Scopes(Seek("created_at", "id", after, 2)).Find(&got).Error)
		page := NewPage(got, 2, key)
		for _, r := range page.Items {
			seen = append(seen, r.ID)
		}
		if !page.HasMore {
			assert.Nil(t, page.NextCursor)
			break
		}
		after, err = Decode(*page.NextCursor)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, seen)
}

func TestNewPageEmpty(t *testing.T) {
	page := NewPage[row](nil, 20, func(r row) Cursor { return Cursor{} })
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore)
}
