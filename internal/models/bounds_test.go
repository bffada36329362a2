package models_test

import (
	"testing"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dallas = models.Coordinates{Latitude: 33.011543, Longitude: -96.85161}

func TestNewBounds(t *testing.T) {
	b := models.NewBounds(dallas, 18, models.DefaultViewport)

	assert.Equal(t, 18, b.Zoom)
	assert.Equal(t, dallas, b.Center)
	assert.Greater(t, b.North, dallas.Latitude)
	assert.Less(t, b.South, dallas.Latitude)
	assert.Greater(t, b.East, dallas.Longitude)
	assert.Less(t, b.West, dallas.Longitude)
	assert.True(t, b.Contains(dallas))
	// 1280px at zoom 18 is 1280 / (256 * 2^18) * 360 degrees wide.
	assert.InDelta(t, 0.006866455, b.East-b.West, 1e-6)
}

func TestNewBounds_ClampsZoom(t *testing.T) {
	assert.Equal(t, models.MaxZoom, models.NewBounds(dallas, 40, models.DefaultViewport).Zoom)
	assert.Equal(t, models.MinZoom, models.NewBounds(dallas, 3, models.DefaultViewport).Zoom)
	assert.Equal(t, models.MinZoom, models.NewBoundsFromEdges(1, 0, 1, 0, dallas, -1).Zoom)
}

func TestNewBounds_InvalidViewportUsesDefault(t *testing.T) {
	got := models.NewBounds(dallas, 17, models.Viewport{})
	want := models.NewBounds(dallas, 17, models.DefaultViewport)

	assert.Equal(t, want, got)
}

func TestBounds_Widen(t *testing.T) {
	b := models.NewBounds(dallas, 18, models.DefaultViewport)

	wider, ok := b.Widen()

	require.True(t, ok)
	assert.Equal(t, 17, wider.Zoom)
	assert.Equal(t, b.Center, wider.Center)
	assert.InDelta(t, 2*(b.East-b.West), wider.East-wider.West, 1e-9)
	// Widening matches a window computed directly at the lower zoom.
	direct := models.NewBounds(dallas, 17, models.DefaultViewport)
	assert.InDelta(t, direct.North, wider.North, 1e-9)
	assert.InDelta(t, direct.South, wider.South, 1e-9)
	// The original value is unchanged.
	assert.Equal(t, 18, b.Zoom)
}

func TestBounds_WidenAtMinZoom(t *testing.T) {
	b := models.NewBounds(dallas, models.MinZoom, models.DefaultViewport)

	same, ok := b.Widen()

	assert.False(t, ok)
	assert.False(t, b.CanWiden())
	assert.Equal(t, b, same)
}

func TestBounds_Edges(t *testing.T) {
	b := models.NewBoundsFromEdges(33.02, 33.0, -96.84, -96.86, dallas, 18)

	n, s, e, w := b.Edges()

	assert.Equal(t, "33.02", n)
	assert.Equal(t, "33", s)
	assert.Equal(t, "-96.84", e)
	assert.Equal(t, "-96.86", w)
}

func TestParseCoordinates(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		coords, err := models.ParseCoordinates("33.011543, -96.85161")
		require.NoError(t, err)
		assert.Equal(t, dallas, coords)
		assert.Equal(t, "33.011543,-96.85161", coords.String())
	})

	for _, raw := range []string{"", "33.0", "abc,1", "1,abc", "91,0", "0,181"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			_, err := models.ParseCoordinates(raw)
			require.ErrorIs(t, err, models.ErrInvalidCoordinates)
		})
	}
}
