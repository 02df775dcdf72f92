package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighwayEffectiveType(t *testing.T) {
	tests := []struct {
		name     string
		highway  HighwayType
		want     string
		wantOK   bool
		multiple bool
	}{
		{name: "single", highway: SingleHighway("trunk"), want: "trunk", wantOK: true},
		{name: "multiple takes first", highway: MultipleHighway("residential", "primary"), want: "residential", wantOK: true, multiple: true},
		{name: "empty multiple", highway: MultipleHighway(), multiple: true},
		{name: "missing", highway: HighwayType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.highway.Effective()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.multiple, tt.highway.IsMultiple())
		})
	}
}

func TestParseHighway(t *testing.T) {
	h := ParseHighway("primary;secondary")
	require.True(t, h.IsMultiple())
	assert.Equal(t, []string{"primary", "secondary"}, h.Values())

	h = ParseHighway(" motorway ")
	assert.False(t, h.IsMultiple())
	v, ok := h.Effective()
	assert.True(t, ok)
	assert.Equal(t, "motorway", v)

	_, ok = ParseHighway("").Effective()
	assert.False(t, ok)
}

func TestNewBoundingBox(t *testing.T) {
	a := GeoPoint{Lat: 10, Lon: 10}
	b := GeoPoint{Lat: 10.1, Lon: 9.9}

	box, err := NewBoundingBox(a, b, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 10.15, box.North, 1e-9)
	assert.InDelta(t, 9.95, box.South, 1e-9)
	assert.InDelta(t, 10.05, box.East, 1e-9)
	assert.InDelta(t, 9.85, box.West, 1e-9)
	assert.True(t, box.Contains(a))
	assert.True(t, box.Contains(b))
}

func TestNewBoundingBoxSamePointStillHasArea(t *testing.T) {
	p := GeoPoint{Lat: -23.5, Lon: -46.6}

	box, err := NewBoundingBox(p, p, 0.02)
	require.NoError(t, err)
	assert.Greater(t, box.North, box.South)
	assert.Greater(t, box.East, box.West)
	assert.True(t, box.Contains(p))
}

func TestNewBoundingBoxRejectsNonPositiveMargin(t *testing.T) {
	for _, m := range []float64{0, -0.1} {
		_, err := NewBoundingBox(GeoPoint{}, GeoPoint{Lat: 1, Lon: 1}, m)
		assert.ErrorIs(t, err, ErrInvalidMargin)
	}
}
