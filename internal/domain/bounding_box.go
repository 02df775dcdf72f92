package domain

import (
	"fmt"
	"math"
)

// Axis-aligned region in degrees used to request a road network.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// NewBoundingBox returns the smallest box covering a and b, padded on every
// side by margin degrees. A positive margin keeps both points strictly inside.
func NewBoundingBox(a, b GeoPoint, margin float64) (BoundingBox, error) {
	if margin <= 0 || math.IsNaN(margin) || math.IsInf(margin, 0) {
		return BoundingBox{}, fmt.Errorf("new bounding box: margin=%v: %w", margin, ErrInvalidMargin)
	}

	return BoundingBox{
		North: math.Max(a.Lat, b.Lat) + margin,
		South: math.Min(a.Lat, b.Lat) - margin,
		East:  math.Max(a.Lon, b.Lon) + margin,
		West:  math.Min(a.Lon, b.Lon) - margin,
	}, nil
}

// Contains reports whether p lies strictly inside the box.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat > b.South && p.Lat < b.North && p.Lon > b.West && p.Lon < b.East
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[s=%.6f w=%.6f n=%.6f e=%.6f]", b.South, b.West, b.North, b.East)
}
