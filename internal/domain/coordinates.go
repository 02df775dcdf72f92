package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Immutable geographic point (latitude, longitude) in degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

func NewGeoPoint(lat, lon float64) GeoPoint { return GeoPoint{Lat: lat, Lon: lon} }

// Valid reports whether the point lies within WGS84 degree bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Return the point as an orb.Point, which is ordered [lon, lat].
func (p GeoPoint) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

func GeoPointFromOrb(p orb.Point) GeoPoint { return GeoPoint{Lat: p.Lat(), Lon: p.Lon()} }

func (p GeoPoint) String() string { return fmt.Sprintf("(%.6f,%.6f)", p.Lat, p.Lon) }

// A labelled endpoint of a route plan.
type Marker struct {
	Label string
	Point GeoPoint
}
