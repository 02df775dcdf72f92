package services

import (
	"heavy-route-service/internal/domain"
	"math"

	"github.com/paulmach/orb"
)

// Roughly 500 m at the equator. Degree buffers shrink east-west with
// latitude, so the corridor narrows at high latitudes.
const DefaultCorridorRadiusDeg = 0.005

// Vertices used for each half-circle cap of the buffer outline.
const capSegments = 8

// Corridor is the buffered region around a route line, in degrees.
type Corridor struct {
	Path   orb.LineString
	Radius float64
}

// NewCorridor builds a corridor through points in order. Consecutive
// duplicate points are collapsed.
func NewCorridor(points []domain.GeoPoint, radiusDeg float64) Corridor {
	path := make(orb.LineString, 0, len(points))
	for _, p := range points {
		op := p.Orb()
		if len(path) > 0 && path[len(path)-1].Equal(op) {
			continue
		}
		path = append(path, op)
	}
	return Corridor{Path: path, Radius: radiusDeg}
}

// Polygon returns the outline of the buffered route: the left offset of the
// line, a round cap at the end, the right offset back to the start and a
// round cap at the start. Sharp turns can make the outline self-intersect.
func (c Corridor) Polygon() orb.Polygon {
	switch len(c.Path) {
	case 0:
		return orb.Polygon{}
	case 1:
		return orb.Polygon{circle(c.Path[0], c.Radius)}
	}

	n := len(c.Path)
	normals := make([]orb.Point, n-1)
	for i := 0; i < n-1; i++ {
		normals[i] = leftNormal(c.Path[i], c.Path[i+1])
	}

	ring := make(orb.Ring, 0, 2*n+2*capSegments+1)

	for i := 0; i < n; i++ {
		ring = append(ring, c.offset(i, normals, 1))
	}

	last := normals[n-2]
	ring = append(ring, arc(c.Path[n-1], c.Radius, math.Atan2(last[1], last[0]))...)

	for i := n - 1; i >= 0; i-- {
		ring = append(ring, c.offset(i, normals, -1))
	}

	first := normals[0]
	ring = append(ring, arc(c.Path[0], c.Radius, math.Atan2(-first[1], -first[0]))...)

	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// offset moves vertex i sideways by Radius. side is 1 for left, -1 for right.
// Interior vertices use the miter of the adjoining segment normals, limited
// to twice the radius on sharp turns.
func (c Corridor) offset(i int, normals []orb.Point, side float64) orb.Point {
	p := c.Path[i]

	var dir orb.Point
	length := c.Radius
	switch {
	case i == 0:
		dir = normals[0]
	case i == len(c.Path)-1:
		dir = normals[len(normals)-1]
	default:
		a, b := normals[i-1], normals[i]
		m := unit(orb.Point{a[0] + b[0], a[1] + b[1]})
		cos := m[0]*b[0] + m[1]*b[1]
		if m == (orb.Point{}) || cos < 0.5 {
			dir = b
		} else {
			dir = m
			length = c.Radius / cos
		}
	}

	return orb.Point{p[0] + side*dir[0]*length, p[1] + side*dir[1]*length}
}

// arc returns the interior points of a clockwise half circle around center
// starting just after angle start.
func arc(center orb.Point, r, start float64) []orb.Point {
	out := make([]orb.Point, 0, capSegments-1)
	for k := 1; k < capSegments; k++ {
		a := start - math.Pi*float64(k)/float64(capSegments)
		out = append(out, orb.Point{center[0] + r*math.Cos(a), center[1] + r*math.Sin(a)})
	}
	return out
}

func circle(center orb.Point, r float64) orb.Ring {
	ring := make(orb.Ring, 0, 2*capSegments+1)
	for k := 0; k < 2*capSegments; k++ {
		a := -math.Pi * float64(k) / float64(capSegments)
		ring = append(ring, orb.Point{center[0] + r*math.Cos(a), center[1] + r*math.Sin(a)})
	}
	return append(ring, ring[0])
}

func leftNormal(a, b orb.Point) orb.Point {
	d := unit(orb.Point{b[0] - a[0], b[1] - a[1]})
	return orb.Point{-d[1], d[0]}
}

func unit(v orb.Point) orb.Point {
	l := math.Hypot(v[0], v[1])
	if l == 0 {
		return orb.Point{}
	}
	return orb.Point{v[0] / l, v[1] / l}
}
