// Package geo answers the two spatial questions discovery asks: is a point
// inside a bounding box, and is it within a great-circle radius of a center.
// Everything here is pure and O(1).
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is an axis-aligned latitude/longitude rectangle. A box whose
// MinLng is greater than its MaxLng crosses the antimeridian.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Normalize swaps inverted latitude bounds. Longitude order is meaningful
// (antimeridian wrap) and is left alone.
func (b BoundingBox) Normalize() BoundingBox {
	if b.MinLat > b.MaxLat {
		b.MinLat, b.MaxLat = b.MaxLat, b.MinLat
	}
	return b
}

// InBoundingBox reports whether p lies inside box, edges included.
func InBoundingBox(p Point, box BoundingBox) bool {
	box = box.Normalize()
	if p.Lat < box.MinLat || p.Lat > box.MaxLat {
		return false
	}
	if box.MinLng <= box.MaxLng {
		return p.Lng >= box.MinLng && p.Lng <= box.MaxLng
	}
	return p.Lng >= box.MinLng || p.Lng <= box.MaxLng
}

// DistanceKm is the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// WithinRadiusKm reports whether p is at most radiusKm from center.
// A negative radius is treated as zero.
func WithinRadiusKm(p, center Point, radiusKm float64) bool {
	if radiusKm < 0 {
		radiusKm = 0
	}
	return DistanceKm(p, center) <= radiusKm
}

// InBoundingBoxPtr is InBoundingBox for profiles whose coordinates are
// optional. A missing point never matches an enabled filter.
func InBoundingBoxPtr(p *Point, box BoundingBox) bool {
	if p == nil {
		return false
	}
	return InBoundingBox(*p, box)
}

// WithinRadiusPtr is WithinRadiusKm for optional coordinates.
func WithinRadiusPtr(p *Point, center Point, radiusKm float64) bool {
	if p == nil {
		return false
	}
	return WithinRadiusKm(*p, center, radiusKm)
}

// Valid reports whether the point is within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
