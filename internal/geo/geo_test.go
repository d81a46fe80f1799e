package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var berlin = Point{Lat: 52.5200, Lng: 13.4050}

// offsetNorth returns a point km kilometres due north of p. Along a meridian
// the great-circle distance is exactly R * dLat.
func offsetNorth(p Point, km float64) Point {
	return Point{Lat: p.Lat + km/EarthRadiusKm*180/math.Pi, Lng: p.Lng}
}

func TestDistanceKm(t *testing.T) {
	t.Run("distance to self is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(berlin, berlin))
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		munich := Point{Lat: 48.1351, Lng: 11.5820}
		assert.InDelta(t, DistanceKm(berlin, munich), DistanceKm(munich, berlin), 1e-9)
	})

	t.Run("matches known city distance", func(t *testing.T) {
		hamburg := Point{Lat: 53.5511, Lng: 9.9937}
		// Berlin to Hamburg is roughly 255 km as the crow flies.
		assert.InDelta(t, 255, DistanceKm(berlin, hamburg), 3)
	})

	t.Run("meridian offset is exact", func(t *testing.T) {
		assert.InDelta(t, 10, DistanceKm(berlin, offsetNorth(berlin, 10)), 1e-6)
	})

	t.Run("antipodal points do not produce NaN", func(t *testing.T) {
		d := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 180})
		assert.False(t, math.IsNaN(d))
		assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
	})
}

func TestWithinRadiusKm(t *testing.T) {
	t.Run("provider at 10 km is inside a 50 km radius", func(t *testing.T) {
		assert.True(t, WithinRadiusKm(offsetNorth(berlin, 10), berlin, 50))
	})

	t.Run("provider at 60 km is outside a 50 km radius", func(t *testing.T) {
		assert.False(t, WithinRadiusKm(offsetNorth(berlin, 60), berlin, 50))
	})

	t.Run("self is always within any non-negative radius", func(t *testing.T) {
		for _, r := range []float64{0, 0.001, 1, 20000} {
			assert.True(t, WithinRadiusKm(berlin, berlin, r))
		}
	})

	t.Run("symmetric in its two points", func(t *testing.T) {
		a := offsetNorth(berlin, 30)
		for _, r := range []float64{10, 29.99, 30.01, 100} {
			assert.Equal(t, WithinRadiusKm(a, berlin, r), WithinRadiusKm(berlin, a, r))
		}
	})

	t.Run("negative radius behaves as zero", func(t *testing.T) {
		assert.True(t, WithinRadiusKm(berlin, berlin, -5))
		assert.False(t, WithinRadiusKm(offsetNorth(berlin, 1), berlin, -5))
	})

	t.Run("missing coordinates never match", func(t *testing.T) {
		assert.False(t, WithinRadiusPtr(nil, berlin, 20000))
		p := offsetNorth(berlin, 1)
		assert.True(t, WithinRadiusPtr(&p, berlin, 5))
	})
}

func TestInBoundingBox(t *testing.T) {
	box := BoundingBox{MinLat: 52.3, MinLng: 13.0, MaxLat: 52.7, MaxLng: 13.8}

	t.Run("inside and on the edge", func(t *testing.T) {
		assert.True(t, InBoundingBox(berlin, box))
		assert.True(t, InBoundingBox(Point{Lat: 52.3, Lng: 13.0}, box))
	})

	t.Run("outside", func(t *testing.T) {
		assert.False(t, InBoundingBox(Point{Lat: 48.1, Lng: 11.5}, box))
	})

	t.Run("inverted latitude bounds are swapped", func(t *testing.T) {
		inverted := BoundingBox{MinLat: 52.7, MinLng: 13.0, MaxLat: 52.3, MaxLng: 13.8}
		assert.True(t, InBoundingBox(berlin, inverted))
	})

	t.Run("antimeridian box wraps", func(t *testing.T) {
		pacific := BoundingBox{MinLat: -20, MinLng: 170, MaxLat: 20, MaxLng: -170}
		assert.True(t, InBoundingBox(Point{Lat: 0, Lng: 179}, pacific))
		assert.True(t, InBoundingBox(Point{Lat: 0, Lng: -175}, pacific))
		assert.False(t, InBoundingBox(Point{Lat: 0, Lng: 0}, pacific))
	})

	t.Run("missing coordinates never match", func(t *testing.T) {
		assert.False(t, InBoundingBoxPtr(nil, box))
	})
}

func TestPointValid(t *testing.T) {
	assert.True(t, berlin.Valid())
	assert.False(t, Point{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: -181}.Valid())
	assert.False(t, Point{Lat: math.NaN(), Lng: 0}.Valid())
}
