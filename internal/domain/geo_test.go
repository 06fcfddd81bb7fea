package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmIdentity(t *testing.T) {
	points := []GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 12.9716, Longitude: 77.5946},
		{Latitude: -33.8688, Longitude: 151.2093},
	}

	for _, p := range points {
		assert.Equal(t, 0.0, DistanceKm(p, p))
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := GeoPoint{Latitude: 12.9716, Longitude: 77.5946}
	b := GeoPoint{Latitude: 28.6139, Longitude: 77.2090}

	assert.Equal(t, DistanceKm(a, b), DistanceKm(b, a))
}

func TestDistanceKmKnownValue(t *testing.T) {
	// One degree of longitude at the equator is ~111.19 km.
	a := GeoPoint{Latitude: 0, Longitude: 0}
	b := GeoPoint{Latitude: 0, Longitude: 1}

	d := DistanceKm(a, b)
	assert.InEpsilon(t, 111.19, d, 0.005)
}

func TestGeoPointValid(t *testing.T) {
	valid := []GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: -90, Longitude: 180},
		{Latitude: 90, Longitude: -180},
		{Latitude: 12.9716, Longitude: 77.5946},
	}
	for _, p := range valid {
		assert.True(t, p.Valid(), "expected %+v to be valid", p)
	}

	invalid := []GeoPoint{
		{Latitude: math.NaN(), Longitude: 77.5946},
		{Latitude: 12.9716, Longitude: math.NaN()},
		{Latitude: math.Inf(1), Longitude: 0},
		{Latitude: 91, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: 0, Longitude: -181},
	}
	for _, p := range invalid {
		assert.False(t, p.Valid(), "expected %+v to be invalid", p)
	}
}
