package geo

import (
	"testing"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

var surakarta = datastructure.NewCoordinate(-7.5655, 110.8317)

func TestOffset(t *testing.T) {
	north := Offset(surakarta, 1000, 0)
	assert.Greater(t, north.Lat, surakarta.Lat)
	assert.InDelta(t, surakarta.Lon, north.Lon, 1e-9)
	assert.InDelta(t, 1000, DistanceMeters(surakarta, north), 0.5)

	east := Offset(surakarta, 0, 1000)
	assert.Greater(t, east.Lon, surakarta.Lon)
	assert.InDelta(t, 1000, DistanceMeters(surakarta, east), 0.5)

	southWest := Offset(surakarta, -300, -400)
	assert.Less(t, southWest.Lat, surakarta.Lat)
	assert.Less(t, southWest.Lon, surakarta.Lon)
	assert.InDelta(t, 500, DistanceMeters(surakarta, southWest), 1)

	same := Offset(surakarta, 0, 0)
	assert.InDelta(t, surakarta.Lat, same.Lat, 1e-9)
	assert.InDelta(t, surakarta.Lon, same.Lon, 1e-9)
}

func TestPointLinePerpendicularDistance(t *testing.T) {
	a := surakarta
	b := Offset(surakarta, 0, 1000)
	p := Offset(surakarta, 10, 500)
	assert.InDelta(t, 10, PointLinePerpendicularDistance(a, b, p), 0.5)
}

func TestValidateAnchor(t *testing.T) {
	assert.NoError(t, ValidateAnchor(surakarta))
	assert.ErrorIs(t, ValidateAnchor(datastructure.NewCoordinate(89, 0)), ErrInvalidAnchor)
	assert.ErrorIs(t, ValidateAnchor(datastructure.NewCoordinate(0, 181)), ErrInvalidAnchor)
}
