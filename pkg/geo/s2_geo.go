package geo

import (
	"errors"
	"math"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	maxAnchorLatitude = 85.0
	earthRadiusM      = 6371007
)

var ErrInvalidAnchor = errors.New("anchor must be a finite coordinate with |lat| <= 85 and |lon| <= 180")

func ValidateAnchor(anchor datastructure.Coordinate) error {
	if math.IsNaN(anchor.Lat) || math.IsNaN(anchor.Lon) ||
		math.Abs(anchor.Lat) > maxAnchorLatitude || math.Abs(anchor.Lon) > 180 {
		return ErrInvalidAnchor
	}
	return nil
}

func metersToAngle(m float64) s1.Angle {
	return s1.Angle(m / earthRadiusM)
}

// Offset moves from anchor northM meters along the meridian, then eastM meters along the great
// circle heading east. Negative values move south or west.
func Offset(anchor datastructure.Coordinate, northM, eastM float64) datastructure.Coordinate {
	p := s2.PointFromLatLng(s2.LatLngFromDegrees(anchor.Lat, anchor.Lon))

	if northM != 0 {
		pole := s2.Point{Vector: r3.Vector{X: 0, Y: 0, Z: 1}}
		if northM < 0 {
			pole = s2.Point{Vector: r3.Vector{X: 0, Y: 0, Z: -1}}
		}
		p = s2.InterpolateAtDistance(metersToAngle(math.Abs(northM)), p, pole)
	}

	if eastM != 0 {
		east := s2.Point{Vector: r3.Vector{X: 0, Y: 0, Z: 1}.Cross(p.Vector).Normalize()}
		if eastM < 0 {
			east = s2.Point{Vector: east.Mul(-1)}
		}
		p = s2.InterpolateAtDistance(metersToAngle(math.Abs(eastM)), p, east)
	}

	ll := s2.LatLngFromPoint(p)
	return datastructure.NewCoordinate(ll.Lat.Degrees(), ll.Lng.Degrees())
}

// DistanceMeters is the great circle distance between two coordinates.
func DistanceMeters(a, b datastructure.Coordinate) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusM
}

// PointLinePerpendicularDistance returns the distance in meters from p to the segment a-b.
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	return s2.DistanceFromSegment(pS2, aS2, bS2).Radians() * earthRadiusM
}
