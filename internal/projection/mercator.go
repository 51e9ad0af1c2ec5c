// Package projection converts geographic coordinates to spherical Web-Mercator (EPSG:3857).
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/PerryMapping/WeatherBot/internal/types"
	"github.com/paulmach/orb"
)

// EarthRadius is the equatorial radius of the Web-Mercator sphere, in meters.
const EarthRadius = 6378137.0

// ErrUndefinedLatitude is returned for latitudes where the projection diverges (|lat| >= 90).
var ErrUndefinedLatitude = errors.New("web mercator is undefined at this latitude")

// LonToX projects a longitude in degrees to Web-Mercator x meters, rounded to 0.1 m.
func LonToX(lon float64) float64 {
	return types.Round(radians(lon)*EarthRadius, 1)
}

// LatToY projects a latitude in degrees to Web-Mercator y meters, rounded to 0.1 m.
// ln(tan(π/4 + φ/2)) diverges at the poles, so those latitudes return ErrUndefinedLatitude
// instead of an infinite or NaN value.
func LatToY(lat float64) (float64, error) {
	if math.IsNaN(lat) || math.Abs(lat) >= 90 {
		return 0, fmt.Errorf("latitude %v: %w", lat, ErrUndefinedLatitude)
	}

	y := math.Log(math.Tan(math.Pi/4+radians(lat)/2)) * EarthRadius
	if math.IsInf(y, 0) || math.IsNaN(y) {
		return 0, fmt.Errorf("latitude %v: %w", lat, ErrUndefinedLatitude)
	}

	return types.Round(y, 1), nil
}

// ToMercator projects coordinates to a Web-Mercator point in meters.
func ToMercator(c types.Coords) (orb.Point, error) {
	y, err := LatToY(c.Latitude)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{LonToX(c.Longitude), y}, nil
}

// DegreeBounds returns the lon/lat box extending pad degrees around c on every side,
// with each edge rounded to two decimals.
func DegreeBounds(c types.Coords, pad float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{types.Round(c.Longitude-pad, 2), types.Round(c.Latitude-pad, 2)},
		Max: orb.Point{types.Round(c.Longitude+pad, 2), types.Round(c.Latitude+pad, 2)},
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
