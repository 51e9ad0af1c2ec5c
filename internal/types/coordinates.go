package types

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
)

// Coords is a geocoded location rounded to two decimal places.
type Coords struct {
	Latitude  float64
	Longitude float64
}

// NewCoords rounds both components to two decimal places. No range validation is done.
func NewCoords(latitude, longitude float64) Coords {
	return Coords{
		Latitude:  Round(latitude, 2),
		Longitude: Round(longitude, 2),
	}
}

// String renders the coordinates as "x,y" (longitude first) with exactly two decimals
func (c Coords) String() string {
	return fmt.Sprintf("%.2f,%.2f", c.Longitude, c.Latitude)
}

// Point returns the coordinates as an orb.Point ([lon, lat])
func (c Coords) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// Round rounds v to the given number of decimal places using the exact binary value of v,
// with exact ties going to the even digit. Round(47.605, 2) is 47.6 because 47.605 is
// stored as 47.60499...
func Round(v float64, places int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
