package geo

import (
	"fmt"
	"math"
	"regexp"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

var distancePattern = regexp.MustCompile(`^\d+(\.\d+)?(mi|miles|yd|yards|ft|feet|in|inch|km|kilometers|m|meters|cm|centimeters|mm|millimeters|NM|nmi|nauticalmiles)$`)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `mapstructure:"lat" json:"lat"`
	Lon float64 `mapstructure:"lon" json:"lon"`
}

// NewCoordinate validates and creates a Coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if !ValidateCoordinates(lat, lon) {
		return Coordinate{}, fmt.Errorf("coordinate out of range: lat=%v lon=%v", lat, lon)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// DistanceTo returns the great-circle distance in meters to other.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return Haversine(c.Lat, c.Lon, other.Lat, other.Lon)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidDistance reports whether s is an engine distance literal such as "10km".
func ValidDistance(s string) bool {
	return distancePattern.MatchString(s)
}
