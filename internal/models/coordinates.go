package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCoordinates is returned when a "lat,lng" pair cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}

// ParseCoordinates parses the "lat,lng" form used by the directory service.
func ParseCoordinates(raw string) (Coordinates, error) {
	lat, lng, found := strings.Cut(raw, ",")
	if !found {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, raw)
	}

	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrInvalidCoordinates, lat)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrInvalidCoordinates, lng)
	}

	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return Coordinates{}, fmt.Errorf("%w: out of range %q", ErrInvalidCoordinates, raw)
	}

	return Coordinates{Latitude: latitude, Longitude: longitude}, nil
}

// String renders the point as "lat,lng".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
