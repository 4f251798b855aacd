package filter

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
)

// Location range kinds, as sent by clients in the "type" key.
const (
	KindCoordinateAndDistance = "CoordinateAndDistance"
	KindPolygon               = "Polygon"
	KindSquare                = "Square"
)

// LocationRange is the closed set of geo shapes a geo filter accepts.
type LocationRange interface {
	Kind() string
	locationRange()
}

// CoordinateAndDistance matches points within Distance of Coordinate.
type CoordinateAndDistance struct {
	Coordinate geo.Coordinate `mapstructure:"coordinate"`
	Distance   string         `mapstructure:"distance"`
}

// Kind implements LocationRange.
func (CoordinateAndDistance) Kind() string { return KindCoordinateAndDistance }
func (CoordinateAndDistance) locationRange() {}

// Polygon matches points inside the ordered vertex list.
type Polygon struct {
	Coordinates []geo.Coordinate `mapstructure:"coordinates"`
}

// Kind implements LocationRange.
func (Polygon) Kind() string { return KindPolygon }
func (Polygon) locationRange() {}

// Square matches points inside the box spanned by two opposite corners.
type Square struct {
	TopLeft     geo.Coordinate `mapstructure:"top_left"`
	BottomRight geo.Coordinate `mapstructure:"bottom_right"`
}

// Kind implements LocationRange.
func (Square) Kind() string { return KindSquare }
func (Square) locationRange() {}

// ParseLocationRange decodes {"type": ..., "data": {...}} into a LocationRange.
func ParseLocationRange(payload map[string]any) (LocationRange, error) {
	kind, _ := payload["type"].(string)
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("location range %q: data object is required", kind)
	}

	switch kind {
	case KindCoordinateAndDistance:
		var lr CoordinateAndDistance
		if err := decode(data, &lr); err != nil {
			return nil, err
		}
		if !geo.ValidateCoordinates(lr.Coordinate.Lat, lr.Coordinate.Lon) {
			return nil, fmt.Errorf("location range %q: coordinate out of range", kind)
		}
		if !geo.ValidDistance(lr.Distance) {
			return nil, fmt.Errorf("location range %q: invalid distance %q", kind, lr.Distance)
		}
		return lr, nil
	case KindPolygon:
		var lr Polygon
		if err := decode(data, &lr); err != nil {
			return nil, err
		}
		if len(lr.Coordinates) < 3 {
			return nil, fmt.Errorf("location range %q: at least 3 coordinates required", kind)
		}
		for _, c := range lr.Coordinates {
			if !geo.ValidateCoordinates(c.Lat, c.Lon) {
				return nil, fmt.Errorf("location range %q: coordinate out of range", kind)
			}
		}
		return lr, nil
	case KindSquare:
		var lr Square
		if err := decode(data, &lr); err != nil {
			return nil, err
		}
		if !geo.ValidateCoordinates(lr.TopLeft.Lat, lr.TopLeft.Lon) ||
			!geo.ValidateCoordinates(lr.BottomRight.Lat, lr.BottomRight.Lon) {
			return nil, fmt.Errorf("location range %q: coordinate out of range", kind)
		}
		return lr, nil
	default:
		return nil, fmt.Errorf("unknown location range type %q", kind)
	}
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("decode location range: %w", err)
	}
	return nil
}
