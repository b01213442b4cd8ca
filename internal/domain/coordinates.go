package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate rejects coordinates outside the WGS84 range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) {
		return fmt.Errorf("coordinates (%v, %v): not a number", c.Lon, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("coordinates: longitude %v out of range", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("coordinates: latitude %v out of range", c.Lat)
	}
	return nil
}

// Key renders the coordinates rounded to 6 decimals (~0.1m), lon first.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}
