package projector

import (
	"fmt"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/risk"
)

// Marker is the map-ready projection of a MapPoint.
type Marker struct {
	IP    string
	Lat   float64
	Lon   float64
	Risk  float64
	Tier  risk.Tier
	Color string
	Popup string
}

// ProjectMarkers builds map markers. Points outside valid coordinates, or at
// exactly 0,0 (the backend's placeholder for an unresolved location), are
// skipped.
func ProjectMarkers(points []model.MapPoint) []Marker {
	markers := make([]Marker, 0, len(points))
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			continue
		}
		if p.Lat == 0 && p.Lon == 0 {
			continue
		}
		markers = append(markers, Marker{
			IP:    p.IP,
			Lat:   p.Lat,
			Lon:   p.Lon,
			Risk:  p.Risk,
			Tier:  risk.TierOf(p.Risk),
			Color: risk.MarkerColor(p.Risk),
			Popup: fmt.Sprintf("IP: %s  Risk: %g", p.IP, p.Risk),
		})
	}
	return markers
}
