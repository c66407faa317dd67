// Package mapdata loads the static list of geolocated alert sources shown
// on the risk map.
package mapdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/soclens/internal/model"
)

// ErrNoPoints is returned when no points file is configured.
var ErrNoPoints = errors.New("mapdata: no points file configured")

// Load reads a YAML or JSON list of {ip, lat, lon, risk} from path. A
// missing file is reported with an error wrapping fs.ErrNotExist so the
// caller can leave the map unmounted.
func Load(path string) ([]model.MapPoint, error) {
	if path == "" {
		return nil, ErrNoPoints
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapdata: open %s: %w", path, err)
	}
	defer f.Close()

	points, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("mapdata: %s: %w", path, err)
	}
	return points, nil
}

// Decode parses a points document. JSON input is accepted since it is valid
// YAML. An empty document yields no points.
func Decode(r io.Reader) ([]model.MapPoint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.MapPoint{}, nil
	}

	var points []model.MapPoint
	if err := yaml.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if points == nil {
		points = []model.MapPoint{}
	}
	return points, nil
}
