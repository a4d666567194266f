// Package markers keeps the set of markers rendered on the map.
//
// A Registry pulls camera and construction batches from their source queues,
// removes duplicates and places markers on a Surface. Identity on the map is
// the exact coordinate: a second marker at an occupied coordinate is skipped
// even if its key differs. Removing a camera or construction area also
// removes it from the shared Calculator so the two registries stay in step.
//
// A Registry is owned by the map router goroutine. Only the position update
// methods may be called from other goroutines.
package markers

import (
	"github.com/randalmurphal/drivealert/pkg/drivealert/calculator"
)

// Kind is the marker category.
type Kind string

// Marker categories.
const (
	KindCamera       Kind = "camera"
	KindConstruction Kind = "construction"
	KindPOI          Kind = "poi"
	KindCar          Kind = "car"
)

// Marker is what the Surface draws.
type Marker struct {
	Kind  Kind
	Key   string
	Lat   float64
	Lon   float64
	Icon  Icon
	Label []string
}

// Coord returns the marker coordinate.
func (m Marker) Coord() calculator.Coord {
	return calculator.Coord{Lat: m.Lat, Lon: m.Lon}
}

// Rect is a lookahead rectangle computed by the calculator, given by two
// opposite corners.
type Rect struct {
	Lat1, Lon1 float64
	Lat2, Lon2 float64
	Heading    float64
	Name       string
	Color      string
}

// Handle identifies something placed on a Surface.
type Handle string

// Surface is the map widget.
type Surface interface {
	AddMarker(m Marker) (Handle, error)
	RemoveMarker(h Handle) error
	AddLayer(r Rect) (Handle, error)
	RemoveLayer(h Handle) error
	// Center moves the view. zoom 0 keeps the current zoom.
	Center(lat, lon float64, zoom int, recenter bool)
}

// Calculator is the shared calculator registry.
type Calculator interface {
	RemoveCamera(lat, lon float64) (calculator.Entry, bool)
	RestoreCamera(e calculator.Entry)
	RemoveConstructionArea(lat, lon float64) (calculator.Entry, bool)
	RestoreConstructionArea(e calculator.Entry)
}

// rectColors cycles through rectangle outline colors.
var rectColors = []string{
	"#ff7800", "#1100ff", "#00ff11", "#9100ff", "#eeff00",
	"#00eeff", "#ff00ee", "#584dff", "#4d9bff",
}
