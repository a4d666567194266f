// Package calculator holds the shared speed camera and construction area
// state computed by the rectangle calculator.
//
// The map registry removes entries from here whenever it removes the matching
// marker from the map, so the two views never disagree about what is tracked.
package calculator

import (
	"sync"
)

// Coord identifies an entry by its exact coordinate.
type Coord struct {
	Lat float64
	Lon float64
}

// Entry is one tracked camera or construction area.
type Entry struct {
	Key   string
	Lat   float64
	Lon   float64
	Attrs []any
}

// Coord returns the entry coordinate.
func (e Entry) Coord() Coord {
	return Coord{Lat: e.Lat, Lon: e.Lon}
}

// InfoMode is passed to the info page callback.
type InfoMode string

// Info page update modes.
const (
	InfoIncrease InfoMode = "INCREASE"
	InfoDecrease InfoMode = "DECREASE"
)

// InfoPageFunc is notified when the construction area count changes.
type InfoPageFunc func(mode InfoMode, constructionAreas int)

// Registry is a mutex-guarded calculator state. The zero value is not usable;
// call New.
type Registry struct {
	mu           sync.Mutex
	cameras      map[Coord]Entry
	construction map[Coord]Entry
	osmData      bool
	infoPage     InfoPageFunc
}

// Option configures a Registry.
type Option func(*Registry)

// WithInfoPage sets the info page callback.
func WithInfoPage(fn InfoPageFunc) Option {
	return func(r *Registry) {
		r.infoPage = fn
	}
}

// New creates an empty registry. OSM data is reported available until
// SetOSMDataState says otherwise.
func New(opts ...Option) *Registry {
	r := &Registry{
		cameras:      make(map[Coord]Entry),
		construction: make(map[Coord]Entry),
		osmData:      true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddCamera tracks a speed camera, replacing any entry at the same coordinate.
func (r *Registry) AddCamera(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cameras[e.Coord()] = e
}

// RemoveCamera stops tracking the camera at lat, lon.
func (r *Registry) RemoveCamera(lat, lon float64) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := Coord{Lat: lat, Lon: lon}
	e, ok := r.cameras[c]
	if ok {
		delete(r.cameras, c)
	}
	return e, ok
}

// RestoreCamera puts back an entry returned by RemoveCamera.
func (r *Registry) RestoreCamera(e Entry) {
	r.AddCamera(e)
}

// Camera returns the camera at lat, lon.
func (r *Registry) Camera(lat, lon float64) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cameras[Coord{Lat: lat, Lon: lon}]
	return e, ok
}

// Cameras returns the number of tracked cameras.
func (r *Registry) Cameras() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cameras)
}

// AddConstructionArea tracks a construction area.
func (r *Registry) AddConstructionArea(e Entry) {
	r.mu.Lock()
	r.construction[e.Coord()] = e
	n := len(r.construction)
	r.mu.Unlock()

	r.notify(InfoIncrease, n)
}

// RemoveConstructionArea stops tracking the area at lat, lon and notifies
// the info page.
func (r *Registry) RemoveConstructionArea(lat, lon float64) (Entry, bool) {
	r.mu.Lock()
	c := Coord{Lat: lat, Lon: lon}
	e, ok := r.construction[c]
	if ok {
		delete(r.construction, c)
	}
	n := len(r.construction)
	r.mu.Unlock()

	if ok {
		r.notify(InfoDecrease, n)
	}
	return e, ok
}

// RestoreConstructionArea puts back an entry returned by RemoveConstructionArea.
func (r *Registry) RestoreConstructionArea(e Entry) {
	r.AddConstructionArea(e)
}

// ConstructionAreas returns the number of tracked construction areas.
func (r *Registry) ConstructionAreas() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.construction)
}

// SetOSMDataState records whether OSM data is currently available.
func (r *Registry) SetOSMDataState(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.osmData = available
}

// OSMDataState reports whether OSM data is available.
func (r *Registry) OSMDataState() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.osmData
}

// notify runs outside the lock so the callback may read the registry.
func (r *Registry) notify(mode InfoMode, n int) {
	if r.infoPage != nil {
		r.infoPage(mode, n)
	}
}
