package markers

import (
	"fmt"
	"sync"
)

// Position is a snapshot of the car state fed by the GPS side.
type Position struct {
	HasCenter bool
	Lat       float64
	Lon       float64
	Heading   float64
	Bearing   float64
	Accuracy  float64

	Extrapolated          bool
	GeoBounds             []Rect
	GeoBoundsExtrapolated []Rect
}

type position struct {
	mu sync.Mutex
	p  Position
}

// UpdateCenter sets the car coordinate.
func (r *Registry) UpdateCenter(lat, lon float64) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.HasCenter = true
	r.pos.p.Lat = lat
	r.pos.p.Lon = lon
}

// UpdateHeading sets the car heading.
func (r *Registry) UpdateHeading(heading float64) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.Heading = heading
}

// UpdateBearing sets the car bearing.
func (r *Registry) UpdateBearing(bearing float64) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.Bearing = bearing
}

// UpdateAccuracy sets the GPS accuracy. Integer and string readings are
// converted; anything else is rejected and the old value kept.
func (r *Registry) UpdateAccuracy(accuracy any) error {
	v, err := ToFloat(accuracy)
	if err != nil {
		return fmt.Errorf("accuracy: %w", err)
	}
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.Accuracy = v
	return nil
}

// SetExtrapolation toggles drawing of extrapolated rectangles.
func (r *Registry) SetExtrapolation(extrapolated bool) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.Extrapolated = extrapolated
}

// UpdateGeoBounds appends a lookahead rectangle, optionally clearing the
// previous ones first.
func (r *Registry) UpdateGeoBounds(rect Rect, clear bool) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	if clear {
		r.pos.p.GeoBounds = nil
	}
	r.pos.p.GeoBounds = append(r.pos.p.GeoBounds, rect)
}

// UpdateGeoBoundsExtrapolated appends an extrapolated rectangle.
func (r *Registry) UpdateGeoBoundsExtrapolated(rect Rect) {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.GeoBoundsExtrapolated = append(r.pos.p.GeoBoundsExtrapolated, rect)
}

// ResetGeoBounds forgets all rectangles. Layers already drawn stay until
// ClearLayers or Reset.
func (r *Registry) ResetGeoBounds() {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	r.pos.p.GeoBounds = nil
	r.pos.p.GeoBoundsExtrapolated = nil
}

// Position returns a copy of the current position state.
func (r *Registry) Position() Position {
	r.pos.mu.Lock()
	defer r.pos.mu.Unlock()
	p := r.pos.p
	p.GeoBounds = append([]Rect(nil), p.GeoBounds...)
	p.GeoBoundsExtrapolated = append([]Rect(nil), p.GeoBoundsExtrapolated...)
	return p
}
