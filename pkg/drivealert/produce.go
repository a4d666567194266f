package drivealert

import (
	"github.com/randalmurphal/drivealert/pkg/drivealert/mapview"
	"github.com/randalmurphal/drivealert/pkg/drivealert/voice"
)

// Producer helpers. Each returns false once the target queue is closed.

// Alert queues a trigger for the voice worker.
func (p *Pipeline) Alert(t voice.Trigger) bool {
	return p.Voice.Produce(voice.NewEvent(t))
}

// Say queues free text, resolved and spoken in NLU mode.
func (p *Pipeline) Say(text string) bool {
	return p.Voice.Produce(voice.NewTextEvent(text))
}

// RequestRedraw asks the map worker to redraw.
func (p *Pipeline) RequestRedraw() bool {
	return p.MapUpdates.Produce(mapview.Update())
}

// ShowPOIs replaces the rendered POIs with pois on the next redraw.
func (p *Pipeline) ShowPOIs(pois []mapview.POI) bool {
	if !p.POIs.Produce(mapview.POIBatch(pois)) {
		return false
	}
	return p.RequestRedraw()
}

// RouteToPOI records a route request for the map worker.
func (p *Pipeline) RouteToPOI(req mapview.RouteRequest) bool {
	if !p.POIs.Produce(req) {
		return false
	}
	return p.RequestRedraw()
}

// RemoveCamera removes the camera at lat, lon from the map and the calculator.
func (p *Pipeline) RemoveCamera(lat, lon float64) bool {
	return p.MapUpdates.Produce(mapview.RemoveCamera(lat, lon))
}

// RemoveConstructionAreas removes every construction area.
func (p *Pipeline) RemoveConstructionAreas() bool {
	return p.MapUpdates.Produce(mapview.RemoveConstructionAreas())
}

// ResetMap clears every rendered marker.
func (p *Pipeline) ResetMap() bool {
	return p.MapUpdates.Produce(mapview.Reset())
}

// UpdatePosition moves the car marker on the next redraw.
func (p *Pipeline) UpdatePosition(lat, lon float64) {
	p.Markers.UpdateCenter(lat, lon)
}
