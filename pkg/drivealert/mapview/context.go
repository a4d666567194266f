package mapview

import (
	"sync/atomic"
)

// Trigger tells the drawer what the last POI payload asked for.
type Trigger string

// Draw triggers.
const (
	TriggerDrawPOIs                   Trigger = "DRAW_POIS"
	TriggerCalculateRouteToNearestPOI Trigger = "CALCULATE_ROUTE_TO_NEAREST_POI"
)

// POI is one point of interest from the POI lookup.
type POI struct {
	Lat  float64
	Lon  float64
	Tags map[string]string
}

// Tag returns the tag value or the "---" placeholder.
func (p POI) Tag(name string) string {
	if v, ok := p.Tags[name]; ok && v != "" {
		return v
	}
	return "---"
}

// POIPayload is an item on the POI queue: a POIBatch or a RouteRequest.
type POIPayload interface {
	isPOIPayload()
}

// POIBatch replaces the POI working set.
type POIBatch []POI

// RouteRequest asks for a route from the current position to a POI.
type RouteRequest struct {
	OriginLat float64
	OriginLon float64
	Target    POI
}

func (POIBatch) isPOIPayload()     {}
func (RouteRequest) isPOIPayload() {}

// DrawContext is the drawing state owned by one Router. Only the rectangle
// flags may be set from other goroutines.
type DrawContext struct {
	POIs      []POI
	POIsDrawn bool
	Trigger   Trigger
	LastRoute *RouteRequest

	rectDraw             atomic.Bool
	rectDrawExtrapolated atomic.Bool
}

// NewDrawContext returns a context with nothing drawn.
func NewDrawContext() *DrawContext {
	return &DrawContext{Trigger: TriggerDrawPOIs}
}

// Reset forgets all POIs and the last route.
func (dc *DrawContext) Reset() {
	dc.POIs = nil
	dc.POIsDrawn = false
	dc.Trigger = TriggerDrawPOIs
	dc.LastRoute = nil
	dc.rectDraw.Store(false)
	dc.rectDrawExtrapolated.Store(false)
}

// RequestRectDraw asks the next redraw to draw the lookahead rectangles.
func (dc *DrawContext) RequestRectDraw() { dc.rectDraw.Store(true) }

// RequestRectDrawExtrapolated asks the next redraw to draw the extrapolated rectangles.
func (dc *DrawContext) RequestRectDrawExtrapolated() { dc.rectDrawExtrapolated.Store(true) }

// TakeRectDraw reports and clears the rectangle request.
func (dc *DrawContext) TakeRectDraw() bool { return dc.rectDraw.Swap(false) }

// TakeRectDrawExtrapolated reports and clears the extrapolated rectangle request.
func (dc *DrawContext) TakeRectDrawExtrapolated() bool {
	return dc.rectDrawExtrapolated.Swap(false)
}
