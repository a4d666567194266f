package markers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/randalmurphal/drivealert/pkg/drivealert/calculator"
	"github.com/randalmurphal/drivealert/pkg/drivealert/mapview"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
	"github.com/randalmurphal/drivealert/pkg/drivealert/saga"
)

// Marker decision outcomes recorded in metrics.
const (
	OutcomeAdded   = "added"
	OutcomeSkipped = "skipped"
	OutcomeRemoved = "removed"
)

// InitialZoom is applied on the first centered draw.
const InitialZoom = 15

type placed struct {
	marker Marker
	handle Handle
}

// Registry tracks rendered markers per category, keyed by coordinate.
type Registry struct {
	surface Surface
	calc    Calculator

	osmCams      *queue.Queue[AttributeMap]
	cloudCams    *queue.Queue[AttributeMap]
	dbCams       *queue.Queue[AttributeMap]
	construction *queue.Queue[AttributeMap]

	cameras       map[calculator.Coord]placed
	pois          map[calculator.Coord]placed
	constructions map[calculator.Coord]placed
	car           []Handle
	layers        []Handle

	firstStart bool
	drawRects  bool

	pos position

	runner  *saga.Runner
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Option configures a Registry.
type Option func(*Registry)

// WithCameraQueues sets the camera source queues. Any of them may be nil.
func WithCameraQueues(osm, cloud, db *queue.Queue[AttributeMap]) Option {
	return func(r *Registry) {
		r.osmCams = osm
		r.cloudCams = cloud
		r.dbCams = db
	}
}

// WithConstructionQueue sets the construction area source queue.
func WithConstructionQueue(q *queue.Queue[AttributeMap]) Option {
	return func(r *Registry) { r.construction = q }
}

// WithCalculator sets the calculator kept in step on removal.
func WithCalculator(c Calculator) Option {
	return func(r *Registry) { r.calc = c }
}

// WithDrawRects enables drawing of lookahead rectangles. Enabled by default.
func WithDrawRects(enabled bool) Option {
	return func(r *Registry) { r.drawRects = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(r *Registry) {
		if s != nil {
			r.spans = s
		}
	}
}

// NewRegistry creates an empty registry drawing on surface.
func NewRegistry(surface Surface, opts ...Option) *Registry {
	r := &Registry{
		surface:       surface,
		cameras:       make(map[calculator.Coord]placed),
		pois:          make(map[calculator.Coord]placed),
		constructions: make(map[calculator.Coord]placed),
		firstStart:    true,
		drawRects:     true,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.runner = saga.NewRunner().WithLogger(r.logger)
	return r
}

// Compile-time interface checks.
var (
	_ mapview.Drawer        = (*Registry)(nil)
	_ mapview.MarkerRemover = (*Registry)(nil)
)

// Cameras returns the number of rendered camera markers.
func (r *Registry) Cameras() int { return len(r.cameras) }

// POIs returns the number of rendered POI markers.
func (r *Registry) POIs() int { return len(r.pois) }

// ConstructionAreas returns the number of rendered construction markers.
func (r *Registry) ConstructionAreas() int { return len(r.constructions) }

// Camera returns the camera marker rendered at lat, lon.
func (r *Registry) Camera(lat, lon float64) (Marker, bool) {
	p, ok := r.cameras[calculator.Coord{Lat: lat, Lon: lon}]
	return p.marker, ok
}

// POI returns the POI marker rendered at lat, lon.
func (r *Registry) POI(lat, lon float64) (Marker, bool) {
	p, ok := r.pois[calculator.Coord{Lat: lat, Lon: lon}]
	return p.marker, ok
}

// DrawMap redraws the car, rectangles, cameras, construction areas and, if
// requested, POIs. Failures of one part do not stop the others.
func (r *Registry) DrawMap(ctx context.Context, dc *mapview.DrawContext, geoRectangleAvailable bool) error {
	var errs []error

	r.DrawCenter(ctx)
	if geoRectangleAvailable && r.drawRects {
		errs = append(errs, r.DrawGeoBounds(ctx, dc))
	}
	errs = append(errs, r.DrawSpeedCams(ctx), r.DrawConstructionAreas(ctx))
	if dc.Trigger == mapview.TriggerDrawPOIs {
		errs = append(errs, r.DrawPOIs(ctx, dc))
	}
	return errors.Join(errs...)
}

// DrawSpeedCams places every pending camera from the live, cloud and local
// database queues. A camera reported by more than one source is placed once.
func (r *Registry) DrawSpeedCams(ctx context.Context) error {
	var batches []AttributeMap
	for _, q := range []*queue.Queue[AttributeMap]{r.osmCams, r.cloudCams, r.dbCams} {
		if q == nil {
			continue
		}
		batches = append(batches, q.ConsumePending()...)
		q.Release()
	}

	var errs []error
	for _, t := range UniqueCameras(batches...) {
		m := Marker{
			Kind:  KindCamera,
			Key:   t.Key,
			Lat:   t.Lat,
			Lon:   t.Lon,
			Icon:  IconFor(t.Key),
			Label: []string{t.Name, t.Direction, t.MaxSpeed, t.MaxSpeedConditional, t.Description},
		}
		if err := r.place(ctx, r.cameras, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DrawConstructionAreas places every pending construction area.
func (r *Registry) DrawConstructionAreas(ctx context.Context) error {
	if r.construction == nil {
		return nil
	}
	batches := r.construction.ConsumePending()
	r.construction.Release()

	var errs []error
	for _, t := range UniqueConstructionAreas(batches...) {
		m := Marker{
			Kind:  KindConstruction,
			Key:   t.Key,
			Lat:   t.Lat,
			Lon:   t.Lon,
			Icon:  IconConstruction,
			Label: []string{t.Construction, t.Name, t.Surface, t.CheckDate},
		}
		if err := r.place(ctx, r.constructions, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DrawPOIs replaces the POI markers with dc.POIs once per batch.
func (r *Registry) DrawPOIs(ctx context.Context, dc *mapview.DrawContext) error {
	if dc.POIsDrawn || len(dc.POIs) == 0 {
		return nil
	}

	var errs []error
	if err := r.clear(r.pois); err != nil {
		errs = append(errs, err)
	}
	for _, poi := range dc.POIs {
		amenity := poi.Tag("amenity")
		m := Marker{
			Kind: KindPOI,
			Lat:  poi.Lat,
			Lon:  poi.Lon,
			Icon: POIIcon(amenity),
			Label: []string{
				amenity,
				poi.Tag("addr:city"),
				poi.Tag("addr:postcode"),
				poi.Tag("addr:street"),
				poi.Tag("name"),
				poi.Tag("phone"),
			},
		}
		if err := r.place(ctx, r.pois, m); err != nil {
			errs = append(errs, err)
		}
	}
	dc.POIsDrawn = true
	return errors.Join(errs...)
}

// DrawCenter moves the view to the car and replaces the car marker.
func (r *Registry) DrawCenter(_ context.Context) {
	p := r.Position()
	if !p.HasCenter {
		if r.logger != nil {
			r.logger.Warn("unable to render center position, no coordinates available")
		}
		return
	}

	zoom := 0
	if r.firstStart {
		zoom = InitialZoom
	}
	r.surface.Center(p.Lat, p.Lon, zoom, r.firstStart)
	r.firstStart = false

	for _, h := range r.car {
		if err := r.surface.RemoveMarker(h); err != nil && r.logger != nil {
			r.logger.Warn("car marker not removed", slog.String("error", err.Error()))
		}
	}
	r.car = r.car[:0]

	h, err := r.surface.AddMarker(Marker{Kind: KindCar, Lat: p.Lat, Lon: p.Lon, Icon: IconCar})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("car marker not placed", slog.String("error", err.Error()))
		}
		return
	}
	r.car = append(r.car, h)
}

// DrawGeoBounds draws the rectangles the calculator asked for. Rectangles
// with a non-finite corner are skipped but still consume a color.
func (r *Registry) DrawGeoBounds(_ context.Context, dc *mapview.DrawContext) error {
	drawRects := dc.TakeRectDraw()
	p := r.Position()
	drawExtrapolated := p.Extrapolated && dc.TakeRectDrawExtrapolated()
	if !drawRects && !drawExtrapolated {
		return nil
	}

	var errs []error
	color := 0
	add := func(rects []Rect, advance bool) {
		for _, rect := range rects {
			if finite(rect) {
				rect.Color = rectColors[color%len(rectColors)]
				h, err := r.surface.AddLayer(rect)
				if err != nil {
					errs = append(errs, fmt.Errorf("add layer %s: %w", rect.Name, err))
				} else {
					r.layers = append(r.layers, h)
				}
			}
			if advance {
				color++
			}
		}
	}
	if drawRects {
		add(p.GeoBounds, true)
	}
	if drawExtrapolated {
		add(p.GeoBoundsExtrapolated, false)
	}
	return errors.Join(errs...)
}

// ClearLayers removes every rectangle layer from the surface.
func (r *Registry) ClearLayers() error {
	var errs []error
	for _, h := range r.layers {
		if err := r.surface.RemoveLayer(h); err != nil {
			errs = append(errs, err)
		}
	}
	r.layers = r.layers[:0]
	return errors.Join(errs...)
}

// place adds m unless a marker of the same category already sits at its
// coordinate.
func (r *Registry) place(ctx context.Context, set map[calculator.Coord]placed, m Marker) error {
	c := m.Coord()
	if _, ok := set[c]; ok {
		observability.LogMarkerSkipped(r.logger, string(m.Kind), m.Key, m.Lat, m.Lon)
		r.metrics.RecordMarker(ctx, string(m.Kind), OutcomeSkipped)
		return nil
	}

	h, err := r.surface.AddMarker(m)
	if err != nil {
		return fmt.Errorf("add %s marker (%f, %f): %w", m.Kind, m.Lat, m.Lon, err)
	}
	set[c] = placed{marker: m, handle: h}
	observability.LogMarkerAdded(r.logger, string(m.Kind), m.Key, m.Lat, m.Lon)
	r.metrics.RecordMarker(ctx, string(m.Kind), OutcomeAdded)
	return nil
}

// clear removes every marker of one category from the surface only.
func (r *Registry) clear(set map[calculator.Coord]placed) error {
	var errs []error
	for c, p := range set {
		if err := r.surface.RemoveMarker(p.handle); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(set, c)
	}
	return errors.Join(errs...)
}

func finite(rect Rect) bool {
	for _, v := range []float64{rect.Lat1, rect.Lon1, rect.Lat2, rect.Lon2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
