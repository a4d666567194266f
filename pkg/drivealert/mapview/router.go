// Package mapview routes map-update commands and POI payloads to the map
// drawer.
//
// The Router is the only goroutine that touches the marker registry. Commands
// that remove markers travel over the map-update queue like redraw requests,
// so registry mutations are serialized without a registry lock.
package mapview

import (
	"context"
	"log/slog"

	daerrors "github.com/randalmurphal/drivealert/pkg/drivealert/errors"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
)

// Drawer redraws the whole map.
type Drawer interface {
	DrawMap(ctx context.Context, dc *DrawContext, geoRectangleAvailable bool) error
}

// DataState reports whether precomputed geo-rectangle data is available.
type DataState interface {
	OSMDataState() bool
}

// VoiceIdle blocks while a voice playback is in flight.
type VoiceIdle interface {
	WaitIdle(ctx context.Context) error
}

// MarkerRemover executes removal commands.
type MarkerRemover interface {
	RemoveCamera(ctx context.Context, lat, lon float64) error
	RemoveAllConstruction(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Router is the map worker component.
type Router struct {
	updates *queue.Queue[Command]
	pois    *queue.Queue[POIPayload]
	dc      *DrawContext

	drawer  Drawer
	data    DataState
	voice   VoiceIdle
	remover MarkerRemover
	admit   func() bool

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithVoiceIdle makes every iteration wait for voice playback to finish.
func WithVoiceIdle(v VoiceIdle) RouterOption {
	return func(r *Router) { r.voice = v }
}

// WithRemover sets the handler for removal commands.
func WithRemover(m MarkerRemover) RouterOption {
	return func(r *Router) { r.remover = m }
}

// WithAdmission sets a gate checked after every consume. Commands consumed
// while it reports false are dropped without drawing.
func WithAdmission(fn func() bool) RouterOption {
	return func(r *Router) { r.admit = fn }
}

// WithDrawContext shares an existing DrawContext.
func WithDrawContext(dc *DrawContext) RouterOption {
	return func(r *Router) {
		if dc != nil {
			r.dc = dc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) RouterOption {
	return func(r *Router) {
		if s != nil {
			r.spans = s
		}
	}
}

// NewRouter creates a Router. data may be nil, in which case geo rectangles
// are reported unavailable.
func NewRouter(updates *queue.Queue[Command], pois *queue.Queue[POIPayload], drawer Drawer, data DataState, opts ...RouterOption) *Router {
	r := &Router{
		updates: updates,
		pois:    pois,
		dc:      NewDrawContext(),
		drawer:  drawer,
		data:    data,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DrawContext returns the router's drawing state.
func (r *Router) DrawContext() *DrawContext {
	return r.dc
}

// Process handles one map-update command together with at most one POI
// payload. It blocks until a command is queued; the POI queue is only
// polled so a redraw request is never held back by an empty POI queue.
func (r *Router) Process(ctx context.Context) error {
	cmd, ok := r.updates.Consume()
	r.updates.Release()
	if !ok {
		return nil
	}
	if r.admit != nil && !r.admit() {
		if r.logger != nil {
			r.logger.Debug("map command dropped while not admitting", slog.String("command", cmd.Kind.String()))
		}
		return nil
	}

	payload, hasPayload := r.pois.TryConsume()
	r.pois.Release()

	if r.voice != nil {
		if err := r.voice.WaitIdle(ctx); err != nil {
			return err
		}
	}

	// A POI batch and an UPDATE command share a single redraw.
	draw := hasPayload && r.applyPayload(payload)
	if draw || cmd.Kind == CommandUpdate {
		if err := r.redraw(ctx); err != nil {
			return err
		}
	}

	switch cmd.Kind {
	case CommandRemoveCamera:
		return r.remove(cmd, func(m MarkerRemover) error { return m.RemoveCamera(ctx, cmd.Lat, cmd.Lon) })
	case CommandRemoveConstructionAreas:
		return r.remove(cmd, func(m MarkerRemover) error { return m.RemoveAllConstruction(ctx) })
	case CommandReset:
		r.dc.Reset()
		return r.remove(cmd, func(m MarkerRemover) error { return m.Reset(ctx) })
	}
	return nil
}

// Drain empties the map-update and POI queues.
func (r *Router) Drain() int {
	return queue.DrainAll(r.updates, r.pois)
}

// applyPayload folds a POI payload into the draw context and reports
// whether the map must be redrawn for it.
func (r *Router) applyPayload(payload POIPayload) bool {
	switch p := payload.(type) {
	case POIBatch:
		r.dc.Trigger = TriggerDrawPOIs
		r.dc.POIs = []POI(p)
		if len(p) > 0 {
			r.dc.POIsDrawn = false
		}
		return true
	case RouteRequest:
		r.dc.Trigger = TriggerCalculateRouteToNearestPOI
		route := p
		r.dc.LastRoute = &route
		if r.logger != nil {
			r.logger.Info("route to nearest poi requested",
				slog.Float64("lat", p.Target.Lat),
				slog.Float64("lon", p.Target.Lon),
			)
		}
	}
	return false
}

// redraw swallows network failures; the next iteration simply redraws again.
func (r *Router) redraw(ctx context.Context) error {
	geo := r.data != nil && r.data.OSMDataState()

	ctx, span := r.spans.StartRedrawSpan(ctx, geo)
	err := r.drawer.DrawMap(ctx, r.dc, geo)
	r.metrics.RecordRedraw(ctx, err == nil)
	r.spans.EndSpanWithError(span, err)

	if err != nil && daerrors.IsRecoverable(err) {
		observability.LogRedrawError(r.logger, err)
		return nil
	}
	return err
}

func (r *Router) remove(cmd Command, fn func(MarkerRemover) error) error {
	if r.remover == nil {
		if r.logger != nil {
			r.logger.Warn("no marker remover configured", slog.String("command", cmd.Kind.String()))
		}
		return nil
	}
	err := fn(r.remover)
	if err != nil && daerrors.Categorize(err) == daerrors.CategoryMissing {
		if r.logger != nil {
			r.logger.Debug("nothing to remove", slog.String("command", cmd.Kind.String()), slog.String("error", err.Error()))
		}
		return nil
	}
	return err
}
