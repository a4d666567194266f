package markers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/randalmurphal/drivealert/pkg/drivealert/calculator"
	daerrors "github.com/randalmurphal/drivealert/pkg/drivealert/errors"
	"github.com/randalmurphal/drivealert/pkg/drivealert/observability"
	"github.com/randalmurphal/drivealert/pkg/drivealert/saga"
)

// ErrNotRendered is returned (categorized as missing) when no marker sits
// at the requested coordinate.
var ErrNotRendered = errors.New("no marker at coordinate")

type calcOps struct {
	remove  func(lat, lon float64) (calculator.Entry, bool)
	restore func(calculator.Entry)
}

type calcRemoval struct {
	entry calculator.Entry
	found bool
}

// RemoveCamera removes the camera marker at lat, lon from the calculator,
// the surface and the registry, in that order. If the surface refuses, the
// calculator entry is put back and a *errors.RemovalError is returned.
func (r *Registry) RemoveCamera(ctx context.Context, lat, lon float64) error {
	var ops *calcOps
	if r.calc != nil {
		ops = &calcOps{remove: r.calc.RemoveCamera, restore: r.calc.RestoreCamera}
	}
	return r.removeReconciled(ctx, KindCamera, r.cameras, calculator.Coord{Lat: lat, Lon: lon}, ops)
}

// RemoveConstructionArea removes one construction area marker the same way
// RemoveCamera does.
func (r *Registry) RemoveConstructionArea(ctx context.Context, lat, lon float64) error {
	return r.removeReconciled(ctx, KindConstruction, r.constructions, calculator.Coord{Lat: lat, Lon: lon}, r.constructionOps())
}

// RemoveAllConstruction removes every construction area marker.
func (r *Registry) RemoveAllConstruction(ctx context.Context) error {
	ops := r.constructionOps()
	var errs []error
	for _, c := range sortedCoords(r.constructions) {
		if err := r.removeReconciled(ctx, KindConstruction, r.constructions, c, ops); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemovePOIs removes every POI marker. POIs are not tracked by the calculator.
func (r *Registry) RemovePOIs(_ context.Context) error {
	return r.clear(r.pois)
}

// Reset removes everything from the surface and empties the registry. The
// calculator is left alone; its owner resets it.
func (r *Registry) Reset(_ context.Context) error {
	errs := []error{
		r.clear(r.cameras),
		r.clear(r.constructions),
		r.clear(r.pois),
		r.ClearLayers(),
	}
	for _, h := range r.car {
		errs = append(errs, r.surface.RemoveMarker(h))
	}
	r.car = r.car[:0]
	r.ResetGeoBounds()
	r.firstStart = true
	return errors.Join(errs...)
}

func (r *Registry) constructionOps() *calcOps {
	if r.calc == nil {
		return nil
	}
	return &calcOps{remove: r.calc.RemoveConstructionArea, restore: r.calc.RestoreConstructionArea}
}

func (r *Registry) removeReconciled(ctx context.Context, kind Kind, set map[calculator.Coord]placed, c calculator.Coord, ops *calcOps) error {
	p, ok := set[c]
	if !ok {
		return daerrors.Missing(ErrNotRendered, fmt.Sprintf("remove %s marker (%f, %f)", kind, c.Lat, c.Lon))
	}

	ctx, span := r.spans.StartRemovalSpan(ctx, string(kind), c.Lat, c.Lon)

	def := &saga.Definition{
		Name: "remove-" + string(kind),
		Steps: []saga.Step{
			{
				Name: string(daerrors.PhaseCalculator),
				Handler: func(context.Context, any) (any, error) {
					if ops == nil {
						return calcRemoval{}, nil
					}
					e, found := ops.remove(c.Lat, c.Lon)
					return calcRemoval{entry: e, found: found}, nil
				},
				Compensation: func(_ context.Context, out any) (any, error) {
					if rm, ok := out.(calcRemoval); ok && rm.found {
						ops.restore(rm.entry)
					}
					return nil, nil
				},
			},
			{
				Name: string(daerrors.PhaseSurface),
				Handler: func(_ context.Context, in any) (any, error) {
					return in, r.surface.RemoveMarker(p.handle)
				},
			},
			{
				Name: string(daerrors.PhaseRegistry),
				Handler: func(_ context.Context, in any) (any, error) {
					delete(set, c)
					return in, nil
				},
			},
		},
	}

	exec, err := r.runner.Run(ctx, def, nil)
	if err != nil {
		re := &daerrors.RemovalError{Kind: string(kind), Lat: c.Lat, Lon: c.Lon, Phase: daerrors.PhaseCalculator, Err: err}
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) {
			re.Phase = daerrors.Phase(stepErr.Step)
			re.Compensated = stepErr.Compensated
			re.Err = stepErr.Err
		}
		r.spans.EndSpanWithError(span, re)
		return re
	}
	r.spans.EndSpanWithError(span, nil)

	if rm, _ := exec.Output.(calcRemoval); !rm.found && r.logger != nil {
		r.logger.Debug("calculator had no entry for removed marker",
			slog.String("kind", string(kind)),
			slog.Float64("lat", c.Lat),
			slog.Float64("lon", c.Lon),
		)
	}
	observability.LogMarkerRemoved(r.logger, string(kind), c.Lat, c.Lon)
	r.metrics.RecordMarker(ctx, string(kind), OutcomeRemoved)
	return nil
}

func sortedCoords(set map[calculator.Coord]placed) []calculator.Coord {
	return slices.SortedFunc(maps.Keys(set), func(a, b calculator.Coord) int {
		if a.Lat != b.Lat {
			if a.Lat < b.Lat {
				return -1
			}
			return 1
		}
		if a.Lon < b.Lon {
			return -1
		}
		if a.Lon > b.Lon {
			return 1
		}
		return 0
	})
}
