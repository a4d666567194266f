/*
Package drivealert wires the driving-alert pipeline: the event queues, the
voice worker and the map worker.

# Overview

Sensor and calculation code produces events onto queues. Two long-lived
workers consume them:

  - the voice worker speaks alerts through a voice.Dispatcher, one playback
    at a time
  - the map worker routes map commands through a mapview.Router into the
    markers.Registry, which dedups markers from the live map service, the
    cloud cache and the local database

Both workers share one lifecycle.AppState. Backgrounding the app parks them,
pausing drains their queues without processing, and Shutdown terminates them
after a final drain.

# Basic Usage

	p, err := drivealert.NewPipeline(surface,
	    drivealert.WithLogger(logger),
	    drivealert.WithVoiceOptions(voice.WithPlayer(voice.NewCommandPlayer())),
	)
	if err != nil {
	    log.Fatal(err)
	}

	go func() {
	    if err := p.Run(ctx); err != nil {
	        logger.Error("pipeline stopped", "error", err)
	    }
	}()

	p.UpdatePosition(48.137, 11.575)
	p.Alert(voice.GPSOn)
	p.RequestRedraw()

	_ = p.Shutdown(ctx)

# Queues

The pipeline owns one queue per event category. Producers outside this
package may use the exported queue fields directly; the helper methods cover
the common cases.
*/
package drivealert
