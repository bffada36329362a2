// Package viewstate provides headless sources of map views for the sweep:
// a scripted Plan of centers and an interactive Prompt.
package viewstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/iris/internal/models"
)

// Plan walks a fixed list of centers. A blocking selection moves to the next
// center; a non-blocking one re-reads the current center at the initial zoom.
type Plan struct {
	mu       sync.Mutex
	centers  []models.Coordinates
	zoom     int
	viewport models.Viewport
	cursor   int
	log      *slog.Logger
}

// NewPlan creates a plan over centers. zoom is clamped to the supported range.
func NewPlan(centers []models.Coordinates, zoom int, viewport models.Viewport, log *slog.Logger) *Plan {
	return &Plan{
		centers:  centers,
		zoom:     models.ClampZoom(zoom),
		viewport: viewport,
		cursor:   -1,
		log:      log,
	}
}

// WaitForSelection reports whether a view is available. It returns false
// once every center has been visited or ctx is done.
func (p *Plan) WaitForSelection(ctx context.Context, blocking bool) bool {
	if ctx.Err() != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !blocking && p.cursor >= 0 && p.cursor < len(p.centers) {
		return true
	}

	p.cursor++
	if p.cursor >= len(p.centers) {
		p.log.InfoContext(ctx, "Sweep plan exhausted", "phase", models.PhaseViewState, "centers", len(p.centers))
		return false
	}

	p.log.InfoContext(ctx, "Moving to next plan center",
		"phase", models.PhaseViewState,
		"center", p.centers[p.cursor],
		"position", p.cursor+1,
		"of", len(p.centers))

	return true
}

// CurrentBounds returns the window around the current center.
func (p *Plan) CurrentBounds(_ context.Context) (models.Bounds, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor < 0 || p.cursor >= len(p.centers) {
		return models.Bounds{}, false
	}

	return models.NewBounds(p.centers[p.cursor], p.zoom, p.viewport), true
}

// RecenterOn only records the move; a plan has no view to update.
func (p *Plan) RecenterOn(ctx context.Context, bounds models.Bounds) error {
	p.log.DebugContext(ctx, "Recentered", "phase", models.PhaseViewState, "bounds", bounds.String())
	return nil
}
