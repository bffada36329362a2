package viewstate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/UnknownOlympus/iris/internal/geocoding"
	"github.com/UnknownOlympus/iris/internal/models"
)

// ErrInvalidSelection is returned for input that is neither coordinates nor a resolvable place.
var ErrInvalidSelection = errors.New("invalid selection")

// Prompt asks an operator for the next area. Accepted input is "lat,lng",
// "lat,lng,zoom" or a place name when a geocoder is configured. A blank line
// or end of input means the operator is done.
type Prompt struct {
	mu       sync.Mutex
	out      io.Writer
	geocoder geocoding.Provider
	zoom     int
	viewport models.Viewport
	current  *models.Bounds
	log      *slog.Logger

	lines   chan string
	started sync.Once
	in      io.Reader
}

// NewPrompt reads selections from in and writes prompts to out. geocoder may be nil.
func NewPrompt(
	in io.Reader,
	out io.Writer,
	geocoder geocoding.Provider,
	zoom int,
	viewport models.Viewport,
	log *slog.Logger,
) *Prompt {
	return &Prompt{
		in:       in,
		out:      out,
		geocoder: geocoder,
		zoom:     models.ClampZoom(zoom),
		viewport: viewport,
		log:      log,
		lines:    make(chan string),
	}
}

// WaitForSelection returns true once the operator has chosen an area. A
// non-blocking call keeps the current area when there is one.
func (p *Prompt) WaitForSelection(ctx context.Context, blocking bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !blocking && p.current != nil {
		return true
	}

	p.started.Do(p.startReader)

	for {
		fmt.Fprint(p.out, "Next area (lat,lng[,zoom] or place, blank to finish): ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return false
		case line, ok = <-p.lines:
		}

		line = strings.TrimSpace(line)
		if !ok || line == "" {
			p.log.InfoContext(ctx, "Operator finished the sweep", "phase", models.PhaseViewState)
			return false
		}

		bounds, err := p.parse(ctx, line)
		if err != nil {
			p.log.WarnContext(ctx, "Could not use selection", "phase", models.PhaseViewState, "input", line, "error", err)
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}

		p.current = &bounds
		return true
	}
}

// CurrentBounds returns the last selected area.
func (p *Prompt) CurrentBounds(_ context.Context) (models.Bounds, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return models.Bounds{}, false
	}

	return *p.current, true
}

// RecenterOn makes bounds the current area, so a later non-blocking refresh
// continues from a widened view.
func (p *Prompt) RecenterOn(ctx context.Context, bounds models.Bounds) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = &bounds
	p.log.DebugContext(ctx, "Recentered", "phase", models.PhaseViewState, "bounds", bounds.String())

	return nil
}

// startReader feeds lines from the input into p.lines until EOF. The reader
// goroutine outlives a cancelled selection since a blocked Read cannot be interrupted.
func (p *Prompt) startReader() {
	go func() {
		defer close(p.lines)

		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()
}

func (p *Prompt) parse(ctx context.Context, line string) (models.Bounds, error) {
	if parts := strings.Split(line, ","); len(parts) == 3 {
		coords, err := models.ParseCoordinates(parts[0] + "," + parts[1])
		zoom, zoomErr := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err == nil && zoomErr == nil {
			return models.NewBounds(coords, zoom, p.viewport), nil
		}
	}

	if coords, err := models.ParseCoordinates(line); err == nil {
		return models.NewBounds(coords, p.zoom, p.viewport), nil
	}

	if p.geocoder == nil {
		return models.Bounds{}, fmt.Errorf("%w: %q is not \"lat,lng\"", ErrInvalidSelection, line)
	}

	coords, err := p.geocoder.Geocode(ctx, line)
	if err != nil {
		return models.Bounds{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	return models.NewBounds(*coords, p.zoom, p.viewport), nil
}
