package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/queue"
)

// DefaultTargetLimit is the result limit sent with every target query.
const DefaultTargetLimit = 10000

// Result summarizes one harvest.
type Result struct {
	Fetched   int // Fetched is the number of targets the directory returned.
	Eligible  int // Eligible is the number of targets that passed the filter.
	Published int // Published is the number of addresses handed to the queue.
}

// Harvester resolves the eligible targets of a view into addresses.
type Harvester struct {
	log       *slog.Logger
	directory Directory
	metrics   *metrics.Metrics
	limit     int
}

// NewHarvester creates a Harvester. A non-positive limit falls back to DefaultTargetLimit.
func NewHarvester(log *slog.Logger, directory Directory, metrics *metrics.Metrics, limit int) *Harvester {
	if limit <= 0 {
		limit = DefaultTargetLimit
	}

	return &Harvester{log: log, directory: directory, metrics: metrics, limit: limit}
}

// Harvest lists the targets inside bounds, filters them and publishes every
// target that resolves to exactly one address, as soon as it resolves.
// Targets resolving to zero or several addresses are skipped, as are
// addresses listed in exclude. A failed detail fetch only skips that target.
//
// The queue is completed exactly once when Harvest returns, whatever the outcome.
func (h *Harvester) Harvest(
	ctx context.Context,
	bounds models.Bounds,
	out *queue.Queue[models.Address],
	exclude map[int]struct{},
) (Result, error) {
	defer out.Complete()

	h.metrics.ActiveTasks.Inc()
	defer h.metrics.ActiveTasks.Dec()

	var result Result

	startTime := time.Now()
	targets, err := h.directory.ListTargets(ctx, bounds, h.limit)
	h.metrics.RequestSeconds.WithLabelValues("targets").Observe(time.Since(startTime).Seconds())
	if err != nil {
		h.metrics.APIErrors.WithLabelValues("targets").Inc()
		h.log.ErrorContext(ctx, "Failed to list targets", "phase", models.PhaseHarvest, "error", err)
		return result, fmt.Errorf("failed to harvest %s: %w", bounds, err)
	}

	eligible := Eligible(targets)
	result.Fetched = len(targets)
	result.Eligible = len(eligible)
	h.metrics.Targets.WithLabelValues("eligible").Add(float64(len(eligible)))
	h.metrics.Targets.WithLabelValues("filtered").Add(float64(len(targets) - len(eligible)))

	h.log.InfoContext(ctx, "Found targets", "total", len(targets), "eligible", len(eligible), "zoom", bounds.Zoom)

	for _, target := range eligible {
		if ctx.Err() != nil {
			h.log.WarnContext(ctx, "Harvest interrupted", "phase", models.PhaseHarvest, "published", result.Published)
			return result, ctx.Err()
		}

		address, ok := h.resolve(ctx, target, exclude)
		if !ok {
			continue
		}

		out.Publish(address)
		result.Published++
		h.metrics.AddressesPublished.Inc()

		h.log.InfoContext(ctx, "Queued up submission",
			"target", target.ID,
			"address", address.FormattedAddress(),
			"lat", address.Latitude,
			"lng", address.Longitude,
		)
	}

	h.log.InfoContext(ctx, "Harvest finished", "published", result.Published, "eligible", result.Eligible)

	return result, nil
}

// resolve fetches the address of one target. ok is false when the target has to be skipped.
func (h *Harvester) resolve(ctx context.Context, target models.Target, exclude map[int]struct{}) (models.Address, bool) {
	startTime := time.Now()
	addresses, err := h.directory.AddressDetails(ctx, target.ID)
	h.metrics.RequestSeconds.WithLabelValues("addresses").Observe(time.Since(startTime).Seconds())

	if err != nil {
		h.metrics.APIErrors.WithLabelValues("addresses").Inc()
		h.skip(ctx, target, reasonFetchError, "error", err)
		return models.Address{}, false
	}

	// TODO: support multi-unit buildings once the submission workflow can pick a unit.
	switch len(addresses) {
	case 0:
		h.skip(ctx, target, reasonNoAddress)
		return models.Address{}, false
	case 1:
	default:
		h.skip(ctx, target, reasonMultiUnit, "addresses", len(addresses))
		return models.Address{}, false
	}

	address := addresses[0]
	if _, seen := exclude[address.ID]; seen {
		h.skip(ctx, target, reasonDuplicate, "address", address.ID)
		return models.Address{}, false
	}

	return address, true
}

func (h *Harvester) skip(ctx context.Context, target models.Target, reason string, args ...any) {
	h.metrics.AddressSkips.WithLabelValues(reason).Inc()

	attrs := append([]any{"phase", models.PhaseAddressDetail, "target", target.ID, "reason", reason}, args...)
	if reason == reasonFetchError {
		h.log.WarnContext(ctx, "Skipping target", attrs...)
		return
	}
	h.log.DebugContext(ctx, "Skipping target", attrs...)
}
