package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/iris/internal/harvest"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/output"
	"github.com/UnknownOlympus/iris/internal/queue"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ViewState is the source of the map area to sweep.
type ViewState interface {
	// CurrentBounds returns the area currently shown; ok is false when there is none.
	CurrentBounds(ctx context.Context) (models.Bounds, bool)
	// WaitForSelection returns false when the operator gives up. A
	// non-blocking call may keep the current area.
	WaitForSelection(ctx context.Context, blocking bool) bool
	// RecenterOn moves the view to bounds before a cycle starts.
	RecenterOn(ctx context.Context, bounds models.Bounds) error
}

// CycleRecorder stores per-cycle statistics.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, runID string, stats models.CycleStats, outcome string) error
}

// Summary describes a finished sweep.
type Summary struct {
	RunID     string
	Cycles    int
	Submitted int
}

// SweepService drives the harvest/submit cycle until the view state runs out
// of areas or the failure threshold is reached.
type SweepService struct {
	log       *slog.Logger
	view      ViewState
	harvester *harvest.Harvester
	driver    *harvest.Driver
	sink      output.Sink
	recorder  CycleRecorder
	metrics   *metrics.Metrics
	policy    Policy
	runID     string
	now       func() time.Time
}

// NewSweepService creates a sweep with a fresh run ID. recorder may be nil.
func NewSweepService(
	log *slog.Logger,
	view ViewState,
	harvester *harvest.Harvester,
	driver *harvest.Driver,
	sink output.Sink,
	recorder CycleRecorder,
	metrics *metrics.Metrics,
	policy Policy,
) *SweepService {
	runID := uuid.NewString()

	return &SweepService{
		log:       log.With("run_id", runID),
		view:      view,
		harvester: harvester,
		driver:    driver,
		sink:      sink,
		recorder:  recorder,
		metrics:   metrics,
		policy:    policy,
		runID:     runID,
		now:       time.Now,
	}
}

// RunID identifies this sweep in logs, output files and the audit store.
func (s *SweepService) RunID() string {
	return s.runID
}

// sweep is the mutable state of one Run.
type sweep struct {
	state     State
	bounds    models.Bounds
	carried   *models.Bounds
	refresh   Refresh
	failures  int
	stats     models.CycleStats
	cycle     []models.Address
	submitted []models.Address
	exclude   map[int]struct{}
	cycles    int
}

// Run sweeps until termination and always ends with exactly one final flush
// of everything submitted. Cancelling ctx lets the running cycle finish its
// join and then terminates the sweep.
func (s *SweepService) Run(ctx context.Context) Summary {
	s.log.InfoContext(ctx, "Sweep started", "threshold", s.policy.Threshold)

	run := &sweep{
		state:   AwaitingBounds,
		refresh: RefreshManual,
		exclude: make(map[int]struct{}),
	}

	for run.state != Terminated {
		switch run.state {
		case AwaitingBounds:
			s.awaitBounds(ctx, run)
		case Harvesting:
			s.harvestCycle(ctx, run)
		case Evaluating:
			s.evaluate(ctx, run)
		}
	}

	s.flush(context.WithoutCancel(ctx), run.submitted, true)

	s.log.InfoContext(ctx, "Sweep finished", "cycles", run.cycles, "submitted", len(run.submitted))

	return Summary{RunID: s.runID, Cycles: run.cycles, Submitted: len(run.submitted)}
}

func (s *SweepService) awaitBounds(ctx context.Context, run *sweep) {
	if ctx.Err() != nil {
		run.state = Terminated
		return
	}

	if run.carried != nil {
		run.bounds, run.carried = *run.carried, nil
		run.state = Harvesting
		return
	}

	blocking := run.refresh == RefreshManual
	if !s.view.WaitForSelection(ctx, blocking) {
		s.log.InfoContext(ctx, "No further area selected, ending sweep", "phase", models.PhaseViewState)
		run.state = Terminated
		return
	}

	bounds, ok := s.view.CurrentBounds(ctx)
	if !ok {
		s.log.WarnContext(ctx, "View state has no current area, ending sweep", "phase", models.PhaseViewState)
		run.state = Terminated
		return
	}

	run.bounds = bounds
	run.state = Harvesting
}

// harvestCycle runs the producer and the consumer of one cycle concurrently
// and joins both before evaluation.
func (s *SweepService) harvestCycle(ctx context.Context, run *sweep) {
	run.cycles++
	startedAt := s.now()

	if err := s.view.RecenterOn(ctx, run.bounds); err != nil {
		s.log.WarnContext(ctx, "Failed to recenter view", "phase", models.PhaseViewState, "error", err)
	}

	s.log.InfoContext(ctx, "Starting cycle", "cycle", run.cycles, "bounds", run.bounds.String())

	addresses := queue.New[models.Address]()

	var (
		group     errgroup.Group
		result    harvest.Result
		submitted []models.Address
	)

	group.Go(func() error {
		var err error
		result, err = s.harvester.Harvest(ctx, run.bounds, addresses, run.exclude)
		return err
	})
	group.Go(func() error {
		var err error
		submitted, err = s.driver.ProcessAll(ctx, addresses)
		return err
	})

	if err := group.Wait(); err != nil {
		s.log.WarnContext(ctx, "Cycle finished with errors", "phase", models.PhaseHarvest, "error", err)
	}

	for _, address := range submitted {
		run.exclude[address.ID] = struct{}{}
	}

	run.cycle = submitted
	run.stats = models.CycleStats{
		Bounds:         run.bounds,
		TargetsFetched: result.Fetched,
		Eligible:       result.Eligible,
		Published:      result.Published,
		Submitted:      len(submitted),
		StartedAt:      startedAt,
		Duration:       s.now().Sub(startedAt),
	}
	run.state = Evaluating
}

func (s *SweepService) evaluate(ctx context.Context, run *sweep) {
	decision := s.policy.Evaluate(run.stats, run.failures)

	s.metrics.Cycles.WithLabelValues(decision.Outcome()).Inc()
	s.metrics.ConsecutiveFailures.Set(float64(decision.Failures))

	s.log.InfoContext(ctx, "Cycle evaluated",
		"phase", models.PhaseEvaluate,
		"cycle", run.cycles,
		"submitted", run.stats.Submitted,
		"published", run.stats.Published,
		"outcome", decision.Outcome(),
		"failures", decision.Failures,
	)

	if s.recorder != nil {
		if err := s.recorder.RecordCycle(context.WithoutCancel(ctx), s.runID, run.stats, decision.Outcome()); err != nil {
			s.log.ErrorContext(ctx, "Failed to record cycle", "phase", models.PhaseOutput, "error", err)
		}
	}

	run.submitted = append(run.submitted, run.cycle...)
	if decision.Flush {
		s.flush(context.WithoutCancel(ctx), run.cycle, false)
	}

	switch {
	case decision.Widened:
		s.metrics.ZoomWidenings.Inc()
		s.log.InfoContext(ctx, "Nothing submitted, widening the view",
			"phase", models.PhaseEvaluate, "zoom", decision.Bounds.Zoom)
	case decision.Next == Terminated:
		s.log.WarnContext(ctx, "Failure threshold reached at the widest zoom",
			"phase", models.PhaseEvaluate, "failures", decision.Failures, "threshold", s.policy.Threshold)
	case decision.Refresh == RefreshManual:
		s.log.InfoContext(ctx, "Nothing submitted at the widest zoom, waiting for a new area",
			"phase", models.PhaseEvaluate, "failures", decision.Failures)
	}

	run.failures = decision.Failures
	run.carried = decision.Bounds
	run.refresh = decision.Refresh
	run.cycle = nil
	run.state = decision.Next

	if ctx.Err() != nil {
		s.log.WarnContext(ctx, "Sweep interrupted", "phase", models.PhaseEvaluate, "error", ctx.Err())
		run.state = Terminated
	}
}

func (s *SweepService) flush(ctx context.Context, addresses []models.Address, final bool) {
	if s.sink == nil {
		return
	}

	batch := output.Batch{
		RunID:     s.runID,
		Addresses: models.SortAddresses(addresses),
		Final:     final,
		CreatedAt: s.now(),
	}

	if err := s.sink.Flush(ctx, batch); err != nil {
		s.log.ErrorContext(ctx, "Failed to write submitted addresses",
			"phase", models.PhaseOutput, "final", final, "count", len(addresses), "error", err)
	}
}
