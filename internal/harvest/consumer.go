package harvest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/queue"
)

// Driver feeds queued addresses into the submission workflow.
type Driver struct {
	log       *slog.Logger
	submitter Submitter
	metrics   *metrics.Metrics
}

// NewDriver creates a Driver.
func NewDriver(log *slog.Logger, submitter Submitter, metrics *metrics.Metrics) *Driver {
	return &Driver{log: log, submitter: submitter, metrics: metrics}
}

// ProcessAll drains in until it is completed and empty, submitting every
// address in publish order. Failed submissions are logged and dropped; they
// never stop the drain. It returns the addresses that were submitted.
func (d *Driver) ProcessAll(ctx context.Context, in *queue.Queue[models.Address]) ([]models.Address, error) {
	d.metrics.ActiveTasks.Inc()
	defer d.metrics.ActiveTasks.Dec()

	var submitted []models.Address

	for address := range in.Drain(ctx) {
		if err := d.submitter.Submit(ctx, address); err != nil {
			d.metrics.Submissions.WithLabelValues("failure").Inc()
			d.log.ErrorContext(ctx, "Submission failed",
				"phase", models.PhaseSubmission,
				"address", address.FormattedAddress(),
				"reason", err,
			)
			continue
		}

		d.metrics.Submissions.WithLabelValues("success").Inc()
		d.log.InfoContext(ctx, "Application submitted",
			"address", address.FormattedAddress(),
			"city", address.City,
			"state", address.State,
			"zip", address.Zip5,
		)
		submitted = append(submitted, address)
	}

	if err := ctx.Err(); err != nil {
		return submitted, fmt.Errorf("submission drain interrupted: %w", err)
	}

	return submitted, nil
}
