package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/internal/output"
)

const schema = `
	CREATE TABLE IF NOT EXISTS submitted_addresses (
		run_id       UUID NOT NULL,
		address_id   INTEGER NOT NULL,
		line1        TEXT NOT NULL,
		line2        TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL,
		state        TEXT NOT NULL,
		zip5         CHAR(5) NOT NULL,
		county       TEXT NOT NULL DEFAULT '',
		precinct     TEXT NOT NULL DEFAULT '',
		latitude     DOUBLE PRECISION NOT NULL,
		longitude    DOUBLE PRECISION NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (run_id, address_id)
	);
	CREATE TABLE IF NOT EXISTS sweep_cycles (
		id              BIGSERIAL PRIMARY KEY,
		run_id          UUID NOT NULL,
		zoom            INTEGER NOT NULL,
		north           DOUBLE PRECISION NOT NULL,
		south           DOUBLE PRECISION NOT NULL,
		east            DOUBLE PRECISION NOT NULL,
		west            DOUBLE PRECISION NOT NULL,
		targets_fetched INTEGER NOT NULL,
		eligible        INTEGER NOT NULL,
		published       INTEGER NOT NULL,
		submitted       INTEGER NOT NULL,
		outcome         TEXT NOT NULL,
		started_at      TIMESTAMPTZ NOT NULL,
		duration_ms     BIGINT NOT NULL
	);
`

const insertAddressQuery = `
	INSERT INTO submitted_addresses (
		run_id, address_id, line1, line2, city, state, zip5, county, precinct,
		latitude, longitude, submitted_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (run_id, address_id) DO NOTHING;
`

const insertCycleQuery = `
	INSERT INTO sweep_cycles (
		run_id, zoom, north, south, east, west,
		targets_fetched, eligible, published, submitted,
		outcome, started_at, duration_ms
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

// EnsureSchema creates the audit tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Flush stores the addresses of a cycle batch in one transaction. The final
// batch only repeats what the cycle batches already stored and is ignored.
func (r *Repository) Flush(ctx context.Context, batch output.Batch) (err error) {
	if batch.Final || len(batch.Addresses) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
			}
		}
	}()

	for _, address := range batch.Addresses {
		_, err = tx.Exec(ctx, insertAddressQuery,
			batch.RunID, address.ID, address.Line1, address.Line2, address.City, address.State,
			string(address.Zip5), address.County, address.Precinct,
			address.Latitude, address.Longitude, batch.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert submitted address %d: %w", address.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit submitted addresses: %w", err)
	}

	r.log.DebugContext(ctx, "Stored submitted addresses",
		"phase", models.PhaseOutput, "run_id", batch.RunID, "count", len(batch.Addresses))

	return nil
}

// RecordCycle stores the statistics of one cycle together with the decision taken after it.
func (r *Repository) RecordCycle(ctx context.Context, runID string, stats models.CycleStats, outcome string) error {
	_, err := r.db.Exec(ctx, insertCycleQuery,
		runID, stats.Bounds.Zoom,
		stats.Bounds.North, stats.Bounds.South, stats.Bounds.East, stats.Bounds.West,
		stats.TargetsFetched, stats.Eligible, stats.Published, stats.Submitted,
		outcome, stats.StartedAt, stats.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record sweep cycle: %w", err)
	}

	return nil
}
