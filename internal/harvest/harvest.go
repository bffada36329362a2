// Package harvest holds both halves of a sweep cycle: the Harvester queries
// the directory and publishes resolved addresses, and the Driver drains them
// into the submission workflow.
package harvest

import (
	"context"

	"github.com/UnknownOlympus/iris/internal/models"
)

// Directory is the remote target directory.
type Directory interface {
	ListTargets(ctx context.Context, bounds models.Bounds, limit int) ([]models.Target, error)
	AddressDetails(ctx context.Context, targetID int) ([]models.Address, error)
}

// Submitter runs the external submission workflow for one address. A nil
// error means the submission went through.
type Submitter interface {
	Submit(ctx context.Context, address models.Address) error
}

// Skip reasons used in logs and metrics.
const (
	reasonFetchError = "fetch_error"
	reasonNoAddress  = "no_address"
	reasonMultiUnit  = "multi_unit"
	reasonDuplicate  = "duplicate"
)
