// Package output writes submitted addresses to their destinations.
package output

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/iris/internal/models"
)

// Batch is one flush: the addresses submitted in a cycle, or the merged set
// of the whole sweep when Final is true.
type Batch struct {
	RunID     string
	Addresses []models.Address // sorted by models.CompareAddresses
	Final     bool
	CreatedAt time.Time
}

// Sink receives flushed batches.
type Sink interface {
	Flush(ctx context.Context, batch Batch) error
}

// Multi fans a batch out to several sinks. Every sink is tried; the errors are joined.
type Multi []Sink

// Flush implements Sink.
func (m Multi) Flush(ctx context.Context, batch Batch) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Flush(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// FormatLines renders addresses grouped by zip: a zip header line followed
// by one tab-indented line per address. Input must already be sorted.
func FormatLines(addresses []models.Address) []string {
	lines := make([]string, 0, len(addresses)*2)

	var pastZip models.Zip5
	for i, address := range addresses {
		if i == 0 || address.Zip5 != pastZip {
			lines = append(lines, string(address.Zip5))
			pastZip = address.Zip5
		}
		lines = append(lines, "\t"+address.FormattedAddress())
	}

	return lines
}

// Render joins FormatLines into a newline terminated text block.
func Render(addresses []models.Address) string {
	lines := FormatLines(addresses)
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// FileName returns the name of the file a batch is written to. seq > 1 marks
// a later batch that would otherwise reuse an existing name.
func FileName(batch Batch, seq int) string {
	name := fmt.Sprintf("Addresses_%s", batch.CreatedAt.Format("06-01-02_15-04-05"))
	if batch.RunID != "" {
		name += "_" + batch.RunID
	}
	if batch.Final {
		name += "_all"
	}
	if seq > 1 {
		name += fmt.Sprintf("_%d", seq)
	}

	return name + ".txt"
}
