package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/UnknownOlympus/iris/internal/models"
)

// ErrNoFreeFileName is returned when every candidate name for a batch is taken.
var ErrNoFreeFileName = errors.New("no free file name")

// FileSink writes every non-empty batch to a timestamped text file.
type FileSink struct {
	dir string
	log *slog.Logger
}

// NewFileSink creates a FileSink writing into dir. The directory is created on first use.
func NewFileSink(dir string, log *slog.Logger) *FileSink {
	if dir == "" {
		dir = "."
	}

	return &FileSink{dir: dir, log: log}
}

// maxNameAttempts bounds the search for a free file name within one second.
const maxNameAttempts = 100

// Flush implements Sink. Existing files are never overwritten.
func (fs *FileSink) Flush(ctx context.Context, batch Batch) (err error) {
	if len(batch.Addresses) == 0 {
		fs.log.DebugContext(ctx, "Nothing to write", "phase", models.PhaseOutput, "final", batch.Final)
		return nil
	}

	if err = os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := fs.create(batch)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close addresses file: %w", closeErr))
		}
	}()

	fs.log.InfoContext(ctx, "Created addresses file", "path", file.Name(), "addresses", len(batch.Addresses))

	writer := bufio.NewWriter(file)
	for _, line := range FormatLines(batch.Addresses) {
		if _, err = writer.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write addresses file: %w", err)
		}
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to write addresses file: %w", err)
	}

	return nil
}

// create opens the first unused name for batch.
func (fs *FileSink) create(batch Batch) (*os.File, error) {
	for seq := 1; seq <= maxNameAttempts; seq++ {
		path := filepath.Join(fs.dir, FileName(batch, seq))
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create addresses file: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create addresses file: %w", ErrNoFreeFileName)
}
