package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileWriter writes recording artifacts to local storage.
type FileWriter struct {
	logger *slog.Logger
}

// NewFileWriter creates a FileWriter.
func NewFileWriter(logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileWriter{logger: logger}
}

// Write encodes samples into path. The file is written to a temporary name in
// the same directory and renamed into place, so a failed write never leaves a
// partial artifact behind.
func (w *FileWriter) Write(ctx context.Context, path string, samples []Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, samples); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("move artifact into place: %w", err)
	}

	w.logger.Debug("artifact written", "path", path, "samples", len(samples))
	return nil
}

// Remove deletes the artifact at path. A missing file is not an error.
func (w *FileWriter) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
