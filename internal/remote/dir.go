package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const defaultChunkSize = 32 * 1024

// Dir replicates into a directory kept in sync by an external agent, such as
// a mounted cloud drive. Destinations are file paths under the root.
type Dir struct {
	hub
	root      string
	chunkSize int
	logger    *slog.Logger
}

// NewDir creates a Dir rooted at root.
func NewDir(root string, logger *slog.Logger) (*Dir, error) {
	if root == "" {
		return nil, errors.New("remote dir: root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("remote dir: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dir{hub: newHub(), root: abs, chunkSize: defaultChunkSize, logger: logger}, nil
}

// Available reports whether the root directory exists.
func (d *Dir) Available(context.Context) bool {
	info, err := os.Stat(d.root)
	return err == nil && info.IsDir()
}

// Root returns the directory recordings are copied into.
func (d *Dir) Root() string { return d.root }

// Remove deletes dst. A missing file is not an error.
func (d *Dir) Remove(_ context.Context, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", dst, err)
	}
	return nil
}

// Copy opens both ends and returns; the bytes are moved in the background
// with progress published per chunk. The file appears under dst only once
// it is complete.
func (d *Dir) Copy(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	info, err := in.Stat()
	if err != nil {
		in.Close()
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		in.Close()
		return fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		in.Close()
		return fmt.Errorf("create destination: %w", err)
	}

	go d.transfer(ctx, in, out, info.Size(), dst)
	return nil
}

func (d *Dir) transfer(ctx context.Context, in, out *os.File, size int64, dst string) {
	defer in.Close()
	partial := out.Name()

	err := d.stream(ctx, in, out, size, dst)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(partial, dst)
	}
	if err != nil {
		os.Remove(partial)
		d.logger.Warn("dir transfer failed", "dst", dst, "error", err)
		d.failed(dst, err)
		return
	}

	d.logger.Debug("dir transfer complete", "dst", dst, "bytes", size)
	d.uploaded(dst)
}

func (d *Dir) stream(ctx context.Context, in io.Reader, out io.Writer, size int64, dst string) error {
	buf := make([]byte, d.chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return err
			}
			written += int64(n)
			d.progress(dst, written, size)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
