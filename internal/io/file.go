package ioutils

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// tempPattern names in-flight downloads. The leading dot keeps them out of
// casual directory listings.
const tempPattern = ".apkpure-dl-*"

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether dir/name is present.
func Exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// WriteStream writes r to dir/name and returns the number of bytes written.
//
// Returned errors wrap fs.ErrExist when the destination is already present
// and fs.ErrPermission when the directory cannot be written. Any other error
// (read failures, cancellation, disk full) is returned wrapped as is.
func WriteStream(ctx context.Context, r io.Reader, dir, name string) (int64, error) {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		return 0, &fs.PathError{Op: "write", Path: dest, Err: fs.ErrExist}
	}

	file, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		// Close after a successful Close reports os.ErrClosed; nothing to do.
		_ = file.Close()
		if !successful {
			_ = os.Remove(file.Name())
		}
	}()

	n, err := io.Copy(file, &contextReader{ctx: ctx, r: r})
	if err != nil {
		return n, fmt.Errorf("copying body: %w", err)
	}

	if err := file.Sync(); err != nil {
		return n, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}

	// Another writer may have finished first.
	if _, err := os.Stat(dest); err == nil {
		return n, &fs.PathError{Op: "write", Path: dest, Err: fs.ErrExist}
	}
	if err := os.Rename(file.Name(), dest); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true
	return n, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
