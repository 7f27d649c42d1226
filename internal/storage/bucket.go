package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// contentType is the media type stored with every object.
const contentType = "application/vnd.android.package-archive"

// Opener returns the body of a download URL. The caller closes it.
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Bucket writes downloads into a blob bucket.
type Bucket struct {
	bucket *blob.Bucket
	opener Opener
	owned  bool
}

// Open opens the bucket at bucketURL. Close releases it.
func Open(ctx context.Context, bucketURL string, opener Opener) (*Bucket, error) {
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %q: %w", bucketURL, err)
	}
	return &Bucket{bucket: b, opener: opener, owned: true}, nil
}

// New wraps an already open bucket. Closing the Bucket leaves b open.
func New(b *blob.Bucket, opener Opener) *Bucket {
	return &Bucket{bucket: b, opener: opener}
}

// Close releases the bucket if it was opened by Open.
func (b *Bucket) Close() error {
	if !b.owned {
		return nil
	}
	return b.bucket.Close()
}

// DownloadFile streams url into the object dir/filename. dir is a key
// prefix inside the bucket; "", "." and "/" mean the bucket root.
func (b *Bucket) DownloadFile(ctx context.Context, url, dir, filename string) error {
	key := objectKey(dir, filename)

	exists, err := b.bucket.Exists(ctx, key)
	if err != nil {
		return classify(key, err)
	}
	if exists {
		return &fs.PathError{Op: "download", Path: key, Err: fs.ErrExist}
	}

	body, err := b.opener.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	// Cancelling the writer's context before Close aborts the write.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.bucket.NewWriter(wctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return classify(key, err)
	}

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return classify(key, err)
	}
	return nil
}

// objectKey joins dir and filename into a bucket key. Keys never start
// with a slash, so an absolute output path maps onto a plain prefix.
func objectKey(dir, filename string) string {
	return strings.TrimLeft(path.Join(dir, filename), "/")
}

// classify maps gocloud error codes onto the fs sentinels the retry logic
// understands.
func classify(key string, err error) error {
	switch gcerrors.Code(err) {
	case gcerrors.PermissionDenied:
		return &fs.PathError{Op: "write", Path: key, Err: fmt.Errorf("%w: %w", fs.ErrPermission, err)}
	case gcerrors.AlreadyExists, gcerrors.FailedPrecondition:
		return &fs.PathError{Op: "write", Path: key, Err: fmt.Errorf("%w: %w", fs.ErrExist, err)}
	}
	return fmt.Errorf("bucket %s: %w", key, err)
}
