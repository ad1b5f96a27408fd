// Package archive keeps raw notification batches on Google Cloud Storage
// and reads them back by gs:// URI.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ErrInvalidURI is returned for URIs that are not gs://bucket/object.
var ErrInvalidURI = errors.New("invalid GCS URI")

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// Store provides raw batch storage. This interface enables mocking of the
// archive in ingestion tests.
type Store interface {
	// Put uploads a raw batch and returns its gs:// URI.
	Put(ctx context.Context, text string) (string, error)

	// Fetch downloads the bytes behind a gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// GCS is the Cloud Storage implementation of Store.
type GCS struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// New creates a GCS archive writing to bucket. It assumes Application
// Default Credentials are configured.
func New(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive.New: creating storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, now: time.Now}, nil
}

// Close closes the storage client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Put uploads text under raw/YYYY/MM/DD/<uuid>.txt.
func (g *GCS) Put(ctx context.Context, text string) (string, error) {
	object := ObjectPath(g.now(), uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	if _, err := io.Copy(w, strings.NewReader(text)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Put: copy to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Put: finalize upload: %w", err)
	}
	return URI(g.bucket, object), nil
}

// Fetch downloads the bytes behind uri. The object may live in any bucket.
func (g *GCS) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ObjectPath returns the object name of a batch archived at t.
func ObjectPath(t time.Time, id string) string {
	t = t.UTC()
	return fmt.Sprintf("raw/%04d/%02d/%02d/%s.txt", t.Year(), int(t.Month()), t.Day(), id)
}

// URI builds a gs:// URI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// ParseURI splits gs://bucket/path/to/object into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w (no object path): %s", ErrInvalidURI, uri)
	}
	return bucket, object, nil
}

// Filename extracts the base name from a GCS URI,
// e.g. "gs://bucket/raw/2025/10/15/x.txt" → "x.txt".
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	_, object, ok := strings.Cut(trimmed, "/")
	if !ok {
		return trimmed
	}
	return path.Base(object)
}

var _ Store = (*GCS)(nil)
