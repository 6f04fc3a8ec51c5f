// Package blob stores uploaded objects on the local filesystem, with their
// metadata in the document store, and hands out public URLs for them.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
)

var (
	ErrInvalidName = errors.New("invalid object name")
	ErrTooLarge    = errors.New("object too large")
)

var bucketRe = regexp.MustCompile(`^[a-z0-9_-]{1,63}$`)

// PublicPath is the URL prefix under which objects are served.
const PublicPath = "/storage/v1/object/public/"

// FSStore keeps object bytes under root/{bucket}/{name}.
type FSStore struct {
	root    string
	db      *store.DB
	baseURL string
	maxSize int64
	logger  *zap.Logger
}

// NewFSStore creates a store rooted at root. baseURL is the externally
// reachable address of the HTTP server, e.g. http://127.0.0.1:7420.
func NewFSStore(root string, db *store.DB, baseURL string, maxSize int64, logger *zap.Logger) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSStore{
		root:    root,
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		logger:  logger,
	}, nil
}

// ValidateName checks that bucket/name stays inside its bucket directory.
func ValidateName(bucket, name string) error {
	if !bucketRe.MatchString(bucket) {
		return fmt.Errorf("%w: bucket %q", ErrInvalidName, bucket)
	}
	if name == "" || strings.ContainsAny(name, "\\\x00") || !filepath.IsLocal(name) || filepath.Clean(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *FSStore) path(bucket, name string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(name))
}

// Put writes body as bucket/name. Without upsert an existing object yields
// store.ErrBlobExists. The content is written to a temporary file first so
// readers never see a partial object.
func (s *FSStore) Put(ctx context.Context, meta store.Blob, body io.Reader, upsert bool) (*store.Blob, error) {
	if err := ValidateName(meta.Bucket, meta.Name); err != nil {
		return nil, err
	}
	prev, err := s.db.GetBlob(ctx, meta.Bucket, meta.Name)
	switch {
	case err == nil && !upsert:
		return nil, store.ErrBlobExists
	case errors.Is(err, store.ErrBlobNotFound):
		prev = nil
	case err != nil:
		return nil, err
	}

	dst := s.path(meta.Bucket, meta.Name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp object: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	src := body
	if s.maxSize > 0 {
		src = io.LimitReader(body, s.maxSize+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write object: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return nil, ErrTooLarge
	}

	// The row is written first so a concurrent Put without upsert loses on
	// the unique key before any file is replaced.
	meta.Size = n
	if err := s.db.PutBlob(ctx, &meta, upsert); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		s.restore(ctx, meta, prev)
		return nil, fmt.Errorf("commit object: %w", err)
	}
	s.logger.Debug("object stored", zap.String("bucket", meta.Bucket), zap.String("name", meta.Name), zap.Int64("size", n))
	return &meta, nil
}

// restore puts back the metadata that was current before a failed Put.
func (s *FSStore) restore(ctx context.Context, meta store.Blob, prev *store.Blob) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if prev != nil {
		err = s.db.PutBlob(ctx, prev, true)
	} else {
		err = s.db.DeleteBlob(ctx, meta.Bucket, meta.Name)
	}
	if err != nil {
		s.logger.Error("failed to restore object metadata",
			zap.String("bucket", meta.Bucket), zap.String("name", meta.Name), zap.Error(err))
	}
}

// Open returns the content and metadata of bucket/name. The caller closes
// the file.
func (s *FSStore) Open(ctx context.Context, bucket, name string) (*os.File, *store.Blob, error) {
	if err := ValidateName(bucket, name); err != nil {
		return nil, nil, err
	}
	meta, err := s.db.GetBlob(ctx, bucket, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.path(bucket, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, store.ErrBlobNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return f, meta, nil
}

// PublicURL returns the address at which bucket/name can be downloaded
// without credentials.
func (s *FSStore) PublicURL(bucket, name string) string {
	return PublicURL(s.baseURL, bucket, name)
}

// PublicURL builds the public download address of bucket/name on the server
// at baseURL.
func PublicURL(baseURL, bucket, name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(baseURL, "/") + PublicPath + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
