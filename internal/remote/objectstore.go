package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultPrefix          = "recordings"
	defaultAvailabilityTTL = 30 * time.Second
	availabilityKey        = "available"
)

// ObjectStore replicates into an S3-compatible bucket. Destinations are
// object keys under the configured prefix.
type ObjectStore struct {
	hub
	client *minio.Client
	bucket string
	prefix string
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewObjectStore creates an ObjectStore from cfg. No request is made until
// the store is first used.
func NewObjectStore(cfg Config, logger *slog.Logger) (*ObjectStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("object store: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	ttl := cfg.AvailabilityTTL
	if ttl <= 0 {
		ttl = defaultAvailabilityTTL
	}
	return &ObjectStore{
		hub:    newHub(),
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}, nil
}

// Available reports whether the bucket can be reached, creating it if it is
// missing. The answer is cached so scans do not hit the network every time.
func (s *ObjectStore) Available(ctx context.Context) bool {
	if v, ok := s.cache.Get(availabilityKey); ok {
		return v.(bool)
	}
	ok := s.ensureBucket(ctx) == nil
	s.cache.SetDefault(availabilityKey, ok)
	return ok
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		s.logger.Warn("object store unreachable", "bucket", s.bucket, "error", err)
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		s.logger.Warn("failed to create bucket", "bucket", s.bucket, "error", err)
		return err
	}
	s.logger.Info("created bucket", "bucket", s.bucket)
	return nil
}

// Root returns the key prefix recordings are stored under.
func (s *ObjectStore) Root() string { return s.prefix }

// Remove deletes the object at dst. A missing object is not an error.
func (s *ObjectStore) Remove(ctx context.Context, dst string) error {
	err := s.client.RemoveObject(ctx, s.bucket, dst, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object %s: %w", dst, err)
	}
	return nil
}

// Exists reports whether an object is stored at dst.
func (s *ObjectStore) Exists(ctx context.Context, dst string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, dst, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Copy opens src and uploads it in the background, publishing progress as
// minio reports bytes sent.
func (s *ObjectStore) Copy(ctx context.Context, src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat source: %w", err)
	}

	go func() {
		defer f.Close()
		progress := &progressReader{hub: s.hub, dst: dst, total: info.Size()}
		_, err := s.client.PutObject(ctx, s.bucket, dst, f, info.Size(), minio.PutObjectOptions{
			ContentType: "text/csv",
			Progress:    progress,
		})
		if err != nil {
			s.logger.Warn("object upload failed", "bucket", s.bucket, "key", dst, "error", err)
			s.failed(dst, err)
			return
		}
		s.logger.Debug("object upload complete", "bucket", s.bucket, "key", dst, "bytes", info.Size())
		s.uploaded(dst)
	}()
	return nil
}

// progressReader is handed to minio, which reads from it as many bytes as it
// has sent. Each read becomes a progress event.
type progressReader struct {
	hub   hub
	dst   string
	total int64
	sent  atomic.Int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n := len(b)
	done := p.sent.Add(int64(n))
	if p.total > 0 && done > p.total {
		done = p.total
	}
	p.hub.progress(p.dst, done, p.total)
	return n, nil
}
