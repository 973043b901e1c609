package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// BucketStore is a blobstore.Store over one GCS bucket (or the fake-gcs emulator).
type BucketStore struct {
	log           *logger.Logger
	client        *storage.Client
	mode          blobstore.Mode
	bucket        string
	cdnDomain     string
	emulatorHost  string
	publicBaseURL string
}

var _ blobstore.Store = (*BucketStore)(nil)

func NewBucketStore(ctx context.Context, log *logger.Logger, cfg blobstore.Config) (*BucketStore, error) {
	if cfg.Mode != blobstore.ModeGCS && cfg.Mode != blobstore.ModeGCSEmulator {
		return nil, &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := blobstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketStore")

	publicBaseURL, publicBaseSource := resolvePublicBaseURL(cfg)
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
		"bucket", cfg.Bucket,
	)

	return &BucketStore{
		log:           serviceLog,
		client:        client,
		mode:          cfg.Mode,
		bucket:        cfg.Bucket,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		publicBaseURL: publicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg blobstore.Config) (*storage.Client, error) {
	switch cfg.Mode {
	case blobstore.ModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case blobstore.ModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func resolvePublicBaseURL(cfg blobstore.Config) (baseURL string, source string) {
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url"
	}
	if cfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), "storage_emulator_host"
	}
	return "", "gcs_default"
}

func (bs *BucketStore) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key = blobstore.CleanKey(key)
	if key == "" {
		return "", errors.New("empty object key")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(bs.bucket).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = blobstore.ContentTypeForKey(key)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	// Republished decks overwrite in place; keep edge caches from serving the old copy.
	if strings.HasSuffix(key, ".html") {
		w.CacheControl = "no-cache"
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("Object uploaded", "key", key, "content_type", contentType)
	return bs.PublicURL(key), nil
}

func (bs *BucketStore) List(ctx context.Context, prefix string) ([]blobstore.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := bs.client.Bucket(bs.bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	out := []blobstore.Entry{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		if attrs.Prefix != "" {
			out = append(out, blobstore.Entry{Key: attrs.Prefix, Prefix: true})
			continue
		}
		out = append(out, blobstore.Entry{Key: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return out, nil
}

func (bs *BucketStore) PublicURL(key string) string {
	key = blobstore.CleanKey(key)
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
	}
	if bs.mode == blobstore.ModeGCSEmulator {
		if u := bs.emulatorMediaURL(key); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, bs.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, key)
}

func (bs *BucketStore) emulatorMediaURL(key string) string {
	base := strings.TrimRight(strings.TrimSpace(bs.publicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(bs.emulatorHost), "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		base,
		url.PathEscape(bs.bucket),
		url.PathEscape(key),
	)
}

func (bs *BucketStore) Close() error {
	if bs == nil || bs.client == nil {
		return nil
	}
	return bs.client.Close()
}
