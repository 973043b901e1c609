package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

func setStorageEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"OBJECT_STORAGE_MODE", "LECTURE_GCS_BUCKET_NAME", "LECTURE_CDN_DOMAIN", "STORAGE_EMULATOR_HOST",
		"OBJECT_STORAGE_PUBLIC_BASE_URL", "SFTP_ADDR", "SFTP_USER", "SFTP_PASSWORD", "SFTP_ROOT",
	} {
		t.Setenv(k, kv[k])
	}
}

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		src  error
		want StorageProviderBootstrapErrorCode
	}{
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode, Mode: "bad-mode"}, StorageProviderBootstrapErrorInvalidMode},
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidEmulatorHost, Value: "fake-gcs:4443"}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorMissingPublicBaseURL}, StorageProviderBootstrapErrorInvalidPublicURL},
		{&blobstore.ConfigError{Code: blobstore.ConfigErrorMissingSFTPAddr}, StorageProviderBootstrapErrorMissingSFTPAddr},
		{errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(blobstore.Config{Mode: blobstore.ModeGCS}, tc.src)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
		}
		if got.Code != tc.want {
			t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
		}
		if !errors.Is(err, tc.src) {
			t.Fatalf("cause: want wrapped source error")
		}
	}
}

func TestResolveBlobStoreInvalidMode(t *testing.T) {
	setStorageEnv(t, map[string]string{"OBJECT_STORAGE_MODE": "floppy"})
	_, _, err := resolveBlobStore(context.Background(), logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorInvalidMode, got)
	}
}

func TestResolveBlobStoreMemoryMode(t *testing.T) {
	setStorageEnv(t, map[string]string{"OBJECT_STORAGE_MODE": "memory"})
	store, closer, err := resolveBlobStore(context.Background(), logger.Nop())
	if err != nil {
		t.Fatalf("resolveBlobStore: %v", err)
	}
	if _, ok := store.(*blobstore.Memory); !ok || closer != nil {
		t.Fatalf("store: want in-memory store without closer got=%T", store)
	}
}

func TestResolveBlobStoreGCSEmulatorMode(t *testing.T) {
	setStorageEnv(t, map[string]string{
		"LECTURE_GCS_BUCKET_NAME": "lectures",
		"STORAGE_EMULATOR_HOST":   "http://fake-gcs:4443",
	})
	orig := newBucketStore
	t.Cleanup(func() { newBucketStore = orig })

	var captured blobstore.Config
	expected := blobstore.NewMemory("")
	newBucketStore = func(_ context.Context, _ *logger.Logger, cfg blobstore.Config) (blobstore.Store, error) {
		captured = cfg
		return expected, nil
	}

	got, _, err := resolveBlobStore(context.Background(), logger.Nop())
	if err != nil {
		t.Fatalf("resolveBlobStore: %v", err)
	}
	if got != expected {
		t.Fatalf("store: expected stub instance")
	}
	if captured.Mode != blobstore.ModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("mode: want emulator via fallback got=%q fallback=%v", captured.Mode, captured.CompatibilityFallback)
	}
}

func TestResolveBlobStoreConnectFailure(t *testing.T) {
	setStorageEnv(t, map[string]string{
		"OBJECT_STORAGE_MODE":            "sftp",
		"SFTP_ADDR":                      "files.internal",
		"OBJECT_STORAGE_PUBLIC_BASE_URL": "https://media.example.org",
	})
	orig := newSFTPStore
	t.Cleanup(func() { newSFTPStore = orig })
	newSFTPStore = func(*logger.Logger, blobstore.Config) (blobstore.Store, error) {
		return nil, errors.New("ssh: handshake failed")
	}

	_, _, err := resolveBlobStore(context.Background(), logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, got)
	}
}
