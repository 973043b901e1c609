package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/gcp"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/sftpstore"
)

var (
	newBucketStore = func(ctx context.Context, log *logger.Logger, cfg blobstore.Config) (blobstore.Store, error) {
		return gcp.NewBucketStore(ctx, log, cfg)
	}
	newSFTPStore = func(log *logger.Logger, cfg blobstore.Config) (blobstore.Store, error) {
		return sftpstore.New(log, cfg)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorInvalidPublicURL    StorageProviderBootstrapErrorCode = "invalid_public_base_url"
	StorageProviderBootstrapErrorMissingSFTPAddr     StorageProviderBootstrapErrorCode = "missing_sftp_addr"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBlobStore builds the store for OBJECT_STORAGE_MODE. The returned closer may be nil.
func resolveBlobStore(ctx context.Context, log *logger.Logger) (blobstore.Store, io.Closer, error) {
	storageCfg, err := blobstore.ResolveConfigFromEnv()
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", err,
		)
		return nil, nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"compatibility_fallback", storageCfg.CompatibilityFallback,
		"emulator_host", storageCfg.EmulatorHost,
	)

	var store blobstore.Store
	switch storageCfg.Mode {
	case blobstore.ModeMemory:
		return blobstore.NewMemory(storageCfg.PublicBaseURL), nil, nil
	case blobstore.ModeSFTP:
		store, err = newSFTPStore(log, storageCfg)
	default:
		store, err = newBucketStore(ctx, log, storageCfg)
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, nil, classified
	}
	closer, _ := store.(io.Closer)
	return store, closer, nil
}

func classifyStorageProviderBootstrapError(storageCfg blobstore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *blobstore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case blobstore.ConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case blobstore.ConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		case blobstore.ConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case blobstore.ConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case blobstore.ConfigErrorMissingPublicBaseURL, blobstore.ConfigErrorInvalidPublicBaseURL:
			code = StorageProviderBootstrapErrorInvalidPublicURL
		case blobstore.ConfigErrorMissingSFTPAddr:
			code = StorageProviderBootstrapErrorMissingSFTPAddr
		}
	}
	mode := string(storageCfg.Mode)
	if cfgErr != nil && cfgErr.Mode != "" {
		mode = cfgErr.Mode
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
