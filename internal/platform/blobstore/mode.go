package blobstore

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Mode string

const (
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeSFTP        Mode = "sftp"
	ModeMemory      Mode = "memory"
)

type SFTPConfig struct {
	Addr     string
	User     string
	Password string
	Root     string
}

type Config struct {
	Mode                  Mode
	Bucket                string
	CDNDomain             string
	EmulatorHost          string
	PublicBaseURL         string
	SFTP                  SFTPConfig
	CompatibilityFallback bool
}

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeGCS, ModeGCSEmulator, ModeSFTP, ModeMemory:
		return true
	default:
		return false
	}
}

func (cfg Config) IsEmulatorMode() bool { return cfg.Mode == ModeGCSEmulator }

func (cfg Config) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode          ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingBucket        ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost  ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost  ConfigErrorCode = "invalid_emulator_host"
	ConfigErrorMissingSFTPAddr      ConfigErrorCode = "missing_sftp_addr"
	ConfigErrorMissingPublicBaseURL ConfigErrorCode = "missing_public_base_url"
	ConfigErrorInvalidPublicBaseURL ConfigErrorCode = "invalid_public_base_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q, %q)",
			e.Mode, ModeGCS, ModeGCSEmulator, ModeSFTP, ModeMemory,
		)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires LECTURE_GCS_BUCKET_NAME to be set", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ConfigErrorMissingSFTPAddr:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires SFTP_ADDR to be set", ModeSFTP)
	case ConfigErrorMissingPublicBaseURL:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires OBJECT_STORAGE_PUBLIC_BASE_URL to be set", e.Mode)
	case ConfigErrorInvalidPublicBaseURL:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like https://media.example.com", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveConfigFromEnv reads OBJECT_STORAGE_MODE and its mode-specific variables.
// With no explicit mode, a set STORAGE_EMULATOR_HOST selects the emulator.
func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		Bucket:        strings.TrimSpace(os.Getenv("LECTURE_GCS_BUCKET_NAME")),
		CDNDomain:     strings.TrimSpace(os.Getenv("LECTURE_CDN_DOMAIN")),
		EmulatorHost:  strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")),
		PublicBaseURL: strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL")),
		SFTP: SFTPConfig{
			Addr:     strings.TrimSpace(os.Getenv("SFTP_ADDR")),
			User:     strings.TrimSpace(os.Getenv("SFTP_USER")),
			Password: os.Getenv("SFTP_PASSWORD"),
			Root:     strings.TrimSpace(os.Getenv("SFTP_ROOT")),
		},
	}

	rawMode := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	mode := Mode(strings.ToLower(rawMode))
	switch mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ModeGCS
		}
	case ModeGCS, ModeGCSEmulator, ModeSFTP, ModeMemory:
		cfg.Mode = mode
	default:
		return cfg, &ConfigError{Code: ConfigErrorInvalidMode, Mode: rawMode}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if !IsSupportedMode(cfg.Mode) {
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.PublicBaseURL != "" && !isAbsoluteURL(cfg.PublicBaseURL) {
		return &ConfigError{Code: ConfigErrorInvalidPublicBaseURL, Mode: string(cfg.Mode), Value: cfg.PublicBaseURL}
	}

	switch cfg.Mode {
	case ModeGCS:
		if cfg.Bucket == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
	case ModeGCSEmulator:
		if cfg.Bucket == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
		if cfg.EmulatorHost == "" {
			return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
		}
		if !isAbsoluteURL(cfg.EmulatorHost) {
			return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Mode: string(cfg.Mode), Value: cfg.EmulatorHost}
		}
	case ModeSFTP:
		if cfg.SFTP.Addr == "" {
			return &ConfigError{Code: ConfigErrorMissingSFTPAddr, Mode: string(cfg.Mode)}
		}
		if cfg.PublicBaseURL == "" {
			return &ConfigError{Code: ConfigErrorMissingPublicBaseURL, Mode: string(cfg.Mode)}
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
