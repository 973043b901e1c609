package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lecture-studio/internal/data/db"
	"github.com/yungbote/lecture-studio/internal/observability"
	"github.com/yungbote/lecture-studio/internal/services"
)

// Duration unmarshals "10s"-style strings or a bare number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d Duration) Std() time.Duration { return time.Duration(d) }

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	ShutdownGrace  Duration `yaml:"shutdown_grace"`
}

type GeminiConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
	// KeyHelper is a command that prints an API key when none is stored.
	KeyHelper string `yaml:"key_helper"`
}

type NarrationConfig struct {
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

type IllustrationConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	ImageSize string `yaml:"image_size"`
}

type VideoConfig struct {
	Model        string   `yaml:"model"`
	Resolution   string   `yaml:"resolution"`
	AspectRatio  string   `yaml:"aspect_ratio"`
	PollInterval Duration `yaml:"poll_interval"`
	PollTimeout  Duration `yaml:"poll_timeout"`
}

type QuizConfig struct {
	Model        string `yaml:"model"`
	Questions    int    `yaml:"questions"`
	AnswerPolicy string `yaml:"answer_policy"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type Config struct {
	Environment       string             `yaml:"environment"`
	LogMode           string             `yaml:"log_mode"`
	ServiceName       string             `yaml:"service_name"`
	StateDir          string             `yaml:"state_dir"`
	HTTP              HTTPConfig         `yaml:"http"`
	Gemini            GeminiConfig       `yaml:"gemini"`
	Narration         NarrationConfig    `yaml:"narration"`
	Illustration      IllustrationConfig `yaml:"illustration"`
	Video             VideoConfig        `yaml:"video"`
	Quiz              QuizConfig         `yaml:"quiz"`
	SeedMaxSide       int                `yaml:"seed_max_side"`
	UploadConcurrency int                `yaml:"upload_concurrency"`
	Database          db.Config          `yaml:"database"`
	Redis             RedisConfig        `yaml:"redis"`

	Tracing observability.TracingConfig `yaml:"tracing"`
}

func DefaultConfig() Config {
	return Config{
		Environment: "development",
		LogMode:     "development",
		ServiceName: "lecture-studio",
		StateDir:    defaultStateDir(),
		HTTP: HTTPConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			ShutdownGrace:  Duration(15 * time.Second),
		},
		Gemini: GeminiConfig{
			BaseURL:    "https://generativelanguage.googleapis.com",
			Timeout:    Duration(10 * time.Minute),
			MaxRetries: 3,
		},
		Narration: NarrationConfig{
			Model: services.DefaultNarrationModel,
			Voice: services.DefaultNarrationVoice,
		},
		Illustration: IllustrationConfig{
			Enabled:   true,
			Model:     services.DefaultIllustrationModel,
			ImageSize: services.DefaultIllustrationSize,
		},
		Video: VideoConfig{
			Model:        services.DefaultVideoModel,
			Resolution:   "720p",
			AspectRatio:  "16:9",
			PollInterval: Duration(services.DefaultVideoPollInterval),
			PollTimeout:  Duration(services.DefaultVideoPollTimeout),
		},
		Quiz: QuizConfig{
			Model:        services.DefaultQuizModel,
			Questions:    services.DefaultQuizQuestions,
			AnswerPolicy: string(services.QuizAnswerPermissive),
		},
		SeedMaxSide:       services.DefaultSeedMaxSide,
		UploadConcurrency: 8,
		Database:          db.Config{Driver: db.DriverPostgres},
		Tracing:           observability.TracingConfig{SampleRatio: observability.DefaultSampleRatio},
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "lecture-studio")
	}
	return ".lecture-studio"
}

// LoadConfig reads the YAML file at path (optional) over the defaults, then applies environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Environment, "LECTURESTUDIO_ENV")
	overrideString(&cfg.LogMode, "LOG_MODE")
	overrideString(&cfg.ServiceName, "OTEL_SERVICE_NAME")
	overrideString(&cfg.StateDir, "LECTURESTUDIO_STATE_DIR")
	overrideString(&cfg.HTTP.Addr, "LECTURESTUDIO_HTTP_ADDR")
	overrideStringSlice(&cfg.HTTP.AllowedOrigins, "LECTURESTUDIO_ALLOWED_ORIGINS")
	overrideDuration(&cfg.HTTP.ShutdownGrace, "LECTURESTUDIO_SHUTDOWN_GRACE")
	overrideString(&cfg.Gemini.BaseURL, "GEMINI_BASE_URL")
	overrideDuration(&cfg.Gemini.Timeout, "GEMINI_TIMEOUT_SECONDS")
	overrideInt(&cfg.Gemini.MaxRetries, "GEMINI_MAX_RETRIES")
	overrideString(&cfg.Gemini.KeyHelper, "LECTURESTUDIO_KEY_HELPER")
	overrideString(&cfg.Narration.Model, "NARRATION_MODEL")
	overrideString(&cfg.Narration.Voice, "NARRATION_VOICE")
	overrideBool(&cfg.Illustration.Enabled, "ILLUSTRATIONS_ENABLED")
	overrideString(&cfg.Illustration.Model, "ILLUSTRATION_MODEL")
	overrideString(&cfg.Video.Model, "VIDEO_MODEL")
	overrideDuration(&cfg.Video.PollInterval, "VIDEO_POLL_INTERVAL")
	overrideDuration(&cfg.Video.PollTimeout, "VIDEO_POLL_TIMEOUT")
	overrideString(&cfg.Quiz.Model, "QUIZ_MODEL")
	overrideInt(&cfg.Quiz.Questions, "QUIZ_QUESTIONS")
	overrideString(&cfg.Quiz.AnswerPolicy, "QUIZ_ANSWER_POLICY")
	overrideInt(&cfg.SeedMaxSide, "SEED_MAX_SIDE")
	overrideInt(&cfg.UploadConcurrency, "UPLOAD_CONCURRENCY")
	overrideString((*string)(&cfg.Database.Driver), "DATABASE_DRIVER")
	overrideString(&cfg.Database.DSN, "DATABASE_DSN")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideInt(&cfg.Redis.DB, "REDIS_DB")
	overrideString(&cfg.Redis.Channel, "REDIS_CHANNEL")
	overrideBool(&cfg.Tracing.Enabled, "OTEL_ENABLED")
	overrideString(&cfg.Tracing.Exporter, "OTEL_TRACES_EXPORTER")
	overrideString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	overrideBool(&cfg.Tracing.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
	overrideFloat(&cfg.Tracing.SampleRatio, "OTEL_SAMPLER_RATIO")
	if value, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_HEADERS"); ok {
		if headers := observability.ParseHeaders(value); headers != nil {
			cfg.Tracing.Headers = headers
		}
	}
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func overrideDuration(target *Duration, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		if parsed, err := parseDuration(value); err == nil {
			*target = Duration(parsed)
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		var trimmed []string
		for _, p := range strings.Split(value, ",") {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.StateDir) == "" {
		return errors.New("state_dir must not be empty")
	}
	if cfg.Quiz.Questions <= 0 {
		return errors.New("quiz.questions must be positive")
	}
	if _, err := services.ParseQuizAnswerPolicy(cfg.Quiz.AnswerPolicy); err != nil {
		return fmt.Errorf("quiz.answer_policy: %w", err)
	}
	if cfg.Video.PollInterval.Std() <= 0 {
		return errors.New("video.poll_interval must be positive")
	}
	if cfg.Video.PollTimeout.Std() < 0 {
		return errors.New("video.poll_timeout must not be negative")
	}
	if cfg.SeedMaxSide <= 0 {
		return errors.New("seed_max_side must be positive")
	}
	if cfg.UploadConcurrency <= 0 {
		return errors.New("upload_concurrency must be positive")
	}
	switch db.Driver(strings.ToLower(string(cfg.Database.Driver))) {
	case db.DriverPostgres, db.DriverSQLite, "":
	default:
		return fmt.Errorf("database.driver: unsupported %q", cfg.Database.Driver)
	}
	if cfg.Tracing.Enabled {
		if err := cfg.Tracing.Validate(); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}
	return nil
}

// CredentialsPath is the JSON file holding the operator's stored API key.
func (cfg Config) CredentialsPath() string {
	return filepath.Join(cfg.StateDir, "credentials.json")
}

// RunLockPath guards against overlapping CLI runs.
func (cfg Config) RunLockPath() string {
	return filepath.Join(cfg.StateDir, "run.lock")
}
