package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/lecture-studio/internal/observability"
)

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecturestudio.yaml")
	doc := `
state_dir: ` + dir + `
illustration:
  enabled: false
video:
  poll_interval: 5s
  poll_timeout: 0
quiz:
  questions: 3
  answer_policy: repair
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_QUESTIONS", "7")
	t.Setenv("VIDEO_POLL_TIMEOUT", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Illustration.Enabled {
		t.Fatalf("illustration.enabled: want=false got=true")
	}
	if cfg.Video.PollInterval.Std() != 5*time.Second {
		t.Fatalf("video.poll_interval: want=5s got=%s", cfg.Video.PollInterval.Std())
	}
	if cfg.Video.PollTimeout.Std() != 0 {
		t.Fatalf("video.poll_timeout: want=0 got=%s", cfg.Video.PollTimeout.Std())
	}
	if cfg.Quiz.Questions != 7 {
		t.Fatalf("quiz.questions: want=7 got=%d", cfg.Quiz.Questions)
	}
	if cfg.Quiz.AnswerPolicy != "repair" {
		t.Fatalf("quiz.answer_policy: want=repair got=%q", cfg.Quiz.AnswerPolicy)
	}
	if cfg.CredentialsPath() != filepath.Join(dir, "credentials.json") {
		t.Fatalf("credentials path: got=%q", cfg.CredentialsPath())
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"quiz.answer_policy": "quiz:\n  answer_policy: lenient\n",
		"invalid duration":   "video:\n  poll_interval: soon\n",
		"database.driver":    "database:\n  driver: oracle\n",
		"tracing":            "tracing:\n  enabled: true\n  sample_ratio: 2\n",
	}
	for want, doc := range cases {
		path := filepath.Join(dir, strings.ReplaceAll(want, " ", "_")+".yaml")
		if err := os.WriteFile(path, []byte("state_dir: "+dir+"\n"+doc), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		_, err := LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: want error naming it got=%v", want, err)
		}
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("missing file: want error")
	}
}

func TestTracingFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lecturestudio.yaml")
	doc := "state_dir: " + dir + "\ntracing:\n  enabled: true\n  endpoint: collector:4318\n  sample_ratio: 0.25\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer x,bad")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	tr := cfg.Tracing
	if !tr.Enabled || tr.ExporterName() != observability.ExporterOTLP || tr.SampleRatio != 0.25 {
		t.Fatalf("tracing: got=%+v", tr)
	}
	if !tr.Insecure || tr.Headers["authorization"] != "Bearer x" || len(tr.Headers) != 1 {
		t.Fatalf("tracing env overrides: got=%+v", tr)
	}

	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Tracing.SampleRatio != 0.5 {
		t.Fatalf("OTEL_SAMPLER_RATIO: want=0.5 got=%v", cfg.Tracing.SampleRatio)
	}
}

func TestTracingDefaultsOff(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Tracing.Enabled || cfg.Tracing.SampleRatio != observability.DefaultSampleRatio {
		t.Fatalf("default tracing: got=%+v", cfg.Tracing)
	}
}
