package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	lecturehttp "github.com/yungbote/lecture-studio/internal/http"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

func TestNewWithLoggerMemoryStorage(t *testing.T) {
	setStorageEnv(t, map[string]string{
		"OBJECT_STORAGE_MODE":            "memory",
		"OBJECT_STORAGE_PUBLIC_BASE_URL": "http://assets.local",
	})
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg := DefaultConfig()
	cfg.StateDir = t.TempDir()
	cfg.ServiceName = ""

	a, err := NewWithLogger(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithLogger: %v", err)
	}
	defer a.Close()

	if a.Runner == nil || a.Pipeline == nil {
		t.Fatalf("pipeline not wired")
	}
	if a.Clients.SSEBus != nil {
		t.Fatalf("redis bus: want=nil without REDIS_ADDR")
	}
	if _, ok := a.Runner.Current(); ok {
		t.Fatalf("current run: want none")
	}
	if err := a.StartForwarder(context.Background()); err != nil {
		t.Fatalf("StartForwarder without bus: %v", err)
	}

	engine := lecturehttp.NewRouter(a.Router)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=%d got=%d", http.StatusOK, rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/grades", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("grades: want=%d got=%d body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestNewWithLoggerStorageFailure(t *testing.T) {
	setStorageEnv(t, map[string]string{"OBJECT_STORAGE_MODE": "floppy"})
	cfg := DefaultConfig()
	cfg.StateDir = t.TempDir()

	if _, err := NewWithLogger(context.Background(), logger.Nop(), cfg); storageProviderBootstrapErrorCode(err) != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("want invalid_mode bootstrap error, got=%v", err)
	}
}
