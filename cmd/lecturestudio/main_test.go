package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/services"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeyCommandsRoundTrip(t *testing.T) {
	t.Setenv("LECTURESTUDIO_CONFIG", "")
	t.Setenv("LECTURESTUDIO_STATE_DIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	out, err := runCLI(t, "", "key", "status")
	if err != nil {
		t.Fatalf("key status: %v", err)
	}
	if !strings.Contains(out, "available: no") {
		t.Fatalf("key status before set: got=%q", out)
	}

	if _, err := runCLI(t, "AIza-test-key\n", "key", "set"); err != nil {
		t.Fatalf("key set: %v", err)
	}
	out, _ = runCLI(t, "", "key", "status")
	if !strings.Contains(out, "available: yes") {
		t.Fatalf("key status after set: got=%q", out)
	}

	if _, err := runCLI(t, "", "key", "clear"); err != nil {
		t.Fatalf("key clear: %v", err)
	}
	out, _ = runCLI(t, "", "key", "status")
	if !strings.Contains(out, "available: no") {
		t.Fatalf("key status after clear: got=%q", out)
	}
}

func TestKeySetRejectsEmpty(t *testing.T) {
	t.Setenv("LECTURESTUDIO_CONFIG", "")
	t.Setenv("LECTURESTUDIO_STATE_DIR", t.TempDir())
	if _, err := runCLI(t, "\n", "key", "set"); err == nil {
		t.Fatalf("key set with empty input: want error")
	}
}

func TestGenerateRequiresPlan(t *testing.T) {
	t.Setenv("LECTURESTUDIO_CONFIG", "")
	t.Setenv("LECTURESTUDIO_STATE_DIR", t.TempDir())
	_, err := runCLI(t, "", "generate")
	if err == nil || !strings.Contains(err.Error(), "--plan") {
		t.Fatalf("generate without plan: want --plan error, got=%v", err)
	}
}

func TestSourceFromArg(t *testing.T) {
	if got := sourceFromArg("https://example.com/plan.json"); got.URL != "https://example.com/plan.json" || got.Path != "" {
		t.Fatalf("url source: got=%+v", got)
	}
	if got := sourceFromArg(" plans/photosynthesis.json "); got.Path != "plans/photosynthesis.json" || got.URL != "" {
		t.Fatalf("path source: got=%+v", got)
	}
}

func TestBundleRoundTripAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "photosynthesis-basics.json")
	b := bundleFile{
		Slug: "photosynthesis-basics",
		Plan: domain.LecturePlan{
			UnitTitle:        "Photosynthesis Basics",
			Grade:            "5",
			ContentAndThemes: []domain.Topic{{Theme: "Light", Details: "Plants capture light."}},
		},
		Assets: &domain.GeneratedAssets{VideoURL: "http://assets.local/v.mp4", AudioURLs: []string{"http://assets.local/a.wav"}},
	}
	if err := writeBundle(path, b); err != nil {
		t.Fatalf("writeBundle: %v", err)
	}
	got, err := readBundle(path)
	if err != nil {
		t.Fatalf("readBundle: %v", err)
	}
	if got.Slug != b.Slug || got.Assets.VideoURL != b.Assets.VideoURL {
		t.Fatalf("bundle: want=%+v got=%+v", b, got)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"slug":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readBundle(bad); err == nil {
		t.Fatalf("readBundle without assets: want error")
	}
}

func TestCatalogTables(t *testing.T) {
	if got := gradesTable(nil); got != "No grades published yet\n" {
		t.Fatalf("empty grades: got=%q", got)
	}
	out := lecturesTable([]services.LectureInfo{{ID: "photosynthesis-basics", Title: "Photosynthesis Basics", URL: "http://assets.local/lectures/5/photosynthesis-basics.html"}})
	if !strings.Contains(out, "Photosynthesis Basics") || !strings.Contains(out, "photosynthesis-basics.html") {
		t.Fatalf("lectures table: got=%q", out)
	}
}
