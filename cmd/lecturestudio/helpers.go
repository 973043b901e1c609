package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/steps"
)

// sourceFromArg treats http(s) values as URLs and everything else as a local path.
func sourceFromArg(raw string) steps.Source {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return steps.Source{URL: raw}
	}
	return steps.Source{Path: raw}
}

// bundleFile is the on-disk record of a ready run, consumed by the publish command.
type bundleFile struct {
	RunID  uuid.UUID               `json:"run_id"`
	Slug   string                  `json:"slug"`
	Plan   domain.LecturePlan      `json:"plan"`
	Assets *domain.GeneratedAssets `json:"assets"`
}

func writeBundle(path string, b bundleFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return os.Rename(tmp, path)
}

func readBundle(path string) (bundleFile, error) {
	var b bundleFile
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read bundle: %w", err)
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if b.Assets == nil {
		return b, fmt.Errorf("bundle %s has no assets", path)
	}
	if err := b.Plan.Validate(); err != nil {
		return b, fmt.Errorf("bundle %s: %w", path, err)
	}
	return b, nil
}
