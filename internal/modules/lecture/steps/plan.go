package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/httpx"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
)

const (
	maxPlanBytes  = 8 << 20
	maxImageBytes = 32 << 20
)

// Source names one input document. Set at most one of Document, Path or URL.
type Source struct {
	Document []byte
	Path     string
	URL      string
}

func (s Source) Empty() bool {
	return len(s.Document) == 0 && strings.TrimSpace(s.Path) == "" && strings.TrimSpace(s.URL) == ""
}

func (s Source) String() string {
	switch {
	case len(s.Document) > 0:
		return "upload"
	case s.Path != "":
		return s.Path
	default:
		return s.URL
	}
}

type LoadPlanDeps struct {
	Log  *logger.Logger
	HTTP *http.Client
}

type LoadPlanInput struct {
	Plan Source
	// Seed is optional.
	Seed        Source
	MaxSeedSide int
}

type LoadPlanOutput struct {
	Plan domain.LecturePlan
	Seed *domain.MediaAsset
}

func LoadPlan(ctx context.Context, deps LoadPlanDeps, in LoadPlanInput) (LoadPlanOutput, error) {
	var out LoadPlanOutput
	if in.Plan.Empty() {
		return out, &domain.PlanParseError{Source: "input", Err: errors.New("no lesson plan provided")}
	}

	raw, err := read(ctx, deps, in.Plan, maxPlanBytes)
	if err != nil {
		return out, err
	}
	plan, err := ParsePlan(in.Plan.String(), raw)
	if err != nil {
		return out, err
	}
	out.Plan = plan

	if !in.Seed.Empty() {
		rawSeed, err := read(ctx, deps, in.Seed, maxImageBytes)
		if err != nil {
			return out, err
		}
		seed, err := services.NormalizeSeedImage(rawSeed, in.MaxSeedSide)
		if err != nil {
			return out, &domain.PlanParseError{Source: "seed image " + in.Seed.String(), Err: err}
		}
		out.Seed = &seed
	}
	if deps.Log != nil {
		deps.Log.Debug("lesson plan loaded", "source", in.Plan.String(), "topics", plan.TopicCount(), "seed", out.Seed != nil)
	}
	return out, nil
}

// ParsePlan decodes and validates a lesson plan document.
func ParsePlan(source string, raw []byte) (domain.LecturePlan, error) {
	var plan domain.LecturePlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return plan, &domain.PlanParseError{Source: source, Err: err}
	}
	if err := plan.Validate(); err != nil {
		return plan, &domain.PlanParseError{Source: source, Err: err}
	}
	return plan, nil
}

func read(ctx context.Context, deps LoadPlanDeps, src Source, maxBytes int64) ([]byte, error) {
	switch {
	case len(src.Document) > 0:
		return src.Document, nil
	case strings.TrimSpace(src.Path) != "":
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, &domain.PlanParseError{Source: src.Path, Err: err}
		}
		return b, nil
	default:
		return fetch(ctx, deps.HTTP, strings.TrimSpace(src.URL), maxBytes)
	}
}

func fetch(ctx context.Context, client *http.Client, rawURL string, maxBytes int64) ([]byte, error) {
	body, _, err := httpx.GetBytes(ctx, client, rawURL, maxBytes)
	if err == nil {
		return body, nil
	}
	var he *httpx.HTTPError
	if errors.As(err, &he) {
		return nil, &domain.PlanFetchError{URL: he.URL, StatusCode: he.StatusCode, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	return nil, &domain.PlanFetchError{URL: rawURL, Err: fmt.Errorf("request failed: %w", err)}
}
