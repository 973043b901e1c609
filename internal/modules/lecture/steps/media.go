package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/observability"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
)

type GenerateMediaDeps struct {
	Log           *logger.Logger
	Narration     services.NarrationService
	Illustrations services.IllustrationService
	Video         services.VideoService
	Quiz          services.QuizService
	// Credentials is cleared when the upstream reports the key as unknown.
	Credentials credentials.Provider
}

type GenerateMediaInput struct {
	Plan domain.LecturePlan
	Seed *domain.MediaAsset
	// Illustrate adds one illustration per topic.
	Illustrate    bool
	QuizQuestions int
}

// GeneratedMedia holds every generated payload of a run. Images is nil when illustrations are disabled.
type GeneratedMedia struct {
	Audio       []domain.MediaAsset
	Images      []domain.MediaAsset
	Video       domain.MediaAsset
	Conditioned *domain.MediaAsset
	Quiz        domain.Quiz
}

// ConditionPrompt asks for a scene matching the lecture, drawn from the seed image.
func ConditionPrompt(plan domain.LecturePlan) string {
	return strings.TrimSpace(fmt.Sprintf(
		"Create an opening scene for an educational lecture titled %q based on this image. %s",
		plan.UnitTitle, plan.Overview,
	))
}

// ConditionSeed turns the seed image into a lecture-specific frame for the video. A nil seed yields nil.
func ConditionSeed(ctx context.Context, deps GenerateMediaDeps, plan domain.LecturePlan, seed *domain.MediaAsset) (*domain.MediaAsset, error) {
	if seed == nil || seed.Empty() || deps.Illustrations == nil {
		return seed, nil
	}
	ctx, span := observability.StartSpan(ctx, "lecture.condition_seed")
	img, err := deps.Illustrations.GenerateFromImage(ctx, *seed, ConditionPrompt(plan))
	observability.EndSpan(span, err)
	if err != nil {
		return nil, invalidKey(deps, err)
	}
	return &img, nil
}

// GenerateMedia fans out narration, illustrations, the quiz and the seed-to-video chain.
// The first failure cancels the rest and nothing is returned.
func GenerateMedia(ctx context.Context, deps GenerateMediaDeps, in GenerateMediaInput) (*GeneratedMedia, error) {
	if deps.Narration == nil || deps.Video == nil || deps.Quiz == nil {
		return nil, errors.New("generate media: narration, video and quiz services required")
	}
	if in.Illustrate && deps.Illustrations == nil {
		return nil, errors.New("generate media: illustration service required")
	}
	topics := in.Plan.ContentAndThemes
	out := &GeneratedMedia{Audio: make([]domain.MediaAsset, len(topics))}
	if in.Illustrate {
		out.Images = make([]domain.MediaAsset, len(topics))
	}

	g, gctx := errgroup.WithContext(ctx)

	for i, topic := range topics {
		g.Go(func() error {
			asset, err := deps.Narration.Narrate(gctx, topic.Details)
			if err != nil {
				return fmt.Errorf("narrate topic %d: %w", i, err)
			}
			out.Audio[i] = asset
			return nil
		})
		if in.Illustrate {
			g.Go(func() error {
				asset, err := deps.Illustrations.Generate(gctx, topic.Theme)
				if err != nil {
					return fmt.Errorf("illustrate topic %d: %w", i, err)
				}
				out.Images[i] = asset
				return nil
			})
		}
	}

	g.Go(func() error {
		quiz, err := deps.Quiz.Generate(gctx, in.Plan.CombinedContent(), in.QuizQuestions)
		if err != nil {
			return err
		}
		out.Quiz = quiz
		return nil
	})

	g.Go(func() error {
		seed, err := ConditionSeed(gctx, deps, in.Plan, in.Seed)
		if err != nil {
			return err
		}
		if seed != in.Seed {
			out.Conditioned = seed
		}
		vctx, span := observability.StartSpan(gctx, "lecture.video")
		video, err := deps.Video.Generate(vctx, in.Plan.VideoPrompt(), seed)
		observability.EndSpan(span, err)
		if err != nil {
			return invalidKey(deps, err)
		}
		out.Video = video
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// invalidKey converts "entity not found" failures into a credential error and forgets the key.
func invalidKey(deps GenerateMediaDeps, err error) error {
	if !domain.IsEntityNotFound(err) {
		return err
	}
	if deps.Credentials != nil {
		if cerr := deps.Credentials.Clear(); cerr != nil && deps.Log != nil {
			deps.Log.Warn("failed to clear rejected api key", "error", cerr)
		}
	}
	return &domain.CredentialError{Message: domain.InvalidKeyMessage, Err: err}
}
