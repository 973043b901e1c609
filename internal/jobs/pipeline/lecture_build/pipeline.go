package lecture_build

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/steps"
	"github.com/yungbote/lecture-studio/internal/observability"
	"github.com/yungbote/lecture-studio/internal/platform/ctxutil"
)

// Run takes one request from plan to bundle. Any phase error stops the run, emits an error status
// and leaves no bundle. There is no retry.
func (p *Pipeline) Run(ctx context.Context, runID uuid.UUID, req Request) (*Result, error) {
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	ctx = ctxutil.WithRunID(ctx, runID)
	log := p.log.With("run_id", runID.String())
	res := &Result{RunID: runID}
	res.advance(StateStarted)

	fail := func(phase string, err error) (*Result, error) {
		res.advance(StateFailed)
		res.Media = nil
		res.Assets = nil
		log.Error("lecture build failed", "phase", phase, "error", err)
		p.notify.RunStatus(ctx, runID, domain.ErrorStatus(domain.UserMessage(err)))
		return res, err
	}

	if p.deps.Credentials != nil {
		if _, ok := p.deps.Credentials.Get(); !ok {
			return fail("credentials", &domain.CredentialError{Message: MissingKeyMessage})
		}
	}

	p.notify.RunStatus(ctx, runID, domain.StatusLoadingPlan)
	var loaded steps.LoadPlanOutput
	err := p.phase(ctx, "lecture.load_plan", func(ctx context.Context) error {
		var err error
		loaded, err = steps.LoadPlan(ctx, p.deps.Plans, steps.LoadPlanInput{
			Plan:        req.Plan,
			Seed:        req.Seed,
			MaxSeedSide: p.cfg.MaxSeedSide,
		})
		return err
	})
	if err != nil {
		return fail("load_plan", err)
	}
	res.Plan = loaded.Plan
	res.Slug = steps.MediaSlug(loaded.Plan)
	res.advance(StatePlanLoaded)
	p.notify.RunStarted(ctx, runID, loaded.Plan)
	log.Info("lesson plan loaded", "title", loaded.Plan.UnitTitle, "topics", loaded.Plan.TopicCount(), "slug", res.Slug)

	p.notify.RunStatus(ctx, runID, domain.StatusGeneratingMedia)
	var media *steps.GeneratedMedia
	err = p.phase(ctx, "lecture.generate_media", func(ctx context.Context) error {
		var err error
		media, err = steps.GenerateMedia(ctx, p.deps.Media, steps.GenerateMediaInput{
			Plan:          loaded.Plan,
			Seed:          loaded.Seed,
			Illustrate:    p.cfg.Illustrate,
			QuizQuestions: p.cfg.QuizQuestions,
		})
		return err
	})
	if err != nil {
		return fail("generate_media", err)
	}
	if media.Conditioned != nil {
		res.advance(StateContextualImageReady)
	}
	res.advance(StateMediaGenerated)
	if issues := media.Quiz.Issues(); len(issues) > 0 {
		log.Warn("quiz answers not among options", "questions", issues)
	}

	p.notify.RunStatus(ctx, runID, domain.StatusUploadingMedia)
	var uploaded steps.UploadedMedia
	err = p.phase(ctx, "lecture.upload_media", func(ctx context.Context) error {
		var err error
		uploaded, err = steps.UploadMedia(ctx, p.deps.Upload, steps.UploadMediaInput{Slug: res.Slug, Media: media})
		return err
	})
	if err != nil {
		return fail("upload_media", err)
	}
	res.advance(StateMediaUploaded)

	assets, err := domain.NewGeneratedAssets(loaded.Plan, uploaded.VideoURL, uploaded.AudioURLs, uploaded.ImageURLs, media.Quiz)
	if err != nil {
		return fail("bundle", err)
	}
	res.Media = media
	res.Assets = assets
	res.advance(StateBundleReady)

	p.notify.RunStatus(ctx, runID, domain.StatusReady)
	p.notify.RunReady(ctx, runID, assets)
	log.Info("lecture bundle ready", "video", assets.VideoURL, "audio", len(assets.AudioURLs), "questions", len(assets.Quiz.Questions))
	return res, nil
}

// Publish renders and uploads the lecture for a finished run. An unfinished run publishes nothing.
func (p *Pipeline) Publish(ctx context.Context, runID uuid.UUID, res *Result) (domain.PublishedLecture, error) {
	if res == nil || res.Assets == nil {
		return domain.PublishedLecture{}, nil
	}
	var pub domain.PublishedLecture
	err := p.phase(ctx, "lecture.publish", func(ctx context.Context) error {
		var err error
		pub, err = steps.PublishLecture(ctx, p.deps.Publish, steps.PublishInput{Plan: &res.Plan, Assets: res.Assets, Slug: res.Slug})
		return err
	})
	if err != nil {
		p.log.Error("lecture publish failed", "run_id", runID.String(), "error", err)
		return domain.PublishedLecture{}, err
	}
	p.notify.LecturePublished(ctx, runID, pub)
	p.log.Info("lecture published", "run_id", runID.String(), "path", pub.Path, "url", pub.URL)
	return pub, nil
}

func (p *Pipeline) phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, name)
	err := fn(ctx)
	observability.EndSpan(span, err)
	if err != nil && errors.Is(err, context.Canceled) {
		p.log.Debug("phase cancelled", "phase", name)
	}
	return err
}
