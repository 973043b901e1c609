package app

import (
	"context"

	"github.com/yungbote/lecture-studio/internal/jobs/pipeline/lecture_build"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/steps"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

func wirePipeline(ctx context.Context, log *logger.Logger, cfg Config, clients Clients, svcs Services) (*lecture_build.Pipeline, *lecture_build.Runner) {
	log.Info("Wiring lecture pipeline...")
	pipeline := lecture_build.New(log, lecture_build.Deps{
		Plans: steps.LoadPlanDeps{Log: log, HTTP: clients.HTTP},
		Media: steps.GenerateMediaDeps{
			Log:           log,
			Narration:     svcs.Narration,
			Illustrations: svcs.Illustrations,
			Video:         svcs.Video,
			Quiz:          svcs.Quiz,
			Credentials:   clients.Credentials,
		},
		Upload: steps.UploadMediaDeps{
			Log:         log,
			Store:       clients.Store,
			Concurrency: cfg.UploadConcurrency,
		},
		Publish: steps.PublishDeps{
			Log:     log,
			Store:   clients.Store,
			Covers:  svcs.Covers,
			Catalog: svcs.Catalog,
		},
		Credentials: clients.Credentials,
	}, svcs.Notifier, lecture_build.Config{
		Illustrate:    cfg.Illustration.Enabled,
		QuizQuestions: cfg.Quiz.Questions,
		MaxSeedSide:   cfg.SeedMaxSide,
	})
	return pipeline, lecture_build.NewRunner(ctx, log, pipeline, svcs.Tracker)
}
