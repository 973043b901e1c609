package app

import (
	"fmt"

	"github.com/yungbote/lecture-studio/internal/data/repos"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
	"github.com/yungbote/lecture-studio/internal/sse"
)

type Services struct {
	Narration     services.NarrationService
	Illustrations services.IllustrationService
	Video         services.VideoService
	Quiz          services.QuizService
	Covers        services.CoverService
	Catalog       services.CatalogService
	Tracker       *services.RunTracker
	Notifier      services.StatusNotifier
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet repos.Repos, hub *sse.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	narration, err := services.NewNarrationService(log, clients.Gemini, services.NarrationConfig{
		Model: cfg.Narration.Model,
		Voice: cfg.Narration.Voice,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init narration service: %w", err)
	}
	illustrations, err := services.NewIllustrationService(log, clients.Gemini, services.IllustrationConfig{
		Model:     cfg.Illustration.Model,
		ImageSize: cfg.Illustration.ImageSize,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init illustration service: %w", err)
	}
	video, err := services.NewVideoService(log, clients.Gemini, services.VideoConfig{
		Model:        cfg.Video.Model,
		Resolution:   cfg.Video.Resolution,
		AspectRatio:  cfg.Video.AspectRatio,
		PollInterval: cfg.Video.PollInterval.Std(),
		PollTimeout:  cfg.Video.PollTimeout.Std(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("init video service: %w", err)
	}
	quiz, err := services.NewQuizService(log, clients.Gemini, services.QuizConfig{
		Model:  cfg.Quiz.Model,
		Policy: services.QuizAnswerPolicy(cfg.Quiz.AnswerPolicy),
	})
	if err != nil {
		return Services{}, fmt.Errorf("init quiz service: %w", err)
	}
	covers, err := services.NewCoverService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init cover service: %w", err)
	}
	catalog, err := services.NewCatalogService(log, clients.Store, reposet.Lectures)
	if err != nil {
		return Services{}, fmt.Errorf("init catalog service: %w", err)
	}

	tracker := services.NewRunTracker()
	notifier := services.NewTrackingNotifier(tracker, services.MultiNotifier{
		services.NewLogStatusNotifier(log),
		services.NewSSEStatusNotifier(log, hub, clients.SSEBus),
	})

	return Services{
		Narration:     narration,
		Illustrations: illustrations,
		Video:         video,
		Quiz:          quiz,
		Covers:        covers,
		Catalog:       catalog,
		Tracker:       tracker,
		Notifier:      notifier,
	}, nil
}
