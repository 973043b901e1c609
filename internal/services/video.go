package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
	"github.com/yungbote/lecture-studio/internal/platform/httpx"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

const (
	DefaultVideoModel        = "veo-3.1-fast-generate-preview"
	DefaultVideoPollInterval = 10 * time.Second
	DefaultVideoPollTimeout  = 20 * time.Minute
)

type VideoService interface {
	// Generate starts a video job and blocks until it completes. seed may be nil.
	Generate(ctx context.Context, prompt string, seed *domain.MediaAsset) (domain.MediaAsset, error)
}

type VideoConfig struct {
	Model        string
	Resolution   string
	AspectRatio  string
	PollInterval time.Duration
	// PollTimeout bounds the wait for completion. Zero waits indefinitely.
	PollTimeout time.Duration
}

type videoService struct {
	log    *logger.Logger
	client gemini.Client
	cfg    VideoConfig

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewVideoService(log *logger.Logger, client gemini.Client, cfg VideoConfig) (VideoService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultVideoModel
	}
	if strings.TrimSpace(cfg.Resolution) == "" {
		cfg.Resolution = "720p"
	}
	if strings.TrimSpace(cfg.AspectRatio) == "" {
		cfg.AspectRatio = "16:9"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultVideoPollInterval
	}
	if cfg.PollTimeout < 0 {
		cfg.PollTimeout = 0
	}
	return &videoService{
		log:    log.With("service", "VideoService"),
		client: client,
		cfg:    cfg,
		sleep:  httpx.Sleep,
		now:    time.Now,
	}, nil
}

func VideoPrompt(prompt string) string {
	return "Create a short, engaging introductory video about: " + prompt
}

func (s *videoService) Generate(ctx context.Context, prompt string, seed *domain.MediaAsset) (domain.MediaAsset, error) {
	instance := gemini.VideoInstance{Prompt: VideoPrompt(prompt)}
	if seed != nil && !seed.Empty() {
		mimeType := seed.MimeType
		if mimeType == "" {
			mimeType = mediacodec.SniffMime(seed.Bytes)
		}
		instance.Image = &gemini.VideoImage{BytesBase64Encoded: seed.Base64(), MimeType: mimeType}
	}
	req := gemini.PredictRequest{
		Instances: []gemini.VideoInstance{instance},
		Parameters: gemini.VideoParameters{
			SampleCount: 1,
			Resolution:  s.cfg.Resolution,
			AspectRatio: s.cfg.AspectRatio,
		},
	}

	op, err := s.client.PredictLongRunning(ctx, s.cfg.Model, req)
	if err != nil {
		return domain.MediaAsset{}, mediaError(domain.MediaKindVideo, err)
	}
	s.log.Info("video operation started", "operation", op.Name, "seeded", instance.Image != nil)

	started := s.now()
	polls := 0
	for !op.Done {
		if op.Error != nil {
			break
		}
		if s.cfg.PollTimeout > 0 && s.now().Sub(started) >= s.cfg.PollTimeout {
			return domain.MediaAsset{}, &domain.TimeoutError{Op: "video generation", After: s.cfg.PollTimeout}
		}
		if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
			return domain.MediaAsset{}, err
		}
		name := op.Name
		op, err = s.client.GetOperation(ctx, name)
		if err != nil {
			return domain.MediaAsset{}, mediaError(domain.MediaKindVideo, err)
		}
		if op.Name == "" {
			op.Name = name
		}
		polls++
	}
	if op.Error != nil {
		detail := strings.TrimSpace(op.Error.Message)
		if detail == "" {
			detail = fmt.Sprintf("operation failed with code %d", op.Error.Code)
		}
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindVideo, detail, nil)
	}

	uri := op.VideoURI()
	if uri == "" {
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindVideo, "operation finished without a video", nil)
	}
	data, contentType, err := s.client.Download(ctx, uri)
	if err != nil {
		return domain.MediaAsset{}, mediaError(domain.MediaKindVideo, err)
	}
	if len(data) == 0 {
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindVideo, "downloaded video is empty", nil)
	}
	mimeType := mediacodec.BaseType(contentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "video/mp4"
	}
	s.log.Info("video generated", "operation", op.Name, "polls", polls, "bytes", len(data))
	return domain.MediaAsset{Kind: domain.MediaKindVideo, MimeType: mimeType, Bytes: data}, nil
}
