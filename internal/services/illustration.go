package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

const (
	DefaultIllustrationModel = "gemini-2.5-flash-image"
	DefaultIllustrationSize  = "1K"
)

type IllustrationService interface {
	Generate(ctx context.Context, prompt string) (domain.MediaAsset, error)
	// GenerateFromImage conditions the illustration on source.
	GenerateFromImage(ctx context.Context, source domain.MediaAsset, prompt string) (domain.MediaAsset, error)
}

type IllustrationConfig struct {
	Model     string
	ImageSize string
}

type illustrationService struct {
	log       *logger.Logger
	client    gemini.Client
	model     string
	imageSize string
}

func NewIllustrationService(log *logger.Logger, client gemini.Client, cfg IllustrationConfig) (IllustrationService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultIllustrationModel
	}
	size := strings.TrimSpace(cfg.ImageSize)
	if size == "" {
		size = DefaultIllustrationSize
	}
	return &illustrationService{
		log:       log.With("service", "IllustrationService"),
		client:    client,
		model:     model,
		imageSize: size,
	}, nil
}

func IllustrationPrompt(prompt string) string {
	return "Create an educational illustration for a lesson slide: " + prompt +
		". Style: Colorful, friendly, suitable for students, clean and modern design."
}

func (s *illustrationService) Generate(ctx context.Context, prompt string) (domain.MediaAsset, error) {
	return s.generate(ctx, []gemini.Part{{Text: IllustrationPrompt(prompt)}})
}

func (s *illustrationService) GenerateFromImage(ctx context.Context, source domain.MediaAsset, prompt string) (domain.MediaAsset, error) {
	if source.Empty() {
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindImage, "source image is empty", nil)
	}
	mimeType := source.MimeType
	if mimeType == "" {
		mimeType = mediacodec.SniffMime(source.Bytes)
	}
	return s.generate(ctx, []gemini.Part{
		{InlineData: &gemini.Blob{MimeType: mimeType, Data: source.Base64()}},
		{Text: prompt},
	})
}

func (s *illustrationService) generate(ctx context.Context, parts []gemini.Part) (domain.MediaAsset, error) {
	req := gemini.GenerateContentRequest{
		Contents: gemini.UserContent(parts...),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &gemini.ImageConfig{ImageSize: s.imageSize},
		},
	}

	var (
		chunks   [][]byte
		mimeType string
	)
	err := s.client.StreamGenerateContent(ctx, s.model, req, func(chunk gemini.GenerateContentResponse) error {
		for _, blob := range chunk.InlineData() {
			raw, err := mediacodec.DecodeBase64(blob.Data)
			if err != nil {
				return domain.NewMediaGenerationError(domain.MediaKindImage, "undecodable image chunk", err)
			}
			if mimeType == "" {
				mimeType = mediacodec.BaseType(blob.MimeType)
			}
			chunks = append(chunks, raw)
		}
		return nil
	})
	if err != nil {
		return domain.MediaAsset{}, mediaError(domain.MediaKindImage, err)
	}
	if len(chunks) == 0 {
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindImage, "no image data received", nil)
	}
	data := mediacodec.Concat(chunks...)
	if mimeType == "" {
		mimeType = mediacodec.SniffMime(data)
	}
	s.log.Debug("illustration generated", "bytes", len(data), "mime", mimeType)
	return domain.MediaAsset{Kind: domain.MediaKindImage, MimeType: mimeType, Bytes: data}, nil
}
