package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

const (
	DefaultNarrationModel = "gemini-2.5-flash-preview-tts"
	DefaultNarrationVoice = "Kore"
)

type NarrationService interface {
	// Narrate produces one spoken rendition of text.
	Narrate(ctx context.Context, text string) (domain.MediaAsset, error)
}

type NarrationConfig struct {
	Model string
	Voice string
}

type narrationService struct {
	log    *logger.Logger
	client gemini.Client
	model  string
	voice  string
}

func NewNarrationService(log *logger.Logger, client gemini.Client, cfg NarrationConfig) (NarrationService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultNarrationModel
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = DefaultNarrationVoice
	}
	return &narrationService{
		log:    log.With("service", "NarrationService"),
		client: client,
		model:  model,
		voice:  voice,
	}, nil
}

func NarrationPrompt(text string) string {
	return "Narrate the following text clearly and engagingly: " + text
}

func (s *narrationService) Narrate(ctx context.Context, text string) (domain.MediaAsset, error) {
	req := gemini.GenerateContentRequest{
		Contents: gemini.UserContent(gemini.Part{Text: NarrationPrompt(text)}),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &gemini.SpeechConfig{
				VoiceConfig: gemini.VoiceConfig{
					PrebuiltVoiceConfig: gemini.PrebuiltVoiceConfig{VoiceName: s.voice},
				},
			},
		},
	}

	var (
		parts       [][]byte
		synthesized bool
		container   string
	)
	err := s.client.StreamGenerateContent(ctx, s.model, req, func(chunk gemini.GenerateContentResponse) error {
		for _, blob := range chunk.InlineData() {
			raw, err := mediacodec.DecodeBase64(blob.Data)
			if err != nil {
				return domain.NewMediaGenerationError(domain.MediaKindAudio, "undecodable audio chunk", err)
			}
			params, err := mediacodec.ParseAudioMimeParams(blob.MimeType)
			switch {
			case errors.Is(err, mediacodec.ErrContainerMime):
				if container == "" {
					container = mediacodec.BaseType(blob.MimeType)
				}
				parts = append(parts, raw)
			case err != nil:
				return domain.NewMediaGenerationError(domain.MediaKindAudio, "unsupported audio format", err)
			default:
				synthesized = true
				parts = append(parts, mediacodec.SynthesizeWAV(raw, params))
			}
		}
		return nil
	})
	if err != nil {
		return domain.MediaAsset{}, mediaError(domain.MediaKindAudio, err)
	}
	if len(parts) == 0 {
		return domain.MediaAsset{}, domain.NewMediaGenerationError(domain.MediaKindAudio, "no audio data received", nil)
	}

	mimeType := "audio/wav"
	if !synthesized && container != "" {
		mimeType = container
	}
	out := domain.MediaAsset{Kind: domain.MediaKindAudio, MimeType: mimeType, Bytes: mediacodec.Concat(parts...)}
	s.log.Debug("narration generated", "chunks", len(parts), "bytes", len(out.Bytes), "mime", mimeType)
	return out, nil
}
