package domain

import (
	"fmt"

	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

type MediaKind string

const (
	MediaKindAudio MediaKind = "audio"
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaAsset is a generated payload held in memory until it is uploaded.
type MediaAsset struct {
	Kind     MediaKind
	MimeType string
	Bytes    []byte
}

func (a MediaAsset) Base64() string { return mediacodec.EncodeBase64(a.Bytes) }

func (a MediaAsset) Empty() bool { return len(a.Bytes) == 0 }

// GeneratedAssets is the uploaded bundle for one run. Build it with NewGeneratedAssets.
type GeneratedAssets struct {
	VideoURL  string   `json:"video_url"`
	AudioURLs []string `json:"audio_urls"`
	ImageURLs []string `json:"image_urls,omitempty"`
	Quiz      Quiz     `json:"quiz"`
}

// NewGeneratedAssets checks that per-topic URL lists line up with the plan's topics.
// imageURLs may be nil when illustrations are disabled.
func NewGeneratedAssets(plan LecturePlan, videoURL string, audioURLs, imageURLs []string, quiz Quiz) (*GeneratedAssets, error) {
	n := plan.TopicCount()
	if len(audioURLs) != n {
		return nil, fmt.Errorf("bundle: %d audio urls for %d topics", len(audioURLs), n)
	}
	if imageURLs != nil && len(imageURLs) != n {
		return nil, fmt.Errorf("bundle: %d image urls for %d topics", len(imageURLs), n)
	}
	if videoURL == "" {
		return nil, fmt.Errorf("bundle: missing video url")
	}
	out := &GeneratedAssets{
		VideoURL:  videoURL,
		AudioURLs: append([]string(nil), audioURLs...),
		Quiz:      quiz.Clone(),
	}
	if imageURLs != nil {
		out.ImageURLs = append([]string(nil), imageURLs...)
	}
	return out, nil
}

// ImageURL returns the illustration for topic i, or "" when none exists.
func (a *GeneratedAssets) ImageURL(i int) string {
	if a == nil || i < 0 || i >= len(a.ImageURLs) {
		return ""
	}
	return a.ImageURLs[i]
}

func (a *GeneratedAssets) AudioURL(i int) string {
	if a == nil || i < 0 || i >= len(a.AudioURLs) {
		return ""
	}
	return a.AudioURLs[i]
}

type PublishedLecture struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	CoverURL string `json:"cover_url,omitempty"`
}
