package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/mediacodec"
)

const defaultUploadConcurrency = 8

type UploadMediaDeps struct {
	Log         *logger.Logger
	Store       blobstore.Store
	Concurrency int
}

type UploadMediaInput struct {
	Slug  string
	Media *GeneratedMedia
}

type UploadedMedia struct {
	VideoURL  string
	AudioURLs []string
	// ImageURLs is nil when no illustrations were generated.
	ImageURLs []string
}

func AudioKey(slug string, i int, mimeType string) string {
	return fmt.Sprintf("media/%s-audio-%d.%s", slug, i, mediacodec.ExtensionForMime(mimeType))
}

func ImageKey(slug string, i int) string {
	return fmt.Sprintf("media/%s-image-%d.png", slug, i)
}

func VideoKey(slug string) string {
	return fmt.Sprintf("media/%s-video.mp4", slug)
}

// UploadMedia stores every asset concurrently. Objects already written stay when a sibling fails.
func UploadMedia(ctx context.Context, deps UploadMediaDeps, in UploadMediaInput) (UploadedMedia, error) {
	var out UploadedMedia
	if deps.Store == nil {
		return out, errors.New("upload media: blob store required")
	}
	if in.Media == nil || in.Slug == "" {
		return out, errors.New("upload media: media and slug required")
	}
	m := in.Media
	out.AudioURLs = make([]string, len(m.Audio))
	if m.Images != nil {
		out.ImageURLs = make([]string, len(m.Images))
	}

	limit := deps.Concurrency
	if limit <= 0 {
		limit = defaultUploadConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	put := func(key string, asset domain.MediaAsset, dst *string) {
		g.Go(func() error {
			contentType := mediacodec.BaseType(asset.MimeType)
			if contentType == "" {
				contentType = blobstore.ContentTypeForKey(key)
			}
			url, err := deps.Store.Upload(gctx, key, contentType, bytes.NewReader(asset.Bytes))
			if err != nil {
				return &domain.UploadError{Path: key, Err: err}
			}
			*dst = url
			return nil
		})
	}

	put(VideoKey(in.Slug), m.Video, &out.VideoURL)
	for i, a := range m.Audio {
		put(AudioKey(in.Slug, i, a.MimeType), a, &out.AudioURLs[i])
	}
	for i, img := range m.Images {
		put(ImageKey(in.Slug, i), img, &out.ImageURLs[i])
	}

	if err := g.Wait(); err != nil {
		return UploadedMedia{}, err
	}
	if deps.Log != nil {
		deps.Log.Debug("media uploaded", "slug", in.Slug, "audio", len(out.AudioURLs), "images", len(out.ImageURLs))
	}
	return out, nil
}
