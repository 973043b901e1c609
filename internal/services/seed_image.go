package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/lecture-studio/internal/domain"
)

// DefaultSeedMaxSide bounds the longer edge of a conditioning image.
const DefaultSeedMaxSide = 1024

// NormalizeSeedImage decodes raw, downscales it so neither side exceeds maxSide and re-encodes it as JPEG.
func NormalizeSeedImage(raw []byte, maxSide int) (domain.MediaAsset, error) {
	if maxSide <= 0 {
		maxSide = DefaultSeedMaxSide
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return domain.MediaAsset{}, fmt.Errorf("decode image: empty bounds")
	}
	if w > maxSide || h > maxSide {
		nw, nh := maxSide, maxSide
		if w >= h {
			nh = max(1, h*maxSide/w)
		} else {
			nw = max(1, w*maxSide/h)
		}
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 90}); err != nil {
		return domain.MediaAsset{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return domain.MediaAsset{Kind: domain.MediaKindImage, MimeType: "image/jpeg", Bytes: out.Bytes()}, nil
}
