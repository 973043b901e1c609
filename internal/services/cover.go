package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

const (
	coverWidth  = 1200
	coverHeight = 630
)

// CoverService renders the share card stored next to each published lecture.
type CoverService interface {
	Render(plan domain.LecturePlan) (bytes.Buffer, error)
}

type coverService struct {
	log       *logger.Logger
	titleFace font.Face
	metaFace  font.Face
}

var coverPalette = []color.RGBA{
	{R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
	{R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
	{R: 0xdb, G: 0x27, B: 0x77, A: 0xff},
	{R: 0xea, G: 0x58, B: 0x0c, A: 0xff},
	{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	{R: 0x08, G: 0x91, B: 0xb2, A: 0xff},
}

// NewCoverService uses COVER_FONT when set, otherwise the embedded Go fonts.
func NewCoverService(log *logger.Logger) (CoverService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	serviceLog := log.With("service", "CoverService")

	titleTTF := gobold.TTF
	metaTTF := goregular.TTF
	if fontPath := strings.TrimSpace(os.Getenv("COVER_FONT")); fontPath != "" {
		serviceLog.Info("Loading cover font", "font", fontPath)
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		titleTTF, metaTTF = b, b
	}
	titleFace, err := fontFace(titleTTF, 64)
	if err != nil {
		return nil, fmt.Errorf("could not load cover font: %w", err)
	}
	metaFace, err := fontFace(metaTTF, 32)
	if err != nil {
		return nil, fmt.Errorf("could not load cover font: %w", err)
	}
	return &coverService{log: serviceLog, titleFace: titleFace, metaFace: metaFace}, nil
}

func fontFace(ttf []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

func pickCoverColor(key string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return coverPalette[int(h.Sum32()%uint32(len(coverPalette)))]
}

func (cs *coverService) Render(plan domain.LecturePlan) (bytes.Buffer, error) {
	var buf bytes.Buffer
	title := strings.TrimSpace(plan.UnitTitle)
	if title == "" {
		title = "Untitled Lecture"
	}

	dc := gg.NewContext(coverWidth, coverHeight)
	dc.SetColor(pickCoverColor(title))
	dc.DrawRectangle(0, 0, coverWidth, coverHeight)
	dc.Fill()

	// Footer band
	dc.SetRGBA(0, 0, 0, 0.18)
	dc.DrawRectangle(0, coverHeight-110, coverWidth, 110)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetFontFace(cs.titleFace)
	dc.DrawStringWrapped(title, coverWidth/2, (coverHeight-110)/2, 0.5, 0.5, coverWidth-160, 1.25, gg.AlignCenter)

	meta := fmt.Sprintf("%d topics", plan.TopicCount())
	if plan.TopicCount() == 1 {
		meta = "1 topic"
	}
	if g := strings.TrimSpace(plan.Grade.String()); g != "" {
		meta = GradeDisplayName(g) + "  |  " + meta
	}
	dc.SetFontFace(cs.metaFace)
	dc.DrawStringAnchored(meta, coverWidth/2, coverHeight-55, 0.5, 0.5)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}
