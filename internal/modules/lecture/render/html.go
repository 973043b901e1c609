package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
)

//go:embed templates/lecture.html.tmpl
var templateFS embed.FS

var lectureTemplate = template.Must(template.ParseFS(templateFS, "templates/lecture.html.tmpl"))

type pageSlide struct {
	Slide
	VideoURL template.URL
	AudioURL template.URL
	ImageURL template.URL

	Topics    int
	Questions int
}

type page struct {
	Title  string
	Slides []pageSlide
}

// mediaURL admits absolute URLs produced by the blob store regardless of scheme.
func mediaURL(raw string) (template.URL, error) {
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || strings.EqualFold(u.Scheme, "javascript") {
		return "", fmt.Errorf("invalid media url %q", raw)
	}
	return template.URL(raw), nil
}

// Lecture renders the self-contained HTML deck. Output depends only on its inputs.
func Lecture(plan domain.LecturePlan, assets *domain.GeneratedAssets) ([]byte, error) {
	if assets == nil {
		return nil, fmt.Errorf("render lecture: assets required")
	}
	slides := Deck(plan, assets)
	p := page{Title: plan.UnitTitle, Slides: make([]pageSlide, 0, len(slides)+1)}
	for _, s := range slides {
		ps := pageSlide{Slide: s}
		var err error
		if ps.VideoURL, err = mediaURL(s.VideoURL); err != nil {
			return nil, err
		}
		if ps.AudioURL, err = mediaURL(s.AudioURL); err != nil {
			return nil, err
		}
		if ps.ImageURL, err = mediaURL(s.ImageURL); err != nil {
			return nil, err
		}
		p.Slides = append(p.Slides, ps)
	}
	p.Slides = append(p.Slides, pageSlide{
		Slide:     Slide{Index: len(slides), Kind: SlideComplete},
		Topics:    plan.TopicCount(),
		Questions: len(assets.Quiz.Questions),
	})

	var buf bytes.Buffer
	if err := lectureTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render lecture: %w", err)
	}
	return buf.Bytes(), nil
}
