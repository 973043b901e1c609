package render

import (
	"html/template"

	"github.com/yungbote/lecture-studio/internal/domain"
)

type SlideKind string

const (
	SlideIntro    SlideKind = "intro"
	SlideContent  SlideKind = "content"
	SlideQuiz     SlideKind = "quiz"
	SlideComplete SlideKind = "complete"
)

type QuizView struct {
	Number   int      `json:"number"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Slide is one rendered page of a lecture deck.
type Slide struct {
	Index    int           `json:"index"`
	Kind     SlideKind     `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Body     template.HTML `json:"body,omitempty"`
	VideoURL string        `json:"video_url,omitempty"`
	AudioURL string        `json:"audio_url,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
	Quiz     *QuizView     `json:"quiz,omitempty"`
}

// Deck lists the preview slides for a bundle: intro, one per topic, one per question.
func Deck(plan domain.LecturePlan, assets *domain.GeneratedAssets) []Slide {
	if assets == nil {
		return nil
	}
	questions := assets.Quiz.Questions
	out := make([]Slide, 0, 1+plan.TopicCount()+len(questions))
	out = append(out, Slide{Kind: SlideIntro, Title: plan.UnitTitle, VideoURL: assets.VideoURL})
	for i, t := range plan.ContentAndThemes {
		out = append(out, Slide{
			Kind:     SlideContent,
			Title:    t.Theme,
			Body:     MarkdownToHTML(t.Details),
			AudioURL: assets.AudioURL(i),
			ImageURL: assets.ImageURL(i),
		})
	}
	for i, q := range questions {
		out = append(out, Slide{
			Kind:  SlideQuiz,
			Title: q.Question,
			Quiz: &QuizView{
				Number:   i + 1,
				Total:    len(questions),
				Question: q.Question,
				Options:  append([]string(nil), q.Options...),
				Answer:   q.Answer,
			},
		})
	}
	for i := range out {
		out[i].Index = i
	}
	return out
}

// Cursor is the operator preview position. It clamps at both ends.
type Cursor struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

func NewCursor(total int) Cursor {
	if total < 0 {
		total = 0
	}
	return Cursor{Total: total}
}

func (c Cursor) Next() Cursor {
	if c.Index < c.Total-1 {
		c.Index++
	}
	return c
}

func (c Cursor) Prev() Cursor {
	if c.Index > 0 {
		c.Index--
	}
	return c
}

// Seek moves to i clamped into range.
func (c Cursor) Seek(i int) Cursor {
	switch {
	case c.Total == 0:
		c.Index = 0
	case i < 0:
		c.Index = 0
	case i >= c.Total:
		c.Index = c.Total - 1
	default:
		c.Index = i
	}
	return c
}
