package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/lecture-studio/internal/domain"
)

type fakeNarration struct {
	err error
}

func (f *fakeNarration) Narrate(ctx context.Context, text string) (domain.MediaAsset, error) {
	if f.err != nil {
		return domain.MediaAsset{}, f.err
	}
	return domain.MediaAsset{Kind: domain.MediaKindAudio, MimeType: "audio/wav", Bytes: []byte("RIFF" + text)}, nil
}

type fakeIllustrations struct {
	mu         sync.Mutex
	err        error
	conditions int
}

func (f *fakeIllustrations) Generate(ctx context.Context, prompt string) (domain.MediaAsset, error) {
	if f.err != nil {
		return domain.MediaAsset{}, f.err
	}
	return domain.MediaAsset{Kind: domain.MediaKindImage, MimeType: "image/png", Bytes: []byte("png:" + prompt)}, nil
}

func (f *fakeIllustrations) GenerateFromImage(ctx context.Context, source domain.MediaAsset, prompt string) (domain.MediaAsset, error) {
	f.mu.Lock()
	f.conditions++
	f.mu.Unlock()
	if f.err != nil {
		return domain.MediaAsset{}, f.err
	}
	return domain.MediaAsset{Kind: domain.MediaKindImage, MimeType: "image/png", Bytes: []byte("conditioned")}, nil
}

type fakeVideo struct {
	mu   sync.Mutex
	err  error
	seed *domain.MediaAsset
}

func (f *fakeVideo) Generate(ctx context.Context, prompt string, seed *domain.MediaAsset) (domain.MediaAsset, error) {
	f.mu.Lock()
	f.seed = seed
	f.mu.Unlock()
	if f.err != nil {
		return domain.MediaAsset{}, f.err
	}
	return domain.MediaAsset{Kind: domain.MediaKindVideo, MimeType: "video/mp4", Bytes: []byte("mp4")}, nil
}

type fakeQuiz struct {
	err error
}

func (f *fakeQuiz) Generate(ctx context.Context, content string, n int) (domain.Quiz, error) {
	if f.err != nil {
		return domain.Quiz{}, f.err
	}
	q := domain.Quiz{}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, domain.QuizQuestion{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options:  []string{"A", "B", "C", "D"},
			Answer:   "A",
		})
	}
	return q, nil
}

func photosynthesisPlan() domain.LecturePlan {
	return domain.LecturePlan{
		UnitTitle:        "Photosynthesis Basics",
		Grade:            "5",
		Overview:         "How plants make food from light.",
		GuidingQuestions: []string{"What do plants need?", "Where does oxygen come from?"},
		ContentAndThemes: []domain.Topic{
			{Theme: "Sunlight", Details: "Plants capture **light** energy."},
			{Theme: "Chlorophyll", Details: "* Green pigment\n* Lives in chloroplasts"},
		},
	}
}
