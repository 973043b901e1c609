package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestGradeAcceptsNumberOrString(t *testing.T) {
	var p LecturePlan
	if err := json.Unmarshal([]byte(`{"grade": 5, "content_and_themes": [{"theme":"a","details":"b"}]}`), &p); err != nil {
		t.Fatalf("unmarshal number grade: %v", err)
	}
	if p.Grade != "5" {
		t.Fatalf("grade: want=%q got=%q", "5", p.Grade)
	}
	if err := json.Unmarshal([]byte(`{"grade": "K"}`), &p); err != nil {
		t.Fatalf("unmarshal string grade: %v", err)
	}
	if p.Grade != "K" {
		t.Fatalf("grade: want=%q got=%q", "K", p.Grade)
	}
	if err := json.Unmarshal([]byte(`{"grade": true}`), &p); err == nil {
		t.Fatalf("unmarshal bool grade: expected error")
	}

	b, _ := json.Marshal(struct {
		A Grade `json:"a"`
		B Grade `json:"b"`
	}{A: "7", B: "K"})
	if string(b) != `{"a":7,"b":"K"}` {
		t.Fatalf("marshal: got=%s", b)
	}
}

func TestPlanHelpers(t *testing.T) {
	p := LecturePlan{
		Overview:         "Plants make food.",
		GuidingQuestions: []string{"What is light?", "Why green?"},
		ContentAndThemes: []Topic{{Theme: "Light", Details: "one"}, {Theme: "Water", Details: "two"}},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := p.CombinedContent(); got != "one\n\ntwo" {
		t.Fatalf("CombinedContent: got=%q", got)
	}
	if got := p.VideoPrompt(); got != "Plants make food. What is light? Why green?" {
		t.Fatalf("VideoPrompt: got=%q", got)
	}
	if err := (LecturePlan{}).Validate(); !errors.Is(err, ErrNoTopics) {
		t.Fatalf("Validate empty: want ErrNoTopics got=%v", err)
	}
}

func TestNewGeneratedAssets(t *testing.T) {
	plan := LecturePlan{ContentAndThemes: []Topic{{Theme: "a"}, {Theme: "b"}}}
	audio := []string{"a0", "a1"}
	bundle, err := NewGeneratedAssets(plan, "v", audio, nil, Quiz{})
	if err != nil {
		t.Fatalf("NewGeneratedAssets: %v", err)
	}
	if bundle.ImageURLs != nil {
		t.Fatalf("ImageURLs: want nil got=%v", bundle.ImageURLs)
	}
	audio[0] = "mutated"
	if bundle.AudioURLs[0] != "a0" {
		t.Fatalf("bundle aliases caller slice")
	}
	if _, err := NewGeneratedAssets(plan, "v", []string{"a0"}, nil, Quiz{}); err == nil {
		t.Fatalf("expected error for short audio list")
	}
	if _, err := NewGeneratedAssets(plan, "v", []string{"a0", "a1"}, []string{"i0"}, Quiz{}); err == nil {
		t.Fatalf("expected error for short image list")
	}
	if _, err := NewGeneratedAssets(plan, "", []string{"a0", "a1"}, nil, Quiz{}); err == nil {
		t.Fatalf("expected error for missing video")
	}
}

func TestQuizIssues(t *testing.T) {
	q := Quiz{Questions: []QuizQuestion{
		{Question: "1", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{Question: "2", Options: []string{"a", "b", "c", "d"}, Answer: "e"},
		{Question: "3", Options: []string{"a", "b", "c", "d"}, Answer: "A"},
	}}
	got := q.Issues()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Issues: want=[1 2] got=%v", got)
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("phase media: %w", &CredentialError{Message: InvalidKeyMessage})
	if got := UserMessage(wrapped); got != InvalidKeyMessage {
		t.Fatalf("UserMessage: want=%q got=%q", InvalidKeyMessage, got)
	}
	var ce *CredentialError
	if !errors.As(wrapped, &ce) {
		t.Fatalf("errors.As CredentialError failed")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Fatalf("UserMessage plain: got=%q", got)
	}
	if got := UserMessage(NewMediaGenerationError(MediaKindVideo, "quota", nil)); got != "Failed to generate video: quota" {
		t.Fatalf("UserMessage media: got=%q", got)
	}
	if !IsEntityNotFound(errors.New("404: Requested entity was not found.")) {
		t.Fatalf("IsEntityNotFound: want=true")
	}
}
