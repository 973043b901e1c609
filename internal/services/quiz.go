package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

const (
	DefaultQuizModel     = "gemini-2.5-flash"
	DefaultQuizQuestions = 5
)

// QuizAnswerPolicy decides what happens to questions whose answer is not one of their options.
type QuizAnswerPolicy string

const (
	QuizAnswerPermissive QuizAnswerPolicy = "permissive"
	QuizAnswerRepair     QuizAnswerPolicy = "repair"
	QuizAnswerReject     QuizAnswerPolicy = "reject"
)

func ParseQuizAnswerPolicy(raw string) (QuizAnswerPolicy, error) {
	switch p := QuizAnswerPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return QuizAnswerPermissive, nil
	case QuizAnswerPermissive, QuizAnswerRepair, QuizAnswerReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown quiz answer policy %q", raw)
	}
}

type QuizService interface {
	Generate(ctx context.Context, content string, numQuestions int) (domain.Quiz, error)
}

type QuizConfig struct {
	Model  string
	Policy QuizAnswerPolicy
}

type quizService struct {
	log    *logger.Logger
	client gemini.Client
	model  string
	policy QuizAnswerPolicy
}

func NewQuizService(log *logger.Logger, client gemini.Client, cfg QuizConfig) (QuizService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultQuizModel
	}
	policy, err := ParseQuizAnswerPolicy(string(cfg.Policy))
	if err != nil {
		return nil, err
	}
	return &quizService{
		log:    log.With("service", "QuizService"),
		client: client,
		model:  model,
		policy: policy,
	}, nil
}

func QuizPrompt(content string, numQuestions int) string {
	return fmt.Sprintf("Based on the following lecture content, generate a quiz with %d multiple-choice questions. "+
		"Each question should have 4 options and a single correct answer.\n\n"+
		"Lecture Content:\n---\n%s\n---\n\nProvide the output in the specified JSON format.", numQuestions, content)
}

func quizSchema() map[string]any {
	str := map[string]any{"type": "STRING"}
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"question": str,
						"options":  map[string]any{"type": "ARRAY", "items": str},
						"answer":   str,
					},
					"required": []string{"question", "options", "answer"},
				},
			},
		},
		"required": []string{"questions"},
	}
}

func (s *quizService) Generate(ctx context.Context, content string, numQuestions int) (domain.Quiz, error) {
	if numQuestions <= 0 {
		numQuestions = DefaultQuizQuestions
	}
	req := gemini.GenerateContentRequest{
		Contents: gemini.UserContent(gemini.Part{Text: QuizPrompt(content, numQuestions)}),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   quizSchema(),
		},
	}
	resp, err := s.client.GenerateContent(ctx, s.model, req)
	if err != nil {
		switch {
		case errors.Is(err, gemini.ErrMissingKey):
			return domain.Quiz{}, &domain.CredentialError{Err: err}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, &domain.QuizGenerationError{Detail: "request failed", Err: err}
	}

	quiz, err := ParseQuiz([]byte(resp.Text()))
	if err != nil {
		return domain.Quiz{}, err
	}
	return s.applyPolicy(quiz)
}

// ParseQuiz decodes a {"questions": [...]} document.
func ParseQuiz(raw []byte) (domain.Quiz, error) {
	raw = bytes.TrimSpace(raw)
	var envelope struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.Quiz{}, &domain.QuizGenerationError{Detail: "response is not valid JSON", Err: err}
	}
	q := bytes.TrimSpace(envelope.Questions)
	if len(q) == 0 || q[0] != '[' {
		return domain.Quiz{}, &domain.QuizGenerationError{Detail: "questions is not an array"}
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(q, &quiz.Questions); err != nil {
		return domain.Quiz{}, &domain.QuizGenerationError{Detail: "questions are malformed", Err: err}
	}
	return quiz, nil
}

func (s *quizService) applyPolicy(quiz domain.Quiz) (domain.Quiz, error) {
	issues := quiz.Issues()
	if len(issues) == 0 {
		return quiz, nil
	}
	switch s.policy {
	case QuizAnswerReject:
		return domain.Quiz{}, &domain.QuizGenerationError{
			Detail: fmt.Sprintf("%d question(s) have an answer outside their options", len(issues)),
		}
	case QuizAnswerRepair:
		out := quiz.Clone()
		for _, i := range issues {
			fixed, ok := matchOption(out.Questions[i])
			if !ok {
				return domain.Quiz{}, &domain.QuizGenerationError{
					Detail: fmt.Sprintf("question %d answer %q matches no option", i+1, out.Questions[i].Answer),
				}
			}
			out.Questions[i].Answer = fixed
		}
		s.log.Info("quiz answers repaired", "count", len(issues))
		return out, nil
	default:
		s.log.Warn("quiz answers outside options", "questions", issues)
		return quiz, nil
	}
}

func matchOption(q domain.QuizQuestion) (string, bool) {
	want := normalizeAnswer(q.Answer)
	for _, o := range q.Options {
		if normalizeAnswer(o) == want {
			return o, true
		}
	}
	return "", false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
