package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Grade is a lesson plan grade level; plans carry it as a JSON number or string.
type Grade string

func (g *Grade) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*g = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = Grade(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("grade must be a number or string: %w", err)
	}
	*g = Grade(n.String())
	return nil
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(g)); err == nil && strconv.Itoa(n) == string(g) {
		return []byte(g), nil
	}
	return json.Marshal(string(g))
}

func (g Grade) String() string { return string(g) }

type Topic struct {
	Theme   string `json:"theme"`
	Details string `json:"details"`
}

type LecturePlan struct {
	UnitTitle        string   `json:"unit_title"`
	Grade            Grade    `json:"grade"`
	Overview         string   `json:"overview"`
	GuidingQuestions []string `json:"guiding_questions"`
	ContentAndThemes []Topic  `json:"content_and_themes"`
	LectureID        string   `json:"lecture_id,omitempty"`
}

var ErrNoTopics = errors.New("content_and_themes must not be empty")

func (p LecturePlan) Validate() error {
	if len(p.ContentAndThemes) == 0 {
		return ErrNoTopics
	}
	return nil
}

// TopicCount is the number of content slides the plan produces.
func (p LecturePlan) TopicCount() int { return len(p.ContentAndThemes) }

// CombinedContent joins every topic's details with a blank line.
func (p LecturePlan) CombinedContent() string {
	parts := make([]string, 0, len(p.ContentAndThemes))
	for _, t := range p.ContentAndThemes {
		parts = append(parts, t.Details)
	}
	return strings.Join(parts, "\n\n")
}

// VideoPrompt is the overview followed by the guiding questions, space separated.
func (p LecturePlan) VideoPrompt() string {
	return strings.TrimSpace(p.Overview + " " + strings.Join(p.GuidingQuestions, " "))
}
