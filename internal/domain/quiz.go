package domain

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// HasAnswer reports whether Answer exactly matches one of Options.
func (q QuizQuestion) HasAnswer() bool {
	for _, o := range q.Options {
		if o == q.Answer {
			return true
		}
	}
	return false
}

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// Issues returns the indexes of questions whose answer is not among their options.
func (q Quiz) Issues() []int {
	var out []int
	for i, qq := range q.Questions {
		if !qq.HasAnswer() {
			out = append(out, i)
		}
	}
	return out
}

func (q Quiz) Clone() Quiz {
	out := Quiz{Questions: make([]QuizQuestion, len(q.Questions))}
	for i, qq := range q.Questions {
		qq.Options = append([]string(nil), qq.Options...)
		out.Questions[i] = qq
	}
	return out
}
