package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yungbote/lecture-studio/internal/domain"
)

func TestMarkdownToHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", emptyContent},
		{"   \n ", emptyContent},
		{"# Title", "<h1>Title</h1>"},
		{"## Sub", "<h2>Sub</h2>"},
		{"Plants **need** *light*", "<p>Plants <strong>need</strong> <em>light</em></p>"},
		{"line one\nline two", "<p>line one<br>line two</p>"},
		{"first\n\nsecond", "<p>first</p><p>second</p>"},
		{"a\n \n \nb", "<p>a</p><p>b</p>"},
		{"a\n\t\n\n\nb", "<p>a</p><p>b</p>"},
		{"* a\n* b\n* c", "<ul><li>a</li><li>b</li><li>c</li></ul>"},
		{"Intro\n* a\n* b", "<p>Intro</p><ul><li>a</li><li>b</li></ul>"},
		{"<script>x</script>", "<p>&lt;script&gt;x&lt;/script&gt;</p>"},
	}
	for _, tc := range cases {
		if got := string(MarkdownToHTML(tc.in)); got != tc.want {
			t.Fatalf("MarkdownToHTML(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func testPlan() domain.LecturePlan {
	return domain.LecturePlan{
		UnitTitle: "Photosynthesis Basics",
		Grade:     "5",
		Overview:  "How plants make food.",
		ContentAndThemes: []domain.Topic{
			{Theme: "Sunlight", Details: "Plants use **light**."},
			{Theme: "Water", Details: "* roots\n* stems"},
		},
	}
}

func testAssets() *domain.GeneratedAssets {
	return &domain.GeneratedAssets{
		VideoURL:  "https://cdn.test/media/photosynthesis-basics-video.mp4",
		AudioURLs: []string{"https://cdn.test/a0.wav", "https://cdn.test/a1.wav"},
		ImageURLs: []string{"https://cdn.test/i0.png", "https://cdn.test/i1.png"},
		Quiz: domain.Quiz{Questions: []domain.QuizQuestion{
			{Question: "What do plants need?", Options: []string{"Light", "Sand", "Salt", "Smoke"}, Answer: "Light"},
		}},
	}
}

func TestDeckShapeAndCursorClamp(t *testing.T) {
	slides := Deck(testPlan(), testAssets())
	if len(slides) != 4 {
		t.Fatalf("slides: want=4 got=%d", len(slides))
	}
	if slides[0].Kind != SlideIntro || slides[1].Kind != SlideContent || slides[3].Kind != SlideQuiz {
		t.Fatalf("slide kinds: got=%s,%s,%s,%s", slides[0].Kind, slides[1].Kind, slides[2].Kind, slides[3].Kind)
	}
	if slides[2].AudioURL != "https://cdn.test/a1.wav" || slides[2].ImageURL != "https://cdn.test/i1.png" {
		t.Fatalf("topic 2 media: got=%+v", slides[2])
	}

	c := NewCursor(len(slides))
	if c.Prev().Index != 0 {
		t.Fatalf("prev at first slide should stay at 0")
	}
	for i := 0; i < 10; i++ {
		c = c.Next()
	}
	if c.Index != 3 {
		t.Fatalf("next at last slide should stay at 3, got=%d", c.Index)
	}
	if got := c.Seek(-5).Index; got != 0 {
		t.Fatalf("Seek(-5): want=0 got=%d", got)
	}
	if got := c.Seek(99).Index; got != 3 {
		t.Fatalf("Seek(99): want=3 got=%d", got)
	}
	if got := NewCursor(0).Next().Index; got != 0 {
		t.Fatalf("empty cursor: want=0 got=%d", got)
	}
}

func TestLectureHTMLIsSelfContainedAndDeterministic(t *testing.T) {
	a, err := Lecture(testPlan(), testAssets())
	if err != nil {
		t.Fatalf("Lecture: %v", err)
	}
	b, err := Lecture(testPlan(), testAssets())
	if err != nil {
		t.Fatalf("Lecture: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("output should be deterministic")
	}
	html := string(a)
	for _, want := range []string{
		"<title>Photosynthesis Basics</title>",
		`src="https://cdn.test/media/photosynthesis-basics-video.mp4"`,
		`src="https://cdn.test/a0.wav"`,
		`src="https://cdn.test/i1.png"`,
		"<strong>light</strong>",
		"<ul><li>roots</li><li>stems</li></ul>",
		`data-answer="Light"`,
		"Quiz - Question 1/1",
		"You covered 2 topics and 1 quiz question.",
		"(current + 1) % slides.length",
		"(current - 1 + slides.length) % slides.length",
		"Incorrect. The correct answer is: ",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	if strings.Contains(html, "cdn.tailwindcss.com") || strings.Contains(html, `<script src=`) {
		t.Fatalf("html should not reference external scripts")
	}
	if got := strings.Count(html, `<div class="slide `); got != 5 {
		t.Fatalf("rendered slides: want=5 got=%d", got)
	}
}

func TestLectureWithoutIllustrations(t *testing.T) {
	assets := testAssets()
	assets.ImageURLs = nil
	out, err := Lecture(testPlan(), assets)
	if err != nil {
		t.Fatalf("Lecture: %v", err)
	}
	if strings.Contains(string(out), `class="illustration"`) {
		t.Fatalf("illustrations should be omitted when disabled")
	}
}

func TestLectureRejectsScriptURL(t *testing.T) {
	assets := testAssets()
	assets.VideoURL = "javascript:alert(1)"
	if _, err := Lecture(testPlan(), assets); err == nil {
		t.Fatalf("expected error for javascript url")
	}
}
