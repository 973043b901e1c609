package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

const emptyContent = `<p class="empty">No content available for this slide.</p>`

var (
	blankLines = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	boldRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.+?)\*`)
)

// MarkdownToHTML renders the small markdown subset used in lesson plans.
// Input is escaped before any markup is introduced.
func MarkdownToHTML(md string) template.HTML {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	if strings.TrimSpace(md) == "" {
		return template.HTML(emptyContent)
	}

	var b strings.Builder
	for _, block := range blankLines.Split(strings.Trim(md, "\n"), -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		renderBlock(&b, strings.Split(block, "\n"))
	}
	return template.HTML(b.String())
}

func renderBlock(b *strings.Builder, lines []string) {
	var (
		para   []string
		inList bool
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(para, "<br>"))
		b.WriteString("</p>")
		para = nil
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			flushPara()
			closeList()
			b.WriteString("<h2>" + inline(strings.TrimPrefix(line, "## ")) + "</h2>")
		case strings.HasPrefix(line, "# "):
			flushPara()
			closeList()
			b.WriteString("<h1>" + inline(strings.TrimPrefix(line, "# ")) + "</h1>")
		case strings.HasPrefix(line, "* "):
			flushPara()
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + inline(strings.TrimPrefix(line, "* ")) + "</li>")
		default:
			closeList()
			para = append(para, inline(line))
		}
	}
	flushPara()
	closeList()
}

func inline(s string) string {
	s = html.EscapeString(s)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	return italicRe.ReplaceAllString(s, "<em>$1</em>")
}
