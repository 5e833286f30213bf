package markdown

import (
	"regexp"
	"strings"
)

var (
	h3Re = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Re = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Re = regexp.MustCompile(`(?m)^# (.*)$`)

	boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

	// Indentation and the gap after the marker stay on the line; a blank
	// line before a list is a paragraph break, not part of the item.
	listItemRe = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+(.*)$`)
	listRunRe  = regexp.MustCompile(`<li>.*</li>(?:\n<li>.*</li>)*`)

	blockOpenRe  = regexp.MustCompile(`<p>\s*<(h2|h3|ul)`)
	blockCloseRe = regexp.MustCompile(`</(h2|h3|ul)>\s*</p>`)
)

// newlines turns CRLF and lone CR line endings into LF so that no later
// stage captures a trailing '\r'.
func newlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// headers maps "###" to h3. Levels one and two both become h2.
func headers(s string) string {
	s = h3Re.ReplaceAllString(s, "<h3>${1}</h3>")
	s = h2Re.ReplaceAllString(s, "<h2>${1}</h2>")
	return h1Re.ReplaceAllString(s, "<h2>${1}</h2>")
}

func bold(s string) string {
	return boldRe.ReplaceAllString(s, "<strong>${1}</strong>")
}

func listItems(s string) string {
	return listItemRe.ReplaceAllString(s, "<li>${1}</li>")
}

// lists wraps each run of adjacent item lines in one ul. The newline that
// ends a run is left in place for the paragraph stage.
func lists(s string) string {
	return listRunRe.ReplaceAllStringFunc(s, func(run string) string {
		return "<ul>" + strings.ReplaceAll(run, "</li>\n<li>", "</li><li>") + "</ul>"
	})
}

func paragraphs(s string) string {
	return strings.ReplaceAll(s, "\n\n", "</p><p>")
}

// lineBreaks replaces a newline with <br> unless it touches a tag: the byte
// before it is '>' or the byte after it is '<'. Newlines at either end of
// the string are kept.
func lineBreaks(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' && i > 0 && i < len(s)-1 && s[i-1] != '>' && s[i+1] != '<' {
			b.WriteString("<br>")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// wrap puts the text in one paragraph, but only when no newline survived
// the earlier stages. A leftover newline sits next to a block tag, and
// wrapping across it would leave a paragraph open or closed on its own.
func wrap(s string) string {
	if strings.Contains(s, "\n") {
		return s
	}
	return "<p>" + s + "</p>"
}

// cleanup removes empty paragraphs and paragraph tags hugging block elements.
func cleanup(s string) string {
	s = strings.ReplaceAll(s, "<p></p>", "")
	s = blockOpenRe.ReplaceAllString(s, "<${1}")
	return blockCloseRe.ReplaceAllString(s, "</${1}>")
}
