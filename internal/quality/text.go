package quality

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// Sentences splits text into sentences. A terminator (. ! ?) ends a
// sentence only when followed by whitespace or the end of text, and a period
// closing a registered abbreviation never does.
func Sentences(text string, rules requirements.TextRules) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && strings.IndexByte(`.!?"')`, text[j]) >= 0 {
			j++
		}
		if j < len(text) && !isSpace(text[j]) {
			i = j - 1
			continue
		}
		if c == '.' && j == i+1 && rules.IsAbbreviation(lastWord(text[start:j])) {
			continue
		}
		if s := strings.TrimSpace(text[start:j]); s != "" {
			out = append(out, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Paragraphs splits text on blank lines, dropping empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Opener returns the lower-cased first word of a sentence.
func Opener(sentence string) string {
	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

// LongLines returns the 1-indexed numbers of lines longer than max runes.
func LongLines(text string, max int) []int {
	var out []int
	for i, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) > max {
			out = append(out, i+1)
		}
	}
	return out
}

func lastWord(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if i := strings.LastIndexFunc(s, unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(s[i:])
		return s[i+size:]
	}
	return s
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
