// Package segment splits raw document text into cleaned paragraphs and
// sentences with word counts.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

// Paragraph is one block of text separated by a blank line.
type Paragraph struct {
	Content   string
	Sentences []string
	WordCount int
}

var (
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	lineEdges    = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
	blankLine    = regexp.MustCompile(`\n{2,}`)
	sentenceEdge = regexp.MustCompile(`[.!?]\s+\p{Lu}`)
)

// Normalize cleans raw text: line endings become \n, runs of spaces and
// tabs collapse to one space, spaces around newlines are stripped, runs
// of three or more newlines collapse to a paragraph break, and the
// result is trimmed. Normalizing twice yields the same string as once.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = lineEdges.ReplaceAllString(text, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Split normalizes text and breaks it into paragraphs at blank lines.
// Empty input yields no paragraphs.
func Split(text string) []Paragraph {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	blocks := blankLine.Split(normalized, -1)
	paragraphs := make([]Paragraph, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		paragraphs = append(paragraphs, Paragraph{
			Content:   block,
			Sentences: SplitSentences(block),
			WordCount: CountWords(block),
		})
	}
	return paragraphs
}

// SplitSentences breaks a paragraph at sentence-terminal punctuation
// followed by whitespace and an uppercase letter. This is a heuristic:
// abbreviations, decimals, and most non-Latin scripts will mis-split.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEdge.FindAllStringIndex(text, -1) {
		// Cut right after the terminal punctuation; the uppercase
		// letter stays with the next sentence.
		end := loc[0] + 1
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// CountWords counts whitespace-separated tokens containing at least one
// Latin letter. Pure punctuation and pure numerals do not count.
func CountWords(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if containsLatinLetter(token) {
			count++
		}
	}
	return count
}

func containsLatinLetter(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}
