package services

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// LanguageHinter picks an answer-language instruction for a question.
// It returns false when it has no opinion.
type LanguageHinter interface {
	Hint(question string) (string, bool)
}

// LanguageHinterFunc adapts a function to LanguageHinter.
type LanguageHinterFunc func(question string) (string, bool)

// Hint implements LanguageHinter.
func (f LanguageHinterFunc) Hint(question string) (string, bool) {
	return f(question)
}

// HinterChain asks each hinter in turn and returns the first hint.
type HinterChain []LanguageHinter

// Hint implements LanguageHinter.
func (c HinterChain) Hint(question string) (string, bool) {
	for _, h := range c {
		if hint, ok := h.Hint(question); ok {
			return hint, true
		}
	}
	return "", false
}

// ScriptHinter matches any letter from a Unicode script.
type ScriptHinter struct {
	Script   *unicode.RangeTable
	Language string
}

// Hint implements LanguageHinter.
func (h ScriptHinter) Hint(question string) (string, bool) {
	for _, r := range question {
		if unicode.Is(h.Script, r) {
			return answerIn(h.Language), true
		}
	}
	return "", false
}

// WordListHinter matches common function words of a language.
type WordListHinter struct {
	Words    map[string]bool
	Language string
	// MinHits is the number of distinct matches required.
	MinHits int
}

// Hint implements LanguageHinter.
func (h WordListHinter) Hint(question string) (string, bool) {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	seen := make(map[string]bool)
	for _, f := range fields {
		if h.Words[f] {
			seen[f] = true
		}
	}
	if len(seen) >= max(h.MinHits, 1) {
		return answerIn(h.Language), true
	}
	return "", false
}

func answerIn(language string) string {
	return "Answer in " + language + "."
}

func words(list ...string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, w := range list {
		m[w] = true
	}
	return m
}

// DefaultLanguageHinter detects a few scripts and common European languages.
func DefaultLanguageHinter() LanguageHinter {
	return HinterChain{
		ScriptHinter{Script: unicode.Arabic, Language: "Arabic"},
		ScriptHinter{Script: unicode.Cyrillic, Language: "Russian"},
		ScriptHinter{Script: unicode.Han, Language: "Chinese"},
		ScriptHinter{Script: unicode.Hebrew, Language: "Hebrew"},
		WordListHinter{
			Language: "German",
			MinHits:  2,
			Words:    words("der", "die", "das", "und", "ist", "nicht", "ich", "wie", "wer", "mit", "für", "eine", "ein"),
		},
		WordListHinter{
			Language: "French",
			MinHits:  2,
			Words:    words("le", "la", "les", "est", "une", "des", "et", "que", "qui", "pour", "dans", "avec", "quel", "quelle", "comment"),
		},
		WordListHinter{
			Language: "Spanish",
			MinHits:  2,
			Words:    words("el", "los", "las", "es", "una", "del", "que", "por", "para", "con", "cómo", "qué", "cuál", "está"),
		},
	}
}

// languageInstruction returns the hint for question, or the neutral instruction.
func languageInstruction(h LanguageHinter, question string) string {
	if h != nil {
		if hint, ok := h.Hint(question); ok {
			return hint
		}
	}
	return domain.NeutralLanguageInstruction
}
