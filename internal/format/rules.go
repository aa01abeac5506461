package format

import (
	"strings"

	"chatwidget/internal/model"
)

// Rules holds the vocabularies that drive classification and prose emphasis.
// Matching is case-insensitive substring search; "vs" therefore also matches
// inside words such as "canvas".
type Rules struct {
	CodeTriggers       []string
	ComparisonTriggers []string
	EmphasisWords      []string
}

// DefaultCodeTriggers mark a reply as a code answer.
var DefaultCodeTriggers = []string{"code for", "example of", "how to write", "implementation of", "program"}

// DefaultComparisonTriggers mark a reply as a comparison answer.
var DefaultComparisonTriggers = []string{"difference between", "compare", "comparison", "vs", "versus"}

// DefaultEmphasisWords are highlighted in prose paragraphs.
var DefaultEmphasisWords = []string{
	"important", "note", "warning", "key", "tip", "caution", "example",
	"benefit", "advantage", "disadvantage", "difference", "essential", "remember",
}

// DefaultRules returns a copy of the built-in vocabularies.
func DefaultRules() Rules {
	return Rules{
		CodeTriggers:       append([]string(nil), DefaultCodeTriggers...),
		ComparisonTriggers: append([]string(nil), DefaultComparisonTriggers...),
		EmphasisWords:      append([]string(nil), DefaultEmphasisWords...),
	}
}

// withDefaults fills empty vocabularies from the defaults.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if len(r.CodeTriggers) == 0 {
		r.CodeTriggers = d.CodeTriggers
	}
	if len(r.ComparisonTriggers) == 0 {
		r.ComparisonTriggers = d.ComparisonTriggers
	}
	if len(r.EmphasisWords) == 0 {
		r.EmphasisWords = d.EmphasisWords
	}
	return r
}

// WantsCode reports whether text contains a code trigger.
func (r Rules) WantsCode(text string) bool {
	return containsAny(text, r.CodeTriggers)
}

// WantsComparison reports whether text contains a comparison trigger.
func (r Rules) WantsComparison(text string) bool {
	return containsAny(text, r.ComparisonTriggers)
}

// Intent returns the category the triggers alone point at, code first.
// It does not look for fences or pipe rows; see Formatter.Classify.
func (r Rules) Intent(text string) model.Kind {
	switch {
	case r.WantsCode(text):
		return model.KindCode
	case r.WantsComparison(text):
		return model.KindTable
	default:
		return model.KindProse
	}
}

func containsAny(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
