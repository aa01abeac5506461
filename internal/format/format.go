// Package format turns a model's raw reply into HTML for the chat widget.
//
// A reply passes through three stages in a fixed order: code-block
// extraction, table extraction, and plain-text cleanup. The first two only
// run when the reply contains one of their trigger phrases, and either falls
// through to the next stage when the reply has no fence or no pipe rows.
// Code is tried before tables because code samples often contain "vs".
package format

import (
	"regexp"

	"github.com/google/uuid"

	"chatwidget/internal/model"
)

// Options configures a Formatter.
type Options struct {
	Rules Rules
	// Highlight enables chroma syntax highlighting inside code blocks.
	Highlight bool
	// HighlightStyle names the chroma style; only used to resolve the style
	// registry since the HTML is emitted with CSS classes.
	HighlightStyle string
	// NewID returns the unique suffix for a code block's copy target.
	NewID func() string
}

// Formatter renders replies. It is safe for concurrent use.
type Formatter struct {
	rules     Rules
	emphasis  *regexp.Regexp
	highlight bool
	style     string
	newID     func() string
}

// New returns a Formatter; empty vocabularies fall back to the defaults.
func New(opts Options) *Formatter {
	rules := opts.Rules.withDefaults()
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString()[:8] }
	}
	style := opts.HighlightStyle
	if style == "" {
		style = "monokai"
	}
	return &Formatter{
		rules:     rules,
		emphasis:  emphasisPattern(rules.EmphasisWords),
		highlight: opts.Highlight,
		style:     style,
		newID:     newID,
	}
}

var defaultFormatter = New(Options{})

// Format renders text with the default rules.
func Format(text string) model.Block {
	return defaultFormatter.Format(text)
}

// Rules returns the vocabularies in effect.
func (f *Formatter) Rules() Rules {
	return f.rules
}

// Classify reports which stage would claim text.
func (f *Formatter) Classify(text string) model.Kind {
	kind, _, _ := f.resolve(text)
	return kind
}

// Format renders text into a tagged HTML block.
func (f *Formatter) Format(text string) model.Block {
	kind, code, table := f.resolve(text)
	switch kind {
	case model.KindCode:
		return model.Block{Kind: kind, HTML: f.renderCode(code), Code: &code}
	case model.KindTable:
		return model.Block{Kind: kind, HTML: renderTable(table), Table: &table}
	default:
		return model.Block{Kind: model.KindProse, HTML: f.renderProse(text)}
	}
}

func (f *Formatter) resolve(text string) (model.Kind, model.CodeBlock, model.TableRows) {
	if f.rules.WantsCode(text) {
		if code, ok := ExtractCode(text); ok {
			return model.KindCode, code, model.TableRows{}
		}
	}
	if f.rules.WantsComparison(text) {
		if table, ok := ExtractTable(text); ok {
			return model.KindTable, model.CodeBlock{}, table
		}
	}
	return model.KindProse, model.CodeBlock{}, model.TableRows{}
}
