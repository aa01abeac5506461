package format

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"chatwidget/internal/model"
)

// fencePattern matches the first ```lang ... ``` region. The tag is the run
// of non-space characters directly after the opening backticks.
var fencePattern = regexp.MustCompile("(?s)```([^\\s`]*)(.*?)```")

// languageTag accepts tags such as go, c++, c# and objective-c.
var languageTag = regexp.MustCompile(`^[\w][\w+#.-]*$`)

// ExtractCode returns the first fenced region of text. Later fences are
// ignored. A tag that is not a language name stays in the body.
func ExtractCode(text string) (model.CodeBlock, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return model.CodeBlock{}, false
	}
	lang, body := m[1], m[2]
	if lang != "" && !languageTag.MatchString(lang) {
		lang, body = "", lang+body
	}
	return model.CodeBlock{
		Language: lang,
		Body:     strings.TrimSpace(body),
	}, true
}

func (f *Formatter) renderCode(block model.CodeBlock) string {
	id := "code-" + f.newID()

	var b strings.Builder
	b.WriteString(`<div class="code-response">`)
	b.WriteString(`<div class="code-header">`)
	b.WriteString(`<div class="code-title">`)
	fmt.Fprintf(&b, `<strong>%s</strong>`, html.EscapeString(block.Label()))
	b.WriteString(`<small><em>Implementation Example</em></small>`)
	b.WriteString(`</div>`)
	b.WriteString(`<div class="code-actions">`)
	fmt.Fprintf(&b, `<button class="copy-btn" data-target="%s">Copy</button>`, id)
	b.WriteString(`</div>`)
	b.WriteString(`</div>`)

	codeClass := ""
	if block.Language != "" {
		codeClass = fmt.Sprintf(` class="language-%s"`, html.EscapeString(strings.ToLower(block.Language)))
	}
	fmt.Fprintf(&b, `<pre id="%s"><code%s>%s</code></pre>`, id, codeClass, f.codeBody(block))
	b.WriteString(`</div>`)
	return b.String()
}

// codeBody returns the escaped body, highlighted when enabled and a lexer is known.
func (f *Formatter) codeBody(block model.CodeBlock) string {
	if !f.highlight || block.Language == "" {
		return html.EscapeString(block.Body)
	}
	highlighted, err := highlightHTML(block.Body, block.Language, f.style)
	if err != nil {
		return html.EscapeString(block.Body)
	}
	return highlighted
}

var errNoLexer = errors.New("no lexer for language")

func highlightHTML(body, language, styleName string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", errNoLexer
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, body)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("highlight %s: %w", language, err)
	}
	return buf.String(), nil
}

// WriteHighlightCSS writes the stylesheet matching the class names emitted
// when highlighting is enabled.
func (f *Formatter) WriteHighlightCSS(w io.Writer) error {
	style := styles.Get(f.style)
	if style == nil {
		style = styles.Fallback
	}
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, style)
}
