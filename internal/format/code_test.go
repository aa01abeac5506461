package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestExtractCode(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		language string
		body     string
		label    string
	}{
		{"tagged", "x\n```go\n\n  fmt.Println(1)\n\n```\ny", "go", "fmt.Println(1)", "GO"},
		{"untagged", "```\nplain\n```", "", "plain", "CODE"},
		{"first fence only", "```sh\nls\n```\n```py\nprint()\n```", "sh", "ls", "SH"},
		{"inline fence", "```js alert(1)```", "js", "alert(1)", "JS"},
		{"symbol tag", "```c++\nint main(){}```", "c++", "int main(){}", "C++"},
		{"hyphenated tag", "```objective-c\n[obj run];\n```", "objective-c", "[obj run];", "OBJECTIVE-C"},
		{"not a tag", "```{\"a\": 1}\n```", "", "{\"a\": 1}", "CODE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			block, ok := ExtractCode(tc.input)
			if !ok {
				t.Fatalf("expected fence in %q", tc.input)
			}
			if block.Language != tc.language || block.Body != tc.body {
				t.Fatalf("unexpected block: %#v", block)
			}
			if block.Label() != tc.label {
				t.Fatalf("label = %q, want %q", block.Label(), tc.label)
			}
		})
	}
}

func TestExtractCodeMissingFence(t *testing.T) {
	for _, input := range []string{"no code here", "```go\nunterminated", "`single` and ``double``"} {
		if _, ok := ExtractCode(input); ok {
			t.Fatalf("unexpected fence in %q", input)
		}
	}
}

func TestRenderCodeEscapesBody(t *testing.T) {
	f := newTestFormatter()
	block := f.Format("code for xss:\n```html\n<script>alert(\"x\")</script>\n```")
	if strings.Contains(block.HTML, "<script>") {
		t.Fatalf("body markup leaked into html: %s", block.HTML)
	}
	if !strings.Contains(block.HTML, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;") {
		t.Fatalf("escaped body missing: %s", block.HTML)
	}
	if block.Code.Body != `<script>alert("x")</script>` {
		t.Fatalf("extracted body should stay verbatim: %q", block.Code.Body)
	}
}

func TestRenderCodeHighlight(t *testing.T) {
	f := New(Options{NewID: fixedID, Highlight: true})
	block := f.Format("code for main:\n```go\npackage main\n```")
	if !strings.Contains(block.HTML, `<span class="`) {
		t.Fatalf("expected highlighted spans: %s", block.HTML)
	}
	if !strings.Contains(block.HTML, "main") {
		t.Fatalf("highlighted body lost text: %s", block.HTML)
	}

	unknown := f.Format("code for it:\n```nosuchlang\na < b\n```")
	if !strings.Contains(unknown.HTML, "<code class=\"language-nosuchlang\">a &lt; b</code>") {
		t.Fatalf("unknown language should fall back to escaped text: %s", unknown.HTML)
	}
}

func TestWriteHighlightCSS(t *testing.T) {
	var buf bytes.Buffer
	if err := New(Options{HighlightStyle: "github"}).WriteHighlightCSS(&buf); err != nil {
		t.Fatalf("WriteHighlightCSS returned error: %v", err)
	}
	if !strings.Contains(buf.String(), ".chroma") {
		t.Fatalf("stylesheet missing chroma selectors: %s", buf.String())
	}
}
