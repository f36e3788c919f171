// Package markdown turns note source into HTML for the preview and export.
//
// The pipeline is fixed: Obsidian embeds are rewritten to plain image syntax,
// front matter is stripped, goldmark parses with GFM and hard line breaks,
// math is passed through for MathJax, and fenced code is highlighted with
// chroma before the document is serialized.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

const defaultStyle = "github-dark"

// Renderer converts Markdown to HTML.
type Renderer struct {
	md       goldmark.Markdown
	imageDir string
	style    string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithImageDir sets the project-relative directory prefixed to embedded
// images.
func WithImageDir(dir string) Option {
	return func(r *Renderer) {
		r.imageDir = dir
	}
}

// WithStyle selects the chroma style used by WriteCSS.
func WithStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.style = name
		}
	}
}

// New builds a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{style: defaultStyle}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			mathjax.MathJax,
			highlighting.NewHighlighting(
				highlighting.WithGuessLanguage(true),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.PreventSurroundingPre(true),
				),
				highlighting.WithWrapperRenderer(wrapCode),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(fenceLanguage{}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return r
}

// Prepare applies the text stages that precede parsing: embed rewriting and
// front matter removal.
func Prepare(src, imageDir string) (Metadata, string) {
	return Split(RewriteObsidianLinks(src, imageDir))
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src string) (string, error) {
	_, body := Prepare(src, r.imageDir)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// WriteCSS writes the stylesheet for highlighted code.
func (r *Renderer) WriteCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(r.style))
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{.CSS}}
</style>
<script src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js" async></script>
</head>
<body>
<article class="markdown-body">
{{.Body}}
</article>
</body>
</html>
`))

// RenderDocument writes a standalone HTML page for src. The front matter
// title wins over fallbackTitle.
func (r *Renderer) RenderDocument(w io.Writer, fallbackTitle, src string) error {
	meta, _ := Split(src)
	body, err := r.Render(src)
	if err != nil {
		return err
	}
	var css bytes.Buffer
	if err := r.WriteCSS(&css); err != nil {
		return fmt.Errorf("write css: %w", err)
	}
	title := meta.Title
	if title == "" {
		title = fallbackTitle
	}
	return documentTemplate.Execute(w, struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: title,
		CSS:   template.CSS(css.String()),
		Body:  template.HTML(body),
	})
}

func wrapCode(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	if lang := declaredLanguage(ctx); lang != "" && lexers.Get(lang) != nil {
		_, _ = w.WriteString(`<pre><code class="hljs language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`">`)
		return
	}
	_, _ = w.WriteString(`<pre><code class="hljs">`)
}
