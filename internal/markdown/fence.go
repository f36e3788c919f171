package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// declaredLangAttr carries a fence's own info-string language to the code
// wrapper. The highlighter replaces the context language with its guess when
// none is declared.
const declaredLangAttr = "data-declared-lang"

type fenceLanguage struct{}

func (fenceLanguage) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fence, ok := n.(*ast.FencedCodeBlock); ok {
			if lang := fence.Language(source); len(lang) > 0 {
				fence.SetAttributeString(declaredLangAttr, string(lang))
			}
		}
		return ast.WalkContinue, nil
	})
}

func declaredLanguage(ctx highlighting.CodeBlockContext) string {
	attrs := ctx.Attributes()
	if attrs == nil {
		return ""
	}
	v, ok := attrs.GetString(declaredLangAttr)
	if !ok {
		return ""
	}
	switch lang := v.(type) {
	case string:
		return lang
	case []byte:
		return string(lang)
	}
	return ""
}
