package conv

import (
	"fmt"
	stdhtml "html"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func MarkdownToTelegramHTML(md []byte) string {
	// 1. Render HTML
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags, RenderNodeHook: telegramHook})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	// 2. Sanitize tags
	sanitized := tgPolicy.SanitizeBytes(unsafeHTML)

	return string(sanitized)
}

// telegramHook renders the blocks Telegram has no tag for: headings become
// bold lines and list items become bullet or numbered lines.
func telegramHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			io.WriteString(w, "<b>")
		} else {
			io.WriteString(w, "</b>\n")
		}
		return ast.GoToNext, true
	case *ast.List:
		return ast.GoToNext, true
	case *ast.ListItem:
		if !entering {
			io.WriteString(w, "\n")
			return ast.GoToNext, true
		}
		if n.ListFlags&ast.ListTypeOrdered != 0 {
			fmt.Fprintf(w, "%d. ", itemNumber(n))
		} else {
			io.WriteString(w, "• ")
		}
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

func itemNumber(item *ast.ListItem) int {
	list, ok := item.Parent.(*ast.List)
	if !ok {
		return 1
	}
	n := list.Start
	if n == 0 {
		n = 1
	}
	for _, c := range list.Children {
		if c == ast.Node(item) {
			break
		}
		n++
	}
	return n
}

// Preformatted escapes plain text (JSON, command output) into a <pre> block.
func Preformatted(text string) string {
	return "<pre>" + stdhtml.EscapeString(text) + "</pre>"
}
