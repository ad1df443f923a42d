package render

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday"
)

const (
	htmlFlags = blackfriday.HTML_SKIP_HTML |
		blackfriday.HTML_SKIP_STYLE |
		blackfriday.HTML_SKIP_IMAGES

	extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
		blackfriday.EXTENSION_FENCED_CODE |
		blackfriday.EXTENSION_AUTOLINK |
		blackfriday.EXTENSION_STRIKETHROUGH |
		blackfriday.EXTENSION_SPACE_HEADERS
)

// Tags Telegram accepts in HTML parse mode.
var allowedTags = map[string]bool{
	"b": true, "i": true, "u": true, "s": true,
	"a": true, "code": true, "pre": true, "blockquote": true,
}

var (
	tagReplacer = strings.NewReplacer(
		"<p>", "", "</p>", "\n",
		"<strong>", "<b>", "</strong>", "</b>",
		"<em>", "<i>", "</em>", "</i>",
		"<del>", "<s>", "</del>", "</s>",
		"<li>", "• ", "</li>", "",
		"<hr>", "\n", "<hr />", "\n",
		"<br>", "\n", "<br />", "\n",
	)

	headingRe   = regexp.MustCompile(`<h[1-6][^>]*>(.*?)</h[1-6]>`)
	tagRe       = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
)

// ToHTML renders Markdown into the subset of HTML Telegram understands.
func ToHTML(markdown string) string {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	out := string(blackfriday.Markdown([]byte(markdown), renderer, extensions))

	out = headingRe.ReplaceAllString(out, "<b>$1</b>\n")
	out = tagReplacer.Replace(out)
	out = tagRe.ReplaceAllStringFunc(out, func(tag string) string {
		name := strings.ToLower(tagRe.FindStringSubmatch(tag)[1])
		if allowedTags[name] {
			return tag
		}
		return ""
	})
	out = blankLineRe.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
