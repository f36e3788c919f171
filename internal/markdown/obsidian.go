package markdown

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var obsidianEmbed = regexp.MustCompile(`!\[\[(.*?)\]\]`)

// RewriteObsidianLinks converts Obsidian embeds such as ![[diagram.png]] into
// standard Markdown images. The target is imageDir joined with the filename,
// each path segment percent-encoded; the alt text keeps the raw filename. An
// empty imageDir leaves the bare filename as the target.
//
// It must run before parsing so the parser sees an ordinary image.
func RewriteObsidianLinks(src, imageDir string) string {
	prefix := encodePath(strings.TrimRight(filepath.ToSlash(imageDir), "/"))
	return obsidianEmbed.ReplaceAllStringFunc(src, func(match string) string {
		name := obsidianEmbed.FindStringSubmatch(match)[1]
		target := encodePath(name)
		if prefix != "" {
			target = prefix + "/" + target
		}
		return "![" + escapeAlt(name) + "](" + target + ")"
	})
}

func encodePath(p string) string {
	if p == "" {
		return ""
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

var altReplacer = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

func escapeAlt(s string) string {
	return altReplacer.Replace(s)
}
