package markdown

import (
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
)

// Metadata is the subset of front matter the application understands.
type Metadata struct {
	Title string
	Tags  []string
}

type rawMetadata struct {
	Title string `yaml:"title" toml:"title" json:"title"`
	Tags  any    `yaml:"tags" toml:"tags" json:"tags"`
}

// Split separates front matter from the Markdown body. Documents without
// front matter, or with front matter that cannot be decoded, are returned
// unchanged with empty metadata.
func Split(src string) (Metadata, string) {
	var raw rawMetadata
	rest, err := frontmatter.Parse(strings.NewReader(src), &raw)
	if err != nil {
		return Metadata{}, src
	}
	return Metadata{
		Title: raw.Title,
		Tags:  normalizeTags(raw.Tags),
	}, string(rest)
}

// ReadMetadata loads the front matter of the file at path.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	meta, _ := Split(string(data))
	return meta, nil
}

// HasTag reports whether tag appears in the metadata, ignoring case and a
// leading '#'.
func (m Metadata) HasTag(tag string) bool {
	want := normalizeTag(tag)
	if want == "" {
		return false
	}
	for _, t := range m.Tags {
		if normalizeTag(t) == want {
			return true
		}
	}
	return false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

func normalizeTags(v any) []string {
	switch tags := v.(type) {
	case nil:
		return nil
	case string:
		return strings.FieldsFunc(tags, func(r rune) bool { return r == ',' || r == ' ' })
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			out = append(out, fmt.Sprint(t))
		}
		return out
	default:
		return []string{fmt.Sprint(tags)}
	}
}
