package app

import (
	"fmt"

	"github.com/kyaoi/theoremnote/internal/markdown"
	"github.com/kyaoi/theoremnote/internal/tree"
	"github.com/kyaoi/theoremnote/internal/ui"
)

// FilterByTag narrows the tree in state to Markdown files whose front matter
// carries tag.
func FilterByTag(state ui.State, tag string) (ui.State, error) {
	if state.TreeRoot == nil {
		return state, fmt.Errorf("タグ %q に一致するファイルがありません", tag)
	}
	matches := TaggedFiles(state.TreeRoot, tag)
	if len(matches) == 0 {
		return state, fmt.Errorf("タグ %q に一致するファイルがありません", tag)
	}

	state.TreeRoot = tree.FromPaths(state.TreeRoot.Path, matches)
	state.TreeRoot.Name = fmt.Sprintf("%s (tag: %s)", state.TreeRoot.Name, tag)
	state.TreeSelectionPath = matches[0]
	state.Message = fmt.Sprintf("タグ \"%s\" を含むファイルを選択してください。", tag)
	state.FocusTree = true
	return state, nil
}

// TaggedFiles lists the Markdown files under root tagged with tag, in tree
// order.
func TaggedFiles(root *tree.Node, tag string) []string {
	var matches []string
	root.Walk(func(node *tree.Node) bool {
		if node.IsDir || !tree.IsMarkdown(node.Name) {
			return true
		}
		meta, err := markdown.ReadMetadata(node.Path)
		if err != nil {
			return true
		}
		if meta.HasTag(tag) {
			matches = append(matches, node.Path)
		}
		return true
	})
	return matches
}
