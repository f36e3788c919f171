package tree

import (
	"path/filepath"
	"strings"
)

// FromPaths constructs a tree that contains only the provided files. Paths
// outside root are ignored. The root node represents the directory chosen by
// the user.
func FromPaths(root string, files []string) *Node {
	root = filepath.Clean(root)
	node := &Node{
		Name:     filepath.Base(root),
		Path:     root,
		IsDir:    true,
		Open:     true,
		Children: []*Node{},
	}

	for _, file := range files {
		rel, err := filepath.Rel(root, filepath.Clean(file))
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		insertPath(node, strings.Split(rel, string(filepath.Separator)))
	}

	sortRecursive(node)
	return node
}

func insertPath(root *Node, parts []string) {
	current := root
	for i, part := range parts {
		isLast := i == len(parts)-1
		child := current.ChildByName(part)
		if child == nil {
			child = &Node{
				Name:   part,
				Path:   filepath.Join(current.Path, part),
				IsDir:  !isLast,
				Parent: current,
			}
			if child.IsDir {
				child.Children = []*Node{}
			}
			current.Children = append(current.Children, child)
		}
		current = child
	}
}

func sortRecursive(node *Node) {
	sortNodes(node.Children)
	for _, child := range node.Children {
		if child.IsDir {
			sortRecursive(child)
		}
	}
}
