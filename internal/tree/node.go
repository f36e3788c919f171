package tree

import (
	"path/filepath"
	"strings"
)

// Status records whether a directory's entries could be listed.
type Status int

const (
	StatusOK Status = iota
	StatusPermission
	StatusNotExist
	StatusNotDir
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPermission:
		return "permission denied"
	case StatusNotExist:
		return "not exist"
	case StatusNotDir:
		return "not a directory"
	default:
		return "failed"
	}
}

// Node represents a single entry in the file tree.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Children []*Node
	Status   Status
	Err      error

	// Open is view state for the tree pane.
	Open   bool
	Parent *Node
}

// ChildByName returns the child node with the given name if it exists.
func (n *Node) ChildByName(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Walk visits n and every descendant depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the node with the given absolute path.
func (n *Node) Find(path string) *Node {
	path = filepath.Clean(path)
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if filepath.Clean(node.Path) == path {
			found = node
			return false
		}
		return node.IsDir
	})
	return found
}

// HasMarkdown reports whether the subtree contains at least one Markdown file.
func (n *Node) HasMarkdown() bool {
	has := false
	n.Walk(func(node *Node) bool {
		if has {
			return false
		}
		if !node.IsDir && IsMarkdown(node.Name) {
			has = true
		}
		return true
	})
	return has
}

// Failures lists directories in the subtree that could not be read.
func (n *Node) Failures() []*Node {
	var failed []*Node
	n.Walk(func(node *Node) bool {
		if node.IsDir && node.Status != StatusOK {
			failed = append(failed, node)
		}
		return true
	})
	return failed
}

// IsMarkdown reports whether name has a Markdown extension.
func IsMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".mdx") || strings.HasSuffix(lower, ".markdown")
}

func (n *Node) adopt() {
	for _, child := range n.Children {
		child.Parent = n
	}
}
