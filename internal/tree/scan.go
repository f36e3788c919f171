package tree

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var errNotDir = errors.New("path is not a directory")

// Option customises a scan.
type Option func(*scanner)

// WithSkip omits entries for which skip returns true.
func WithSkip(skip func(name string) bool) Option {
	return func(s *scanner) {
		s.skip = skip
	}
}

// SkipNames returns a skip function matching any of names exactly.
func SkipNames(names ...string) func(name string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool {
		return set[name]
	}
}

type scanner struct {
	skip func(name string) bool
}

// Scan builds the tree rooted at root. Every subdirectory is read in its own
// goroutine and the scan waits for all of them before sorting. It never fails:
// directories that cannot be listed come back with no children and a Status
// describing why.
func Scan(ctx context.Context, root string, opts ...Option) *Node {
	s := &scanner{}
	for _, opt := range opts {
		opt(s)
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	node := &Node{
		Name:  filepath.Base(root),
		Path:  root,
		IsDir: true,
		Open:  true,
	}

	info, err := os.Stat(root)
	switch {
	case err != nil:
		node.fail(err)
		return node
	case !info.IsDir():
		node.fail(errNotDir)
		return node
	}

	s.fill(ctx, node)
	return node
}

func (s *scanner) fill(ctx context.Context, dir *Node) {
	if err := ctx.Err(); err != nil {
		dir.fail(err)
		return
	}

	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		dir.fail(err)
		return
	}

	children := make([]*Node, 0, len(entries))
	var group errgroup.Group
	for _, entry := range entries {
		name := entry.Name()
		if s.skip != nil && s.skip(name) {
			continue
		}
		child := &Node{
			Name:  name,
			Path:  filepath.Join(dir.Path, name),
			IsDir: entry.IsDir(),
		}
		children = append(children, child)
		if child.IsDir {
			group.Go(func() error {
				s.fill(ctx, child)
				return nil
			})
		}
	}
	_ = group.Wait()

	sortNodes(children)
	dir.Children = children
	dir.Status = StatusOK
	dir.Err = nil
	dir.adopt()
}

func (n *Node) fail(err error) {
	n.Children = []*Node{}
	n.Err = err
	n.Status = classify(err)
}

func classify(err error) Status {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return StatusPermission
	case errors.Is(err, fs.ErrNotExist):
		return StatusNotExist
	case errors.Is(err, errNotDir), errors.Is(err, syscall.ENOTDIR):
		return StatusNotDir
	default:
		return StatusFailed
	}
}

// sortNodes orders directories before files, then by locale-aware name.
// Collators are not safe for concurrent use, so each call builds its own.
func sortNodes(nodes []*Node) {
	if len(nodes) < 2 {
		return
	}
	col := collate.New(language.Und)
	sort.SliceStable(nodes, func(i, j int) bool {
		ni, nj := nodes[i], nodes[j]
		if ni.IsDir != nj.IsDir {
			return ni.IsDir
		}
		if c := col.CompareString(ni.Name, nj.Name); c != 0 {
			return c < 0
		}
		return ni.Name < nj.Name
	})
}
