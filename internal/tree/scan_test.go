package tree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanDirectoriesBeforeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "file1.txt"), "content1")
	writeFile(t, filepath.Join(root, "subdir", "file2.txt"), "content2")

	node := Scan(context.Background(), root)

	if node.Status != StatusOK {
		t.Fatalf("expected ok status, got %v (%v)", node.Status, node.Err)
	}
	if got := names(node.Children); !equalStrings(got, []string{"subdir", "file1.txt"}) {
		t.Fatalf("unexpected top level: %v", got)
	}
	subdir := node.Children[0]
	if !subdir.IsDir || subdir.Path != filepath.Join(root, "subdir") {
		t.Errorf("unexpected subdir node: %+v", subdir)
	}
	if got := names(subdir.Children); !equalStrings(got, []string{"file2.txt"}) {
		t.Errorf("unexpected subdir children: %v", got)
	}
	if subdir.Parent != node {
		t.Error("expected subdir parent to be root")
	}
	file := node.Children[1]
	if file.IsDir || file.Children != nil {
		t.Errorf("files must not carry children: %+v", file)
	}
}

func TestScanSortsByName(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"gamma.md", "alpha.md", "beta.md"} {
		writeFile(t, filepath.Join(root, name), "")
	}
	for _, name := range []string{"zeta", "eta"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	node := Scan(context.Background(), root)

	want := []string{"eta", "zeta", "alpha.md", "beta.md", "gamma.md"}
	if got := names(node.Children); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScanListsEveryEntryOnce(t *testing.T) {
	root := t.TempDir()
	want := map[string]bool{}
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, filepath.Join(root, name, "note.md"), "")
		want[name] = true
	}
	for _, name := range []string{"x.md", "y.txt"} {
		writeFile(t, filepath.Join(root, name), "")
		want[name] = true
	}

	node := Scan(context.Background(), root)

	seen := map[string]int{}
	for _, child := range node.Children {
		seen[child.Name]++
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), seen)
	}
	for name, count := range seen {
		if !want[name] || count != 1 {
			t.Errorf("entry %q seen %d times", name, count)
		}
	}
}

func TestScanMissingRoot(t *testing.T) {
	node := Scan(context.Background(), filepath.Join(t.TempDir(), "nonexistent"))

	if node.Status != StatusNotExist {
		t.Errorf("expected not-exist status, got %v", node.Status)
	}
	if node.Children == nil || len(node.Children) != 0 {
		t.Errorf("expected empty children, got %v", node.Children)
	}
}

func TestScanFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	writeFile(t, path, "# note")

	node := Scan(context.Background(), path)

	if node.Status != StatusNotDir {
		t.Errorf("expected not-dir status, got %v", node.Status)
	}
}

func TestScanUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "secret.md"), "")
	writeFile(t, filepath.Join(root, "open.md"), "")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	node := Scan(context.Background(), root)

	if got := names(node.Children); !equalStrings(got, []string{"locked", "open.md"}) {
		t.Fatalf("expected partial tree, got %v", got)
	}
	dir := node.Children[0]
	if dir.Status != StatusPermission {
		t.Errorf("expected permission status, got %v", dir.Status)
	}
	if len(dir.Children) != 0 {
		t.Errorf("expected no children, got %v", names(dir.Children))
	}
	if failures := node.Failures(); len(failures) != 1 || failures[0] != dir {
		t.Errorf("expected one failure, got %v", failures)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "note.md"), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	node := Scan(ctx, root)

	if node.Status != StatusFailed {
		t.Errorf("expected failed status, got %v", node.Status)
	}
}

func TestScanWithSkip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "")
	writeFile(t, filepath.Join(root, ".theoremnote", "workspace.json"), "{}")
	writeFile(t, filepath.Join(root, "note.md"), "")

	node := Scan(context.Background(), root, WithSkip(SkipNames(".theoremnote")))

	if got := names(node.Children); !equalStrings(got, []string{".git", "note.md"}) {
		t.Errorf("expected only the named entry skipped, got %v", got)
	}
}

func TestFindAndHasMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "guide.md"), "")
	writeFile(t, filepath.Join(root, "src", "main.go"), "")

	node := Scan(context.Background(), root)

	docs := node.Find(filepath.Join(root, "docs"))
	if docs == nil || !docs.HasMarkdown() {
		t.Fatalf("expected docs to contain markdown, got %+v", docs)
	}
	src := node.Find(filepath.Join(root, "src"))
	if src == nil || src.HasMarkdown() {
		t.Errorf("expected src without markdown, got %+v", src)
	}
	if node.Find(filepath.Join(root, "missing")) != nil {
		t.Error("expected nil for missing path")
	}
}

func TestFromPaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "notes")
	node := FromPaths(root, []string{
		filepath.Join(root, "b.md"),
		filepath.Join(root, "dir", "c.md"),
		filepath.Join(root, "a.md"),
		filepath.Join(string(filepath.Separator), "elsewhere", "x.md"),
	})

	if got := names(node.Children); !equalStrings(got, []string{"dir", "a.md", "b.md"}) {
		t.Fatalf("unexpected children: %v", got)
	}
	dir := node.Children[0]
	if got := names(dir.Children); !equalStrings(got, []string{"c.md"}) {
		t.Errorf("unexpected dir children: %v", got)
	}
	if dir.Children[0].Path != filepath.Join(root, "dir", "c.md") {
		t.Errorf("unexpected path %q", dir.Children[0].Path)
	}
}
