package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyaoi/theoremnote/internal/config"
	"github.com/kyaoi/theoremnote/internal/workspace"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *config.Store) {
	t.Helper()
	store := config.New(filepath.Join(t.TempDir(), "config", "config.json"), nil)
	return New(store, opts...), store
}

func TestGetFileTree(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "file1.txt"), []byte("content1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "subdir", "file2.txt"), []byte("content2"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc, store := newTestService(t)

	nodes, err := svc.GetFileTree(context.Background(), root)
	if err != nil {
		t.Fatalf("get file tree: %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(nodes))
	}
	if nodes[0].Name != "subdir" || nodes[1].Name != "file1.txt" {
		t.Errorf("expected subdir before file1.txt, got %s, %s", nodes[0].Name, nodes[1].Name)
	}
	if got := store.LastOpenedDirectory(); got != root {
		t.Errorf("expected %q remembered, got %q", root, got)
	}
	if got := svc.GetLastOpenedDirectory(); got != root {
		t.Errorf("expected last opened directory %q, got %q", root, got)
	}
}

func TestGetFileTreeMissingDirectory(t *testing.T) {
	svc, store := newTestService(t)

	nodes, err := svc.GetFileTree(context.Background(), filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if nodes == nil || len(nodes) != 0 {
		t.Errorf("expected empty list, got %v", nodes)
	}
	if got := store.LastOpenedDirectory(); got != "" {
		t.Errorf("expected missing directory not remembered, got %q", got)
	}
}

func TestGetNewDirectoryFileTreeUsesPicker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "note.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	picker := PickerFunc(func(context.Context) (string, bool, error) {
		return root, true, nil
	})
	svc, _ := newTestService(t, WithPicker(picker))

	nodes, err := svc.GetNewDirectoryFileTree(context.Background())
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "note.md" {
		t.Errorf("unexpected nodes %v", nodes)
	}
}

func TestGetNewDirectoryFileTreeCancelled(t *testing.T) {
	picker := PickerFunc(func(context.Context) (string, bool, error) {
		return "", false, nil
	})
	svc, store := newTestService(t, WithPicker(picker))

	nodes, err := svc.GetNewDirectoryFileTree(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected empty list, got %v", nodes)
	}
	if store.LastOpenedDirectory() != "" {
		t.Error("expected nothing remembered")
	}
}

func TestGetNewDirectoryFileTreePickerFailure(t *testing.T) {
	picker := PickerFunc(func(context.Context) (string, bool, error) {
		return "", false, errors.New("dialog crashed")
	})
	svc, _ := newTestService(t, WithPicker(picker))

	if _, err := svc.GetNewDirectoryFileTree(context.Background()); err != ErrFileTree {
		t.Errorf("expected ErrFileTree, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	svc, _ := newTestService(t)
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte("Test file content"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ReadFile(path)
	if err != nil || got != "Test file content" {
		t.Errorf("expected content, got %q, %v", got, err)
	}

	if _, err := svc.ReadFile(path + ".missing"); err != ErrReadFile {
		t.Errorf("expected ErrReadFile, got %v", err)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	svc, _ := newTestService(t)
	path := filepath.Join(t.TempDir(), "subdir", "test.txt")

	if err := svc.WriteFile(path, "Test content to write"); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "Test content to write" {
		t.Errorf("expected written content, got %q, %v", data, err)
	}

	if err := svc.WriteFile("", "content"); err != ErrWriteFile {
		t.Errorf("expected ErrWriteFile, got %v", err)
	}
}

func TestWorkspaceRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	root := t.TempDir()
	active := filepath.Join(root, "a.md")
	info := workspace.Info{OpenTabs: []string{active}, ActiveTab: &active}

	if svc.LoadWorkspace(root) != nil {
		t.Fatal("expected no workspace yet")
	}
	if err := svc.SaveWorkspace(root, info); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := svc.LoadWorkspace(root)
	if loaded == nil || loaded.Active() != active || len(loaded.OpenTabs) != 1 {
		t.Errorf("unexpected workspace %+v", loaded)
	}
}
