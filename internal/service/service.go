// Package service exposes the file operations the UI shell relies on. Each
// operation either returns a value or one of the user-facing errors below;
// the underlying cause is logged and not passed on.
package service

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/kyaoi/theoremnote/internal/config"
	"github.com/kyaoi/theoremnote/internal/tree"
	"github.com/kyaoi/theoremnote/internal/workspace"
)

var (
	// ErrFileTree is returned when a directory tree could not be built.
	ErrFileTree = errors.New("ファイルツリーの取得中にエラーが発生しました")
	// ErrReadFile is returned when a file could not be read.
	ErrReadFile = errors.New("ファイルの読み込み中にエラーが発生しました")
	// ErrWriteFile is returned when a file could not be written.
	ErrWriteFile = errors.New("ファイルの書き込み中にエラーが発生しました")
)

// DirectoryPicker asks the user for a folder. ok is false when the user
// cancels.
type DirectoryPicker interface {
	PickDirectory(ctx context.Context) (dir string, ok bool, err error)
}

// PickerFunc adapts a function to DirectoryPicker.
type PickerFunc func(ctx context.Context) (string, bool, error)

// PickDirectory implements DirectoryPicker.
func (f PickerFunc) PickDirectory(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

// Service implements the boundary operations on top of the config store and
// the filesystem.
type Service struct {
	config *config.Store
	picker DirectoryPicker
	logger *log.Logger
	scan   []tree.Option
}

// Option configures a Service.
type Option func(*Service)

// WithPicker sets the picker used when no root directory is given.
func WithPicker(p DirectoryPicker) Option {
	return func(s *Service) {
		s.picker = p
	}
}

// WithLogger sets the logger that receives the causes of failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScanOptions passes options through to tree scans.
func WithScanOptions(opts ...tree.Option) Option {
	return func(s *Service) {
		s.scan = append(s.scan, opts...)
	}
}

// New creates a service persisting through cfg.
func New(cfg *config.Store, opts ...Option) *Service {
	s := &Service{
		config: cfg,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetFileTree scans root and records it as the last opened directory. With an
// empty root the picker chooses one; a cancelled pick yields an empty list.
func (s *Service) GetFileTree(ctx context.Context, root string) ([]*tree.Node, error) {
	node, err := s.ScanRoot(ctx, root)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return []*tree.Node{}, nil
	}
	return node.Children, nil
}

// GetNewDirectoryFileTree always asks the picker for a directory.
func (s *Service) GetNewDirectoryFileTree(ctx context.Context) ([]*tree.Node, error) {
	return s.GetFileTree(ctx, "")
}

// ScanRoot is GetFileTree returning the root node itself, so callers keep the
// chosen directory and its status. It returns nil when the pick is cancelled.
func (s *Service) ScanRoot(ctx context.Context, root string) (*tree.Node, error) {
	if root == "" {
		if s.picker == nil {
			s.logger.Printf("service: no directory picker configured")
			return nil, ErrFileTree
		}
		dir, ok, err := s.picker.PickDirectory(ctx)
		if err != nil {
			s.logger.Printf("service: pick directory: %v", err)
			return nil, ErrFileTree
		}
		if !ok || dir == "" {
			return nil, nil
		}
		root = dir
	}

	node := tree.Scan(ctx, root, s.scan...)
	for _, failed := range node.Failures() {
		s.logger.Printf("service: %s: %s: %v", failed.Path, failed.Status, failed.Err)
	}

	if s.config != nil && node.Status == tree.StatusOK {
		if err := s.config.SetLastOpenedDirectory(node.Path); err != nil {
			s.logger.Printf("service: remember %s: %v", node.Path, err)
		}
	}
	return node, nil
}

// ReadFile returns the content of path.
func (s *Service) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Printf("service: read %s: %v", path, err)
		return "", ErrReadFile
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories.
func (s *Service) WriteFile(path, content string) error {
	if err := writeFile(path, content); err != nil {
		s.logger.Printf("service: write %s: %v", path, err)
		return ErrWriteFile
	}
	return nil
}

func writeFile(path, content string) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// GetLastOpenedDirectory returns the remembered directory, or "".
func (s *Service) GetLastOpenedDirectory() string {
	if s.config == nil {
		return ""
	}
	return s.config.LastOpenedDirectory()
}

// LoadWorkspace returns the workspace saved beside root, or nil.
func (s *Service) LoadWorkspace(root string) *workspace.Info {
	return workspace.Load(root)
}

// SaveWorkspace persists info beside root.
func (s *Service) SaveWorkspace(root string, info workspace.Info) error {
	return workspace.Save(root, info, s.logger)
}
