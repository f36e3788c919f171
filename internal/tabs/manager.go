// Package tabs keeps the ordered list of open files and the active tab.
//
// A Manager is owned by a single caller (the UI event loop) and is not safe
// for concurrent use.
package tabs

import (
	"io"
	"log"
	"strings"

	"github.com/kyaoi/theoremnote/internal/workspace"
)

// ReadErrorContent is shown in place of a file that could not be read.
const ReadErrorContent = "# エラー\nファイルを読み込めませんでした"

// Reader loads file contents for newly opened tabs.
type Reader interface {
	ReadFile(path string) (string, error)
}

// OpenFile is the editing state of one tab.
type OpenFile struct {
	Path        string
	Content     string
	Modified    bool
	DisplayName string
}

// Manager tracks open files and which one is active.
type Manager struct {
	reader Reader
	logger *log.Logger
	files  []*OpenFile
	active int
}

// NewManager returns an empty manager that loads files through reader.
func NewManager(reader Reader, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Manager{
		reader: reader,
		logger: logger,
		active: -1,
	}
}

// DisplayName returns the final path segment, accepting either separator.
func DisplayName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return path
}

// Open activates the tab for path, loading it first if it is not open yet.
// A read failure still opens a tab holding ReadErrorContent.
func (m *Manager) Open(path string) {
	if idx := m.IndexOf(path); idx >= 0 {
		m.active = idx
		return
	}

	content, err := m.reader.ReadFile(path)
	if err != nil {
		m.logger.Printf("tabs: read %s: %v", path, err)
		content = ReadErrorContent
	}
	m.files = append(m.files, &OpenFile{
		Path:        path,
		Content:     content,
		DisplayName: DisplayName(path),
	})
	m.active = len(m.files) - 1
}

// Close removes the tab at index. Closing a tab at or before the active one
// moves the active index left, stopping at the first tab.
func (m *Manager) Close(index int) {
	if index < 0 || index >= len(m.files) {
		return
	}
	m.files = append(m.files[:index], m.files[index+1:]...)

	switch {
	case len(m.files) == 0:
		m.active = -1
	case index <= m.active:
		m.active = max(m.active-1, 0)
	}
}

// SwitchTo activates the tab at index. Out of range indexes are ignored.
func (m *Manager) SwitchTo(index int) {
	if index >= 0 && index < len(m.files) {
		m.active = index
	}
}

// UpdateContent replaces the active file's content and marks it modified.
func (m *Manager) UpdateContent(content string) {
	file := m.activeFile()
	if file == nil {
		return
	}
	file.Content = content
	file.Modified = true
}

// MarkSaved clears the modified flag of the file at path.
func (m *Manager) MarkSaved(path string) {
	if idx := m.IndexOf(path); idx >= 0 {
		m.files[idx].Modified = false
	}
}

// Reload replaces the content of an unmodified tab after an external change.
// It reports whether the tab was updated.
func (m *Manager) Reload(path, content string) bool {
	idx := m.IndexOf(path)
	if idx < 0 || m.files[idx].Modified {
		return false
	}
	m.files[idx].Content = content
	return true
}

// Active returns a copy of the active file.
func (m *Manager) Active() (OpenFile, bool) {
	file := m.activeFile()
	if file == nil {
		return OpenFile{}, false
	}
	return *file, true
}

// ActiveIndex returns the active tab index, or -1 when no tab is open.
func (m *Manager) ActiveIndex() int {
	return m.active
}

// Len returns the number of open tabs.
func (m *Manager) Len() int {
	return len(m.files)
}

// Files returns copies of the open files in tab order.
func (m *Manager) Files() []OpenFile {
	out := make([]OpenFile, len(m.files))
	for i, f := range m.files {
		out[i] = *f
	}
	return out
}

// IndexOf returns the tab index of path, or -1.
func (m *Manager) IndexOf(path string) int {
	for i, f := range m.files {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// Snapshot describes the open tabs for persistence.
func (m *Manager) Snapshot() workspace.Info {
	info := workspace.Info{OpenTabs: make([]string, 0, len(m.files))}
	for _, f := range m.files {
		info.OpenTabs = append(info.OpenTabs, f.Path)
	}
	if file := m.activeFile(); file != nil {
		active := file.Path
		info.ActiveTab = &active
	}
	return info
}

// Restore opens the tabs recorded in info and activates the recorded tab.
func (m *Manager) Restore(info workspace.Info) {
	for _, path := range info.OpenTabs {
		m.Open(path)
	}
	if idx := m.IndexOf(info.Active()); idx >= 0 {
		m.active = idx
	}
}

func (m *Manager) activeFile() *OpenFile {
	if m.active < 0 || m.active >= len(m.files) {
		return nil
	}
	return m.files[m.active]
}
