package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type fileEventMsg struct {
	path string
	op   fsnotify.Op
}

type fileWatchErrMsg struct {
	err error
}

// watchOpenFiles watches the directories of every open tab. Directories are
// watched rather than files so editors that replace files on save are seen.
func (m *Model) watchOpenFiles() tea.Cmd {
	files := m.tabs.Files()
	if len(files) == 0 {
		return nil
	}
	firstWatch := m.watcher == nil
	if err := m.ensureWatcher(); err != nil {
		m.err = err
		return nil
	}

	wanted := map[string]bool{}
	for _, f := range files {
		wanted[filepath.Dir(filepath.Clean(f.Path))] = true
	}
	for dir := range m.watchedDirs {
		if !wanted[dir] {
			_ = m.watcher.Remove(dir)
			delete(m.watchedDirs, dir)
		}
	}
	for dir := range wanted {
		if m.watchedDirs[dir] {
			continue
		}
		if err := m.watcher.Add(dir); err != nil {
			m.logger.Printf("ui: watch %s: %v", dir, err)
			continue
		}
		m.watchedDirs[dir] = true
	}

	if firstWatch {
		return m.waitForFileEvent()
	}
	return nil
}

func (m *Model) ensureWatcher() error {
	if m.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher
	m.watchChan = make(chan tea.Msg, 10)

	go m.watchLoop()
	return nil
}

func (m *Model) watchLoop() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			m.watchChan <- fileEventMsg{path: event.Name, op: event.Op}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.watchChan <- fileWatchErrMsg{err: err}
		}
	}
}

func (m *Model) waitForFileEvent() tea.Cmd {
	if m.watchChan == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-m.watchChan
		if !ok {
			return nil
		}
		return msg
	}
}

// handleFileEvent reloads an unmodified tab whose file changed on disk.
func (m *Model) handleFileEvent(msg fileEventMsg) tea.Cmd {
	path := filepath.Clean(msg.path)
	if m.tabs.IndexOf(path) < 0 || m.svc == nil {
		return m.waitForFileEvent()
	}
	content, err := m.svc.ReadFile(path)
	if err != nil {
		return m.waitForFileEvent()
	}
	if !m.tabs.Reload(path, content) {
		return m.waitForFileEvent()
	}
	if file, ok := m.tabs.Active(); ok && file.Path == path {
		offset := m.contentVP.YOffset
		m.syncEditor()
		m.renderPreview()
		if m.err == nil {
			m.contentVP.SetYOffset(offset)
		}
	}
	return m.waitForFileEvent()
}
