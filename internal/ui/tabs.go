package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#a9b1d6")).
			Background(lipgloss.Color("#1f2335"))
	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#7aa2f7")).
			Bold(true)
	tabGapStyle = lipgloss.NewStyle().Background(lipgloss.Color("#16161e"))
)

const modifiedMark = " ●"

func (m *Model) tabBarView() string {
	files := m.tabs.Files()
	if len(files) == 0 {
		return tabGapStyle.Render(" ")
	}
	active := m.tabs.ActiveIndex()
	parts := make([]string, 0, len(files))
	for i, f := range files {
		label := f.DisplayName
		if f.Modified {
			label += modifiedMark
		}
		if i == active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	bar := strings.Join(parts, tabGapStyle.Render(" "))
	if width := m.contentWidth(); width > 0 && lipgloss.Width(bar) > width {
		bar = ansi.Truncate(bar, width, "…")
	}
	return bar
}

func (m *Model) contentWidth() int {
	width := m.contentVP.Width
	if m.editing {
		width += m.editor.Width()
	}
	return width
}

// openPath opens path in a tab and shows it.
func (m *Model) openPath(path string) tea.Cmd {
	m.tabs.Open(path)
	m.afterTabChange()
	m.contentVP.GotoTop()
	return m.watchOpenFiles()
}

func (m *Model) closeTab(index int) {
	if index < 0 {
		return
	}
	m.tabs.Close(index)
	if m.tabs.Len() == 0 {
		m.leaveEditMode()
	}
	m.afterTabChange()
}

func (m *Model) switchTab(index int) {
	if index < 0 || index >= m.tabs.Len() || index == m.tabs.ActiveIndex() {
		return
	}
	m.tabs.SwitchTo(index)
	m.afterTabChange()
	m.contentVP.GotoTop()
}

func (m *Model) afterTabChange() {
	m.syncEditor()
	m.renderPreview()
	m.persistWorkspace()
}

// syncEditor loads the active tab into the editor.
func (m *Model) syncEditor() {
	file, ok := m.tabs.Active()
	if !ok {
		m.editor.SetValue("")
		return
	}
	if m.editor.Value() != file.Content {
		m.editor.SetValue(file.Content)
	}
}

func (m *Model) persistWorkspace() {
	if m.svc == nil || m.rootDir == "" {
		return
	}
	if err := m.svc.SaveWorkspace(m.rootDir, m.tabs.Snapshot()); err != nil {
		m.err = err
	}
}

func (m *Model) enterEditMode() tea.Cmd {
	if _, ok := m.tabs.Active(); !ok {
		return nil
	}
	m.editing = true
	m.pendingKey = ""
	m.blurTree()
	m.syncEditor()
	m.resize(m.width, m.height)
	return m.editor.Focus()
}

func (m *Model) leaveEditMode() {
	if !m.editing {
		return
	}
	m.editing = false
	m.editor.Blur()
	m.resize(m.width, m.height)
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.leaveEditMode()
		return nil
	case "ctrl+c":
		return m.quit()
	case "ctrl+s":
		m.saveActive()
		return nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if file, ok := m.tabs.Active(); ok && file.Content != m.editor.Value() {
		m.tabs.UpdateContent(m.editor.Value())
		m.renderPreview()
	}
	return cmd
}

func (m *Model) saveActive() {
	file, ok := m.tabs.Active()
	if !ok || m.svc == nil {
		return
	}
	if err := m.svc.WriteFile(file.Path, file.Content); err != nil {
		m.err = err
		return
	}
	m.tabs.MarkSaved(file.Path)
	m.err = nil
	m.status = "保存しました: " + file.DisplayName
}
