package ui

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyaoi/theoremnote/internal/tree"
)

func (m *Model) handleTreeKey(key string) (bool, tea.Cmd) {
	if m.treeRoot == nil {
		return false, nil
	}
	switch key {
	case "j", "down":
		m.moveTreeSelection(1)
		return true, nil
	case "k", "up":
		m.moveTreeSelection(-1)
		return true, nil
	case "ctrl+d":
		m.moveTreeSelection(max(1, m.treeVP.Height/2))
		return true, nil
	case "ctrl+u":
		m.moveTreeSelection(-max(1, m.treeVP.Height/2))
		return true, nil
	case "ctrl+j":
		m.contentVP.ScrollDown(1)
		return true, nil
	case "ctrl+k":
		m.contentVP.ScrollUp(1)
		return true, nil
	case "ctrl+f":
		m.contentVP.ScrollDown(max(1, m.contentVP.Height/2))
		return true, nil
	case "ctrl+b":
		m.contentVP.ScrollUp(max(1, m.contentVP.Height/2))
		return true, nil
	case "l", "right", "enter":
		return true, m.openOrDescend()
	case "h", "left":
		m.closeOrAscend()
		return true, nil
	case "g":
		if m.pendingKey == "g" {
			if len(m.flatTree) > 0 {
				m.treeSelection = 0
				m.pendingKey = ""
				m.updateTreeContent(m.treeContentWidth)
				m.ensureSelectionVisible()
			}
		} else {
			m.pendingKey = "g"
		}
		return true, nil
	case "G":
		m.pendingKey = ""
		if len(m.flatTree) > 0 {
			m.treeSelection = len(m.flatTree) - 1
			m.updateTreeContent(m.treeContentWidth)
			m.ensureSelectionVisible()
		}
		return true, nil
	}
	m.pendingKey = ""
	return false, nil
}

func (m *Model) moveTreeSelection(delta int) {
	if len(m.flatTree) == 0 {
		return
	}
	m.treeSelection = clamp(m.treeSelection+delta, 0, len(m.flatTree)-1)
	m.updateTreeContent(m.treeContentWidth)
}

func (m *Model) openOrDescend() tea.Cmd {
	entry := m.currentTreeEntry()
	if entry == nil {
		return nil
	}
	if entry.IsDir {
		if entry.Status != tree.StatusOK {
			m.err = entry.Err
			return nil
		}
		if !entry.Open {
			entry.Open = true
			m.refreshTreeViewWithSelection(entry.Path)
			return nil
		}
		if len(entry.Children) > 0 {
			m.moveTreeSelection(1)
		}
		return nil
	}
	return m.openPath(entry.Path)
}

func (m *Model) closeOrAscend() {
	entry := m.currentTreeEntry()
	if entry == nil {
		return
	}
	if entry.IsDir && entry.Open && entry != m.treeRoot {
		entry.Open = false
		maxWidth := m.rebuildFlatTree()
		if idx := m.indexForPath(entry.Path); idx >= 0 {
			m.treeSelection = idx
		} else {
			m.treeSelection = clamp(m.treeSelection, 0, len(m.flatTree)-1)
		}
		m.treeContentWidth = maxWidth
		m.updateTreeContent(maxWidth)
		return
	}
	if entry.Parent != nil {
		m.refreshTreeViewWithSelection(entry.Parent.Path)
	}
}

func (m *Model) currentTreeEntry() *tree.Node {
	if len(m.flatTree) == 0 || m.treeSelection < 0 || m.treeSelection >= len(m.flatTree) {
		return nil
	}
	return m.flatTree[m.treeSelection].entry
}

func (m *Model) refreshTreeViewWithSelection(path string) {
	if m.treeRoot == nil {
		return
	}
	m.expandPath(path)
	maxWidth := m.rebuildFlatTree()
	if len(m.flatTree) > 0 {
		if idx := m.indexForPath(path); idx >= 0 {
			m.treeSelection = idx
		} else {
			m.treeSelection = clamp(m.treeSelection, 0, len(m.flatTree)-1)
		}
	} else {
		m.treeSelection = 0
	}
	m.treeContentWidth = maxWidth
	m.updateTreeContent(maxWidth)
}

// expandPath opens every directory between the root and path.
func (m *Model) expandPath(path string) {
	if m.treeRoot == nil || path == "" {
		return
	}
	m.treeRoot.Open = true
	rel, err := filepath.Rel(m.treeRoot.Path, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	current := m.treeRoot
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		child := current.ChildByName(part)
		if child == nil {
			return
		}
		if child.IsDir {
			child.Open = true
		}
		current = child
	}
}

func (m *Model) rebuildFlatTree() int {
	if m.treeRoot == nil {
		m.flatTree = nil
		return 0
	}
	var lines []treeLine
	maxWidth := 0
	var walk func(*tree.Node, int)
	walk = func(node *tree.Node, depth int) {
		label := formatTreeLabel(node, depth)
		if w := lipgloss.Width(label); w > maxWidth {
			maxWidth = w
		}
		lines = append(lines, treeLine{entry: node, label: label})
		if node.IsDir && node.Open {
			for _, child := range node.Children {
				walk(child, depth+1)
			}
		}
	}
	walk(m.treeRoot, 0)
	m.flatTree = lines
	return maxWidth
}

func (m *Model) updateTreeContent(width int) {
	if m.treeRoot == nil {
		return
	}
	if width <= 0 {
		width = minTreePanelWidth
	}
	var builder strings.Builder
	for i, line := range m.flatTree {
		text := line.label
		switch {
		case i == m.treeSelection && m.treeFocus:
			builder.WriteString(treeSelectedActive.Render(text))
		case i == m.treeSelection:
			builder.WriteString(treeSelectedInactive.Render(text))
		case line.entry.IsDir && line.entry.Status != tree.StatusOK:
			builder.WriteString(treeFailedStyle.Render(text))
		default:
			builder.WriteString(treeLineStyle.Render(text))
		}
		if i < len(m.flatTree)-1 {
			builder.WriteByte('\n')
		}
	}
	m.treePreferredWidth = max(width+4, minTreePanelWidth)
	m.treeVP.SetContent(builder.String())
	m.ensureSelectionVisible()
}

func (m *Model) indexForPath(path string) int {
	for i, line := range m.flatTree {
		if line.entry.Path == path {
			return i
		}
	}
	return -1
}

func (m *Model) ensureSelectionVisible() {
	if len(m.flatTree) == 0 || m.treeVP.Height == 0 {
		return
	}
	if m.treeSelection < m.treeVP.YOffset {
		m.treeVP.SetYOffset(m.treeSelection)
		return
	}
	bottom := m.treeVP.YOffset + m.treeVP.Height - 1
	if m.treeSelection > bottom {
		m.treeVP.SetYOffset(m.treeSelection - m.treeVP.Height + 1)
	}
}

func (m *Model) focusTree() {
	m.treeFocus = true
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
	m.ensureSelectionVisible()
}

func (m *Model) blurTree() {
	m.treeFocus = false
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
}

func (m *Model) updateTreePanelStyle() {
	color := treeBlurBorderColor
	if m.treeFocus {
		color = treeFocusBorderColor
	}
	m.treeVP.Style = treePanelStyle(color)
}

func treePanelStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(color)
}

func formatTreeLabel(entry *tree.Node, depth int) string {
	if depth == 0 {
		return entry.Name + "/"
	}
	indent := strings.Repeat("  ", depth-1)
	indicator := "  "
	if entry.IsDir {
		switch {
		case entry.Status != tree.StatusOK:
			indicator = "! "
		case entry.Open:
			indicator = "- "
		default:
			indicator = "+ "
		}
	}
	label := indent + indicator + entry.Name
	if entry.IsDir {
		label += "/"
	}
	return label
}
