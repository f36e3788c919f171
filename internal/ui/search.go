package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// matchSet holds the lines of the rendered preview that contain query.
// index is -1 while there is no current match.
type matchSet struct {
	query string
	lines []int
	index int
}

func newMatchSet() matchSet {
	return matchSet{index: -1}
}

func (s *matchSet) active() bool {
	return s.query != ""
}

// find starts a new search over content. It reports whether anything matched.
func (s *matchSet) find(content, query string) bool {
	s.query = strings.TrimSpace(query)
	s.lines = matchLines(content, s.query)
	s.index = -1
	if len(s.lines) == 0 {
		return false
	}
	s.index = 0
	return true
}

// refresh repeats the search over new content, staying on the match nearest
// to the line that was current before.
func (s *matchSet) refresh(content string) bool {
	prev, hadPrev := s.current()
	s.lines = matchLines(content, s.query)
	if len(s.lines) == 0 {
		s.index = -1
		return false
	}
	if hadPrev {
		s.index = nearest(s.lines, prev)
	} else {
		s.index = 0
	}
	return true
}

// step moves delta matches forward, wrapping at both ends.
func (s *matchSet) step(delta int) bool {
	n := len(s.lines)
	if n == 0 {
		return false
	}
	s.index = ((s.index+delta)%n + n) % n
	return true
}

func (s *matchSet) current() (int, bool) {
	if s.index < 0 || s.index >= len(s.lines) {
		return 0, false
	}
	return s.lines[s.index], true
}

func (s *matchSet) status() string {
	if !s.active() {
		return ""
	}
	if _, ok := s.current(); !ok {
		return fmt.Sprintf("/%s (0/0)", s.query)
	}
	return fmt.Sprintf("/%s (%d/%d)", s.query, s.index+1, len(s.lines))
}

func (m *Model) enterSearchMode() tea.Cmd {
	m.searchActive = true
	m.pendingKey = ""
	m.searchInput.SetValue(m.search.query)
	m.searchInput.CursorEnd()
	return m.searchInput.Focus()
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		query := m.searchInput.Value()
		m.searchActive = false
		m.searchInput.Blur()
		if strings.TrimSpace(query) == "" {
			m.search = newMatchSet()
			m.err = nil
			return nil
		}
		if !m.search.find(m.renderedContent, query) {
			m.err = noMatchError(m.search.query)
			return nil
		}
		m.err = nil
		m.scrollToMatch()
		return nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searchActive = false
		m.searchInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

func (m *Model) stepSearch(delta int) bool {
	if !m.search.step(delta) {
		return false
	}
	m.err = nil
	m.scrollToMatch()
	return true
}

func (m *Model) scrollToMatch() {
	line, ok := m.search.current()
	if !ok {
		return
	}
	totalLines := strings.Count(m.renderedContent, "\n") + 1
	m.contentVP.SetYOffset(clamp(line, 0, max(totalLines-m.contentVP.Height, 0)))
}

// onContentChanged re-runs the active search after the preview is rendered.
func (m *Model) onContentChanged() {
	if !m.search.active() {
		return
	}
	if !m.search.refresh(m.renderedContent) {
		m.err = noMatchError(m.search.query)
		return
	}
	m.scrollToMatch()
}

func noMatchError(query string) error {
	return fmt.Errorf("%q に一致しません。", query)
}

// matchLines returns the line of every case-insensitive occurrence of query
// in content, ignoring ANSI styling.
func matchLines(content, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || content == "" {
		return nil
	}
	text := strings.ToLower(ansi.Strip(content))

	var lines []int
	line, offset := 0, 0
	for {
		pos := strings.Index(text[offset:], query)
		if pos < 0 {
			return lines
		}
		line += strings.Count(text[offset:offset+pos], "\n")
		lines = append(lines, line)
		offset += pos + len(query)
	}
}

func nearest(lines []int, line int) int {
	best := 0
	for i, l := range lines {
		if abs(l-line) < abs(lines[best]-line) {
			best = i
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
