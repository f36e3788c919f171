package ui

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/kyaoi/theoremnote/internal/markdown"
	"github.com/kyaoi/theoremnote/internal/service"
	"github.com/kyaoi/theoremnote/internal/tabs"
	"github.com/kyaoi/theoremnote/internal/tree"
)

const (
	tabBarHeight      = 1
	minContentWidth   = 20
	minTreePanelWidth = 18
	defaultTreeWidth  = 28
	minEditorWidth    = 20
)

var (
	treeBlurBorderColor  = lipgloss.Color("#3b4261")
	treeFocusBorderColor = lipgloss.Color("#7aa2f7")
	treeLineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9b1d6"))
	treeFailedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	treeSelectedActive   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1b26")).
				Background(lipgloss.Color("#7aa2f7")).
				Bold(true)
	treeSelectedInactive = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0caf5")).
				Background(lipgloss.Color("#283457"))
	helpBoxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Background(lipgloss.Color("#1f2335"))
	searchBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#a9b1d6")).
			Background(lipgloss.Color("#1f2335"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
)

// Model implements the Bubble Tea program for the note editor.
type Model struct {
	svc      *service.Service
	tabs     *tabs.Manager
	html     *markdown.Renderer
	logger   *log.Logger
	imageDir string

	contentVP          viewport.Model
	treeVP             viewport.Model
	editor             textarea.Model
	renderer           *glamour.TermRenderer
	message            string
	editing            bool
	treeVisible        bool
	treePreferredWidth int
	treeContentWidth   int
	treeFocus          bool
	showHelp           bool
	pendingKey         string
	ready              bool
	width              int
	height             int
	err                error
	status             string

	treeRoot        *tree.Node
	flatTree        []treeLine
	treeSelection   int
	rootDir         string
	renderedContent string

	searchInput  textinput.Model
	searchActive bool
	search       matchSet

	folderInput  textinput.Model
	folderActive bool

	watcher     *fsnotify.Watcher
	watchedDirs map[string]bool
	watchChan   chan tea.Msg
}

type treeLine struct {
	entry *tree.Node
	label string
}

// NewModel constructs the editor model with the provided initial state.
func NewModel(state State) *Model {
	contentVP := viewport.New(0, 0)
	contentVP.Style = lipgloss.NewStyle().Padding(0, 1)
	contentVP.SetHorizontalStep(2)

	treeVP := viewport.New(0, 0)
	treeVP.Style = treePanelStyle(treeBlurBorderColor)
	treeVP.MouseWheelEnabled = false

	logger := state.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	manager := state.Tabs
	if manager == nil {
		manager = tabs.NewManager(state.Service, logger)
	}
	renderer := state.Renderer
	if renderer == nil {
		renderer = markdown.New(markdown.WithImageDir(state.ImageDir))
	}

	m := &Model{
		svc:                state.Service,
		tabs:               manager,
		html:               renderer,
		logger:             logger,
		imageDir:           state.ImageDir,
		contentVP:          contentVP,
		treeVP:             treeVP,
		editor:             newEditor(),
		message:            state.Message,
		treeVisible:        state.TreeVisible && state.TreeRoot != nil,
		treePreferredWidth: state.TreePreferredWidth,
		treeRoot:           state.TreeRoot,
		rootDir:            state.RootDir,
		search:             newMatchSet(),
		watchedDirs:        map[string]bool{},
	}

	searchInput := textinput.New()
	searchInput.Prompt = "/"
	searchInput.CharLimit = 256
	searchInput.Placeholder = "検索語"
	searchInput.Blur()
	m.searchInput = searchInput

	folderInput := textinput.New()
	folderInput.Prompt = "フォルダ: "
	folderInput.CharLimit = 1024
	folderInput.Placeholder = "開くフォルダのパス"
	folderInput.Blur()
	m.folderInput = folderInput

	if m.treeRoot != nil {
		m.refreshTreeViewWithSelection(state.TreeSelectionPath)
	}
	m.updateTreePanelStyle()
	m.syncEditor()

	if state.FocusTree {
		m.focusTree()
	}

	return m
}

func newEditor() textarea.Model {
	editor := textarea.New()
	editor.Placeholder = "Markdownを入力..."
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = true
	editor.Blur()
	return editor
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.watchOpenFiles()
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.contentVP.View()
	if m.editing {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.editor.View(), content)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.tabBarView(), content)
	if m.treeVisible {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.treeVP.View(), body)
	}

	if m.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, errorStyle.Render(m.err.Error()), body)
	} else if m.status != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, statusStyle.Render(m.status), body)
	}

	if m.showHelp {
		helpOverlay := helpBoxStyle.Render(helpText)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpOverlay)
		}
		return helpOverlay
	}

	switch {
	case m.folderActive:
		body = lipgloss.JoinVertical(lipgloss.Left, body, searchBarStyle.Render(m.folderInput.View()))
	case m.searchActive:
		body = lipgloss.JoinVertical(lipgloss.Left, body, searchBarStyle.Render(m.searchInput.View()))
	case m.search.active():
		body = lipgloss.JoinVertical(lipgloss.Left, body, searchBarStyle.Render(m.search.status()))
	}

	return body
}

const helpText = `ヘルプ (?:閉じる / Esc)
Ctrl+h / Ctrl+l : ツリー↔本文フォーカス切替
j / k            : 選択/スクロール (フォーカス中のペイン)
Ctrl+d / Ctrl+u : 半ページ移動
gg / G           : 先頭 / 末尾へ移動
Enter / l        : ツリーでファイルを開く
e                : 編集モード (Esc で終了)
Ctrl+s           : 保存
Ctrl+w           : タブを閉じる
[ / ]            : 前 / 次のタブ
Alt+1..9         : タブへ移動
o                : フォルダを開く
y                : HTML をクリップボードへコピー
/                : 検索モード開始
n / N            : 次 / 前の一致へ移動
t                : ツリー表示のトグル
q / Ctrl+c       : 終了`

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileEventMsg:
		return m, m.handleFileEvent(msg)
	case fileWatchErrMsg:
		m.err = msg.err
		return m, m.waitForFileEvent()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.folderActive {
			return m, m.handleFolderKey(msg)
		}
		if m.searchActive {
			return m, m.handleSearchKey(msg)
		}
		if m.editing {
			return m, m.handleEditorKey(msg)
		}

		key := msg.String()
		if key != "g" {
			m.pendingKey = ""
		}

		if m.showHelp {
			m.pendingKey = ""
			switch key {
			case "q", "?", "esc":
				m.showHelp = false
			}
			return m, nil
		}

		m.status = ""
		switch key {
		case "q", "ctrl+c":
			return m, m.quit()
		case "?":
			m.showHelp = true
			m.pendingKey = ""
			return m, nil
		case "ctrl+h":
			if m.treeVisible {
				m.focusTree()
			}
			return m, nil
		case "ctrl+l":
			m.blurTree()
			return m, nil
		case "t":
			if m.treeRoot != nil {
				m.treeVisible = !m.treeVisible
				if !m.treeVisible {
					m.blurTree()
				}
				m.resize(m.width, m.height)
			}
			return m, nil
		case "/":
			return m, m.enterSearchMode()
		case "o":
			return m, m.enterFolderMode()
		case "e", "i":
			return m, m.enterEditMode()
		case "ctrl+s":
			m.saveActive()
			return m, nil
		case "ctrl+w":
			m.closeTab(m.tabs.ActiveIndex())
			return m, nil
		case "[":
			m.switchTab(m.tabs.ActiveIndex() - 1)
			return m, nil
		case "]":
			m.switchTab(m.tabs.ActiveIndex() + 1)
			return m, nil
		case "y":
			m.copyHTML()
			return m, nil
		case "n":
			if m.stepSearch(1) {
				return m, nil
			}
		case "N":
			if m.stepSearch(-1) {
				return m, nil
			}
		}
		if idx, ok := altDigit(key); ok {
			m.switchTab(idx)
			return m, nil
		}

		if m.treeFocus && m.treeVisible {
			_, cmd := m.handleTreeKey(key)
			return m, cmd
		}

		if m.handleContentKey(key) {
			return m, nil
		}

		var cmd tea.Cmd
		m.contentVP, cmd = m.contentVP.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.editing {
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	m.contentVP, cmd = m.contentVP.Update(msg)
	return m, cmd
}

func (m *Model) quit() tea.Cmd {
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return tea.Quit
}

func altDigit(key string) (int, bool) {
	if len(key) != 5 || !strings.HasPrefix(key, "alt+") {
		return 0, false
	}
	d := key[4]
	if d < '1' || d > '9' {
		return 0, false
	}
	return int(d - '1'), true
}

func (m *Model) handleContentKey(key string) bool {
	switch key {
	case "j":
		m.contentVP.ScrollDown(1)
	case "k":
		m.contentVP.ScrollUp(1)
	case "ctrl+d":
		m.contentVP.HalfPageDown()
	case "ctrl+u":
		m.contentVP.HalfPageUp()
	case "h":
		m.contentVP.ScrollLeft(max(2, m.contentVP.Width/6))
	case "l":
		m.contentVP.ScrollRight(max(2, m.contentVP.Width/6))
	case "g":
		if m.pendingKey == "g" {
			m.contentVP.GotoTop()
			m.pendingKey = ""
		} else {
			m.pendingKey = "g"
		}
		return true
	case "G":
		m.pendingKey = ""
		m.contentVP.GotoBottom()
	default:
		return false
	}
	m.pendingKey = ""
	return true
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= tabBarHeight {
		return
	}

	m.width = width
	m.height = height
	m.ready = true

	treeWidth := m.treeWidth(width)
	contentWidth := width - treeWidth
	if m.treeVisible && treeWidth > 0 {
		contentWidth--
	}
	if contentWidth < minContentWidth {
		contentWidth = minContentWidth
	}

	contentHeight := max(height-tabBarHeight, 1)
	previewWidth := contentWidth
	if m.editing {
		editorWidth := max(contentWidth/2, minEditorWidth)
		m.editor.SetWidth(editorWidth)
		m.editor.SetHeight(contentHeight)
		previewWidth = max(contentWidth-editorWidth, minContentWidth)
	}
	m.contentVP.Width = previewWidth
	m.contentVP.Height = contentHeight

	wrapWidth := max(previewWidth-m.contentVP.Style.GetHorizontalFrameSize(), 0)
	renderer, err := newRenderer(wrapWidth)
	if err != nil {
		m.err = err
		return
	}
	m.renderer = renderer
	m.renderPreview()

	if m.treeVisible && treeWidth > 0 {
		m.treeVP.Width = treeWidth
		m.treeVP.Height = contentHeight
		m.ensureSelectionVisible()
	} else {
		m.treeVP.Width = 0
		m.treeVP.Height = contentHeight
	}
}

func (m *Model) treeWidth(totalWidth int) int {
	if !m.treeVisible {
		return 0
	}
	preferred := m.treePreferredWidth
	if preferred <= 0 {
		preferred = defaultTreeWidth
	}

	frame := m.treeVP.Style.GetHorizontalFrameSize()
	minPanel := max(minTreePanelWidth-frame, 0)
	maxPanel := max(totalWidth/2-frame, minPanel)
	panelContentWidth := clamp(preferred, minPanel, maxPanel)

	width := panelContentWidth + frame
	if totalWidth-width < minContentWidth {
		width = max(totalWidth-minContentWidth, 0)
	}
	if width > totalWidth {
		width = totalWidth
	}
	return width
}

// previewSource is the Markdown shown in the preview pane.
func (m *Model) previewSource() string {
	if file, ok := m.tabs.Active(); ok {
		return file.Content
	}
	return m.message
}

func (m *Model) renderPreview() {
	if m.renderer == nil {
		return
	}
	_, body := markdown.Prepare(m.previewSource(), m.imageDir)
	rendered, err := m.renderer.Render(body)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.contentVP.SetContent(rendered)
	m.renderedContent = rendered
	m.onContentChanged()
}

func (m *Model) copyHTML() {
	file, ok := m.tabs.Active()
	if !ok {
		return
	}
	html, err := m.html.Render(file.Content)
	if err != nil {
		m.err = err
		return
	}
	if err := clipboard.WriteAll(html); err != nil {
		m.logger.Printf("ui: clipboard: %v", err)
		m.err = err
		return
	}
	m.status = "HTML をコピーしました: " + file.DisplayName
}

func (m *Model) enterFolderMode() tea.Cmd {
	m.folderActive = true
	m.pendingKey = ""
	m.folderInput.SetValue(m.rootDir)
	m.folderInput.CursorEnd()
	return m.folderInput.Focus()
}

func (m *Model) handleFolderKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		dir := strings.TrimSpace(m.folderInput.Value())
		m.folderActive = false
		m.folderInput.Blur()
		if dir == "" {
			return nil
		}
		return m.openFolder(dir)
	case tea.KeyEsc, tea.KeyCtrlC:
		m.folderActive = false
		m.folderInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.folderInput, cmd = m.folderInput.Update(msg)
	return cmd
}

func (m *Model) openFolder(dir string) tea.Cmd {
	if m.svc == nil {
		return nil
	}
	root, err := m.svc.ScanRoot(context.Background(), dir)
	if err != nil {
		m.err = err
		return nil
	}
	if root == nil {
		return nil
	}
	if root.Status != tree.StatusOK {
		m.err = service.ErrFileTree
		m.logger.Printf("ui: open folder %s: %s: %v", dir, root.Status, root.Err)
		return nil
	}

	m.treeRoot = root
	m.rootDir = root.Path
	m.treeSelection = 0
	m.treeVisible = true
	m.tabs = tabs.NewManager(m.svc, m.logger)
	if info := m.svc.LoadWorkspace(m.rootDir); info != nil {
		m.tabs.Restore(*info)
	}
	m.message = ""
	m.refreshTreeViewWithSelection("")
	m.focusTree()
	m.syncEditor()
	m.resize(m.width, m.height)
	return m.watchOpenFiles()
}

func newRenderer(width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(styles.TokyoNightStyle)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	} else {
		opts = append(opts, glamour.WithWordWrap(0))
	}
	return glamour.NewTermRenderer(opts...)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
