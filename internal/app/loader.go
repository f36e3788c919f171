package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kyaoi/theoremnote/internal/service"
	"github.com/kyaoi/theoremnote/internal/tabs"
	"github.com/kyaoi/theoremnote/internal/tree"
	"github.com/kyaoi/theoremnote/internal/ui"
)

var errNoFolder = errors.New("フォルダが選択されませんでした")

// LoadInitialState resolves the folder to open and restores its workspace.
// An empty target falls back to the last opened directory and then to the
// picker. A file target opens its directory with that file in a tab.
func LoadInitialState(ctx context.Context, svc *service.Service, target string, logger *log.Logger) (ui.State, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var openFile string
	remembered := false
	if target == "" {
		target = svc.GetLastOpenedDirectory()
		remembered = target != ""
	} else {
		abs, err := filepath.Abs(target)
		if err != nil {
			return ui.State{}, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return ui.State{}, err
		}
		target = abs
		if !info.IsDir() {
			openFile = abs
			target = filepath.Dir(abs)
		}
	}

	root, err := svc.ScanRoot(ctx, target)
	if err == nil && remembered && root.Status != tree.StatusOK {
		logger.Printf("app: last opened directory %s: %s", root.Path, root.Status)
		root, err = svc.ScanRoot(ctx, "")
	}
	if err != nil {
		return ui.State{}, err
	}
	if root == nil {
		return ui.State{}, errNoFolder
	}
	if root.Status != tree.StatusOK {
		return ui.State{}, fmt.Errorf("%s: %w", root.Path, root.Err)
	}

	manager := tabs.NewManager(svc, logger)
	if info := svc.LoadWorkspace(root.Path); info != nil {
		manager.Restore(*info)
	}
	if openFile != "" {
		manager.Open(openFile)
	}

	message := "ファイルを選択してください。"
	if !root.HasMarkdown() {
		message = fmt.Sprintf("%s にMarkdownファイルが見つかりません。", root.Name)
	}

	selection := ""
	if file, ok := manager.Active(); ok {
		selection = file.Path
	}

	return ui.State{
		Service:           svc,
		Tabs:              manager,
		Logger:            logger,
		Message:           message,
		TreeVisible:       true,
		TreeRoot:          root,
		TreeSelectionPath: selection,
		RootDir:           root.Path,
		FocusTree:         selection == "",
	}, nil
}

// PromptPicker asks for a folder path on a line-oriented terminal before the
// full-screen program starts.
type PromptPicker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptPicker reads answers from in and writes prompts to out.
func NewPromptPicker(in io.Reader, out io.Writer) *PromptPicker {
	return &PromptPicker{in: bufio.NewReader(in), out: out}
}

// PickDirectory implements service.DirectoryPicker. An empty answer cancels.
func (p *PromptPicker) PickDirectory(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	fmt.Fprint(p.out, "開くフォルダのパスを入力してください: ")
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	dir := strings.TrimSpace(line)
	if dir == "" {
		return "", false, nil
	}
	if strings.HasPrefix(dir, "~"+string(filepath.Separator)) || dir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir, true, nil
}
