package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaoi/theoremnote/internal/config"
	"github.com/kyaoi/theoremnote/internal/markdown"
	"github.com/kyaoi/theoremnote/internal/service"
	"github.com/kyaoi/theoremnote/internal/tree"
	"github.com/kyaoi/theoremnote/internal/ui"
	"github.com/kyaoi/theoremnote/internal/workspace"
)

const logFileName = "theoremnote.log"

// Options are the command line settings.
type Options struct {
	Target     string
	ConfigPath string
	Tag        string
	Export     string
	ImageDir   string
	Debug      bool
}

// Run wires the stores and services together and executes the requested
// mode: HTML export or the interactive editor.
func Run(ctx context.Context, opts Options) error {
	logger := log.New(io.Discard, "", 0)
	if opts.Debug {
		f, err := tea.LogToFile(logFileName, "theoremnote")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	store := config.New(configPath, logger)

	imageDir := opts.ImageDir
	if imageDir == "" {
		imageDir = store.ImageDirectory()
	}
	renderer := markdown.New(markdown.WithImageDir(imageDir))

	if opts.Export != "" {
		return Export(os.Stdout, renderer, opts.Export)
	}

	svc := service.New(store,
		service.WithLogger(logger),
		service.WithPicker(NewPromptPicker(os.Stdin, os.Stderr)),
		service.WithScanOptions(tree.WithSkip(tree.SkipNames(workspace.DirName))),
	)

	state, err := LoadInitialState(ctx, svc, opts.Target, logger)
	if err != nil {
		return err
	}
	state.Renderer = renderer
	state.ImageDir = imageDir

	if opts.Tag != "" {
		if state, err = FilterByTag(state, opts.Tag); err != nil {
			return err
		}
	}
	return runProgram(state)
}

func runProgram(state ui.State) error {
	program := tea.NewProgram(ui.NewModel(state), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Export writes a standalone HTML page for the Markdown file at path.
func Export(w io.Writer, renderer *markdown.Renderer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	title := filepath.Base(path)
	return renderer.RenderDocument(w, title, string(data))
}
