package ui

import (
	"log"

	"github.com/kyaoi/theoremnote/internal/markdown"
	"github.com/kyaoi/theoremnote/internal/service"
	"github.com/kyaoi/theoremnote/internal/tabs"
	"github.com/kyaoi/theoremnote/internal/tree"
)

// State contains the data required to bootstrap the Bubble Tea model.
type State struct {
	Service  *service.Service
	Tabs     *tabs.Manager
	Renderer *markdown.Renderer
	Logger   *log.Logger

	ImageDir           string
	Message            string
	TreeVisible        bool
	TreePreferredWidth int
	TreeRoot           *tree.Node
	TreeSelectionPath  string
	RootDir            string
	FocusTree          bool
}
