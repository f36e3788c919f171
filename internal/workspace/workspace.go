package workspace

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
)

// DirName is the sidecar directory created beneath a workspace root.
const DirName = ".theoremnote"

const fileName = "workspace.json"

// ErrSave is returned when the workspace sidecar could not be written.
var ErrSave = errors.New("ワークスペース情報の保存中にエラーが発生しました")

// Info records which files were open beneath a root directory.
type Info struct {
	OpenTabs  []string `json:"openTabs"`
	ActiveTab *string  `json:"activeTab"`
}

// Dir returns the sidecar directory for root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// FilePath returns the sidecar file for root.
func FilePath(root string) string {
	return filepath.Join(root, DirName, fileName)
}

// Load reads the workspace stored beside root. It returns nil when the
// sidecar is missing, cannot be parsed or holds a JSON null.
func Load(root string) *Info {
	data, err := os.ReadFile(FilePath(root))
	if err != nil {
		return nil
	}
	var info *Info
	if err := json.Unmarshal(data, &info); err != nil || info == nil {
		return nil
	}
	if info.OpenTabs == nil {
		info.OpenTabs = []string{}
	}
	return info
}

// Save writes info beside root, creating the sidecar directory if needed.
func Save(root string, info Info, logger *log.Logger) error {
	if info.OpenTabs == nil {
		info.OpenTabs = []string{}
	}
	if err := write(root, info); err != nil {
		if logger != nil {
			logger.Printf("workspace: save %s: %v", root, err)
		}
		return ErrSave
	}
	return nil
}

func write(root string, info Info) error {
	if err := os.MkdirAll(Dir(root), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(FilePath(root), data, 0o644)
}

// Exists reports whether a sidecar file is present for root.
func Exists(root string) bool {
	info, err := os.Stat(FilePath(root))
	return err == nil && !info.IsDir()
}

// Active returns the active tab path, or "" when none is recorded.
func (i Info) Active() string {
	if i.ActiveTab == nil {
		return ""
	}
	return *i.ActiveTab
}
