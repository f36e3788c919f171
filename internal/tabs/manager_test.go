package tabs

import (
	"errors"
	"testing"

	"github.com/kyaoi/theoremnote/internal/workspace"
)

type fakeReader struct {
	files map[string]string
	reads map[string]int
}

func newFakeReader(files map[string]string) *fakeReader {
	return &fakeReader{files: files, reads: map[string]int{}}
}

func (r *fakeReader) ReadFile(path string) (string, error) {
	r.reads[path]++
	content, ok := r.files[path]
	if !ok {
		return "", errors.New("not found")
	}
	return content, nil
}

func openAll(m *Manager, paths ...string) {
	for _, p := range paths {
		m.Open(p)
	}
}

func TestOpenLoadsAndActivates(t *testing.T) {
	reader := newFakeReader(map[string]string{"/notes/a.md": "# A"})
	m := NewManager(reader, nil)

	m.Open("/notes/a.md")

	file, ok := m.Active()
	if !ok {
		t.Fatal("expected an active file")
	}
	if file.Content != "# A" || file.Modified || file.DisplayName != "a.md" {
		t.Errorf("unexpected file %+v", file)
	}
	if m.ActiveIndex() != 0 {
		t.Errorf("expected active index 0, got %d", m.ActiveIndex())
	}
}

func TestOpenSamePathTwice(t *testing.T) {
	reader := newFakeReader(map[string]string{"/a.md": "a", "/b.md": "b"})
	m := NewManager(reader, nil)

	openAll(m, "/a.md", "/b.md", "/a.md")

	if m.Len() != 2 {
		t.Fatalf("expected 2 tabs, got %d", m.Len())
	}
	if m.ActiveIndex() != 0 {
		t.Errorf("expected first tab active, got %d", m.ActiveIndex())
	}
	if reader.reads["/a.md"] != 1 {
		t.Errorf("expected a single read, got %d", reader.reads["/a.md"])
	}
}

func TestOpenReadFailureShowsPlaceholder(t *testing.T) {
	m := NewManager(newFakeReader(nil), nil)

	m.Open(`C:\notes\missing.md`)

	file, ok := m.Active()
	if !ok {
		t.Fatal("expected a tab even when the read fails")
	}
	if file.Content != ReadErrorContent {
		t.Errorf("expected placeholder content, got %q", file.Content)
	}
	if file.DisplayName != "missing.md" {
		t.Errorf("expected display name from backslash path, got %q", file.DisplayName)
	}
}

func TestCloseAdjustsActiveIndex(t *testing.T) {
	cases := []struct {
		name       string
		active     int
		close      int
		wantActive int
		wantLen    int
	}{
		{"before active", 2, 0, 1, 2},
		{"active tab", 1, 1, 0, 2},
		{"first active tab", 0, 0, 0, 2},
		{"after active", 0, 2, 0, 2},
		{"out of range", 1, 5, 1, 3},
		{"negative", 1, -1, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := newFakeReader(map[string]string{"/a": "", "/b": "", "/c": ""})
			m := NewManager(reader, nil)
			openAll(m, "/a", "/b", "/c")
			m.SwitchTo(tc.active)

			m.Close(tc.close)

			if m.Len() != tc.wantLen {
				t.Errorf("expected %d tabs, got %d", tc.wantLen, m.Len())
			}
			if m.ActiveIndex() != tc.wantActive {
				t.Errorf("expected active %d, got %d", tc.wantActive, m.ActiveIndex())
			}
		})
	}
}

func TestCloseLastTabClearsActive(t *testing.T) {
	m := NewManager(newFakeReader(map[string]string{"/a": ""}), nil)
	m.Open("/a")

	m.Close(0)

	if m.ActiveIndex() != -1 {
		t.Errorf("expected no active tab, got %d", m.ActiveIndex())
	}
	if _, ok := m.Active(); ok {
		t.Error("expected Active to report no file")
	}
}

func TestSwitchToIgnoresOutOfRange(t *testing.T) {
	m := NewManager(newFakeReader(map[string]string{"/a": "", "/b": ""}), nil)
	openAll(m, "/a", "/b")

	m.SwitchTo(0)
	m.SwitchTo(7)
	m.SwitchTo(-1)

	if m.ActiveIndex() != 0 {
		t.Errorf("expected active 0, got %d", m.ActiveIndex())
	}
}

func TestUpdateContentAndMarkSaved(t *testing.T) {
	m := NewManager(newFakeReader(map[string]string{"/a": "old", "/b": "b"}), nil)
	openAll(m, "/a", "/b")
	m.SwitchTo(0)

	m.UpdateContent("new")

	files := m.Files()
	if files[0].Content != "new" || !files[0].Modified {
		t.Errorf("expected modified active file, got %+v", files[0])
	}
	if files[1].Modified {
		t.Error("expected other tab untouched")
	}

	m.MarkSaved("/a")
	if file, _ := m.Active(); file.Modified {
		t.Error("expected modified flag cleared")
	}
}

func TestUpdateContentWithoutActiveTab(t *testing.T) {
	m := NewManager(newFakeReader(nil), nil)

	m.UpdateContent("ignored")

	if m.Len() != 0 {
		t.Errorf("expected no tabs, got %d", m.Len())
	}
}

func TestReloadSkipsModifiedTabs(t *testing.T) {
	m := NewManager(newFakeReader(map[string]string{"/a": "a", "/b": "b"}), nil)
	openAll(m, "/a", "/b")
	m.UpdateContent("edited")

	if m.Reload("/b", "external") {
		t.Error("expected modified tab not to reload")
	}
	if !m.Reload("/a", "external") {
		t.Error("expected clean tab to reload")
	}
	if m.Reload("/missing", "x") {
		t.Error("expected unknown path to be ignored")
	}
	if got := m.Files()[0].Content; got != "external" {
		t.Errorf("expected reloaded content, got %q", got)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	files := map[string]string{"/a": "a", "/b": "b", "/c": "c"}
	m := NewManager(newFakeReader(files), nil)
	openAll(m, "/a", "/b", "/c")
	m.SwitchTo(1)

	info := m.Snapshot()
	if len(info.OpenTabs) != 3 || info.Active() != "/b" {
		t.Fatalf("unexpected snapshot %+v", info)
	}

	restored := NewManager(newFakeReader(files), nil)
	restored.Restore(info)
	if restored.Len() != 3 || restored.ActiveIndex() != 1 {
		t.Errorf("expected 3 tabs with second active, got %d/%d", restored.Len(), restored.ActiveIndex())
	}

	empty := NewManager(newFakeReader(nil), nil).Snapshot()
	if empty.OpenTabs == nil || empty.ActiveTab != nil {
		t.Errorf("expected empty snapshot, got %+v", empty)
	}
}

func TestRestoreWithoutActive(t *testing.T) {
	m := NewManager(newFakeReader(map[string]string{"/a": "", "/b": ""}), nil)

	m.Restore(workspace.Info{OpenTabs: []string{"/a", "/b"}})

	if m.ActiveIndex() != 1 {
		t.Errorf("expected last opened tab active, got %d", m.ActiveIndex())
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"/notes/today.md":      "today.md",
		`C:\notes\today.md`:    "today.md",
		"today.md":             "today.md",
		"/notes/dir/":          "/notes/dir/",
		`C:\mixed/path\now.md`: "now.md",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
