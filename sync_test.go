package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/vproject-mcp/ignore"
	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
	"github.com/lexandro/vproject-mcp/watcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMirror(t *testing.T, rootDir string) *mirror {
	t.Helper()
	p, err := project.New(project.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })

	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          rootDir,
		MaxFileSizeBytes: 1024 * 1024,
	})
	return newMirror(rootDir, p, matcher, testLogger())
}

func writeDiskFile(t *testing.T, rootDir string, rel string, content string) string {
	t.Helper()
	path := filepath.Join(rootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func Test_mirror_verify_DetectsMissingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	writeDiskFile(t, tmpDir, "components/Button.jsx", "export default function Button() {}\n")

	result := m.verify()

	if result.MissingFiles != 1 || result.StaleFiles != 0 || result.ModifiedFiles != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	record, err := m.project.ReadFile("/components/Button.jsx")
	if err != nil {
		t.Fatalf("expected Button.jsx to be loaded after sync: %v", err)
	}
	if record.Kind != vfs.KindComponent {
		t.Errorf("expected inferred component kind, got %v", record.Kind)
	}
}

func Test_mirror_verify_DetectsStaleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	path := writeDiskFile(t, tmpDir, "Old.jsx", "export default 1\n")
	m.load()
	os.Remove(path)

	result := m.verify()

	if result.StaleFiles != 1 {
		t.Errorf("expected 1 stale file, got %d", result.StaleFiles)
	}
	if len(m.project.ListFiles()) != 0 {
		t.Errorf("expected stale file to be removed, got %q", m.project.ListFiles())
	}
}

func Test_mirror_verify_LeavesToolWrittenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	m.project.WriteFile("/Generated.jsx", "export default 1", vfs.KindComponent)

	result := m.verify()

	if result.Discrepancies() != 0 {
		t.Errorf("expected no discrepancies, got %+v", result)
	}
	if _, err := m.project.ReadFile("/Generated.jsx"); err != nil {
		t.Error("files written through the tools must survive a sync")
	}
}

func Test_mirror_verify_DetectsModifiedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	path := writeDiskFile(t, tmpDir, "App.jsx", "export default function App() {}\n")
	m.load()

	os.WriteFile(path, []byte("export default function App() { return null }\n"), 0644)
	future := time.Now().Add(2 * time.Second)
	os.Chtimes(path, future, future)

	result := m.verify()

	if result.ModifiedFiles != 1 {
		t.Errorf("expected 1 modified file, got %d", result.ModifiedFiles)
	}
	record, _ := m.project.ReadFile("/App.jsx")
	if record.Version != 2 {
		t.Errorf("expected reload to bump the version, got %d", record.Version)
	}
}

func Test_mirror_verify_ReloadsUntrackedDeletes(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	writeDiskFile(t, tmpDir, "App.jsx", "export default function App() {}\n")
	m.load()
	m.project.DeleteFile("/App.jsx")

	if result := m.verify(); result.MissingFiles != 1 {
		t.Errorf("expected the disk copy to be reloaded, got %+v", result)
	}
}

func Test_mirror_verify_KeepsToolDeletesUntilDiskChanges(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	path := writeDiskFile(t, tmpDir, "Old.jsx", "export default 1\n")
	m.load()
	m.project.DeleteFile("/Old.jsx")
	m.untrack("/Old.jsx")

	for i := 0; i < 2; i++ {
		if result := m.verify(); result.Discrepancies() != 0 {
			t.Fatalf("sync %d: expected the delete to stick, got %+v", i, result)
		}
	}
	if len(m.project.ListFiles()) != 0 {
		t.Fatalf("expected /Old.jsx to stay deleted, got %q", m.project.ListFiles())
	}

	os.WriteFile(path, []byte("export default 2\n"), 0644)
	future := time.Now().Add(2 * time.Second)
	os.Chtimes(path, future, future)

	if result := m.verify(); result.MissingFiles != 1 {
		t.Errorf("expected the modified disk copy to come back, got %+v", result)
	}
	if _, err := m.project.ReadFile("/Old.jsx"); err != nil {
		t.Errorf("expected /Old.jsx to be reloaded: %v", err)
	}
}

func Test_mirror_applyEvents_SkipsToolDeletes(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	path := writeDiskFile(t, tmpDir, "Old.jsx", "export default 1\n")
	m.load()
	m.project.DeleteFile("/Old.jsx")
	m.untrack("/Old.jsx")

	m.applyEvents([]watcher.DebouncedEvent{{Path: path, Op: watcher.OpWrite}})

	if len(m.project.ListFiles()) != 0 {
		t.Errorf("expected an unchanged disk copy to stay out, got %q", m.project.ListFiles())
	}
}

func Test_mirror_verify_InSyncReturnsZeros(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	writeDiskFile(t, tmpDir, "App.jsx", "export default function App() {}\n")
	writeDiskFile(t, tmpDir, "lib/api.js", "export const get = 1;\n")
	if count, _ := m.load(); count != 2 {
		t.Fatalf("expected 2 loaded files, got %d", count)
	}

	if result := m.verify(); result.Discrepancies() != 0 {
		t.Errorf("expected in-sync project, got %+v", result)
	}
}

func Test_mirror_load_SkipsBinaryIgnoredAndLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()
	m := newTestMirror(t, tmpDir)

	writeDiskFile(t, tmpDir, "App.jsx", "export default function App() {}\n")
	writeDiskFile(t, tmpDir, "logo.png", "\x89PNG\x00\x00binary")
	writeDiskFile(t, tmpDir, "node_modules/react/index.js", "module.exports = {}\n")
	writeDiskFile(t, tmpDir, ".gitignore", "secret.js\n")
	m.ignoreMatcher.Reload()
	writeDiskFile(t, tmpDir, "secret.js", "export const key = 1;\n")

	large := make([]byte, 2*1024*1024)
	for i := range large {
		large[i] = 'a'
	}
	writeDiskFile(t, tmpDir, "huge.js", string(large))

	m.load()

	got := m.project.ListFiles()
	if len(got) != 1 || got[0] != "/App.jsx" {
		t.Errorf("expected only /App.jsx to be loaded, got %q", got)
	}
}

func Test_mirror_verify_EmptyDirectory(t *testing.T) {
	m := newTestMirror(t, t.TempDir())

	result := m.verify()
	if result.Discrepancies() != 0 {
		t.Errorf("expected zeros for empty directory, got %+v", result)
	}
	if result.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func Test_mirror_runPeriodicSync_StopsOnChannelClose(t *testing.T) {
	m := newTestMirror(t, t.TempDir())

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.runPeriodicSync(1, stop)
		close(done)
	}()

	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runPeriodicSync did not stop after channel close")
	}
}
