package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lexandro/vproject-mcp/project"
	"github.com/lexandro/vproject-mcp/vfs"
)

func newTestFilesHandler(t *testing.T) (*FilesHandler, *project.Project) {
	t.Helper()
	p := newTestProject(t)
	p.WriteFile("/App.jsx", testApp, vfs.KindComponent)
	p.WriteFile("/components/Button.jsx", testButton, vfs.KindComponent)
	p.WriteFile("/lib/api.js", "export const get = () => {};", vfs.KindModule)
	return &FilesHandler{Project: p, Logger: discardLogger()}, p
}

func Test_FilesHandler_ListsEverythingWithoutPattern(t *testing.T) {
	h, _ := newTestFilesHandler(t)

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{NameOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	want := "Found 3 files:\n\n/App.jsx\n/components/Button.jsx\n/lib/api.js\n"
	if text != want {
		t.Errorf("unexpected listing:\n%s", text)
	}
}

func Test_FilesHandler_GlobPattern(t *testing.T) {
	h, _ := newTestFilesHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, FilesArgs{Pattern: "**/*.jsx"})
	text := resultText(t, result)

	if !strings.Contains(text, "Found 2 files") {
		t.Errorf("expected 2 jsx files, got:\n%s", text)
	}
	if strings.Contains(text, "api.js") {
		t.Errorf("expected api.js to be filtered out, got:\n%s", text)
	}
	if !strings.Contains(text, "(component, JavaScript") {
		t.Errorf("expected metadata, got:\n%s", text)
	}
}

func Test_FilesHandler_NoMatch(t *testing.T) {
	h, _ := newTestFilesHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, FilesArgs{Pattern: "**/*.css"})
	if text := resultText(t, result); text != "No files matched." {
		t.Errorf("expected 'No files matched.', got: %s", text)
	}
}

func Test_FilesHandler_InvalidPattern(t *testing.T) {
	h, _ := newTestFilesHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, FilesArgs{Pattern: "[invalid"})
	if !result.IsError {
		t.Error("expected IsError=true for invalid glob")
	}
}
