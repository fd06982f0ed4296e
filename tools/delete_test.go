package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lexandro/vproject-mcp/vfs"
)

func Test_DeleteHandler_NotFound(t *testing.T) {
	h := &DeleteHandler{Project: newTestProject(t), Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, DeleteArgs{Path: "/nope.jsx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for missing file")
	}
}

func Test_DeleteHandler_ReportsRemainingImporters(t *testing.T) {
	p := newTestProject(t)
	p.WriteFile("/components/Button.jsx", testButton, vfs.KindComponent)
	p.WriteFile("/App.jsx", testApp, vfs.KindComponent)
	h := &DeleteHandler{Project: p, Logger: discardLogger()}

	result, _, _ := h.Handle(context.Background(), nil, DeleteArgs{Path: "@/components/Button.jsx"})
	if result.IsError {
		t.Fatalf("expected delete of an imported file to succeed: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Still imported by: /App.jsx") {
		t.Errorf("expected importer hint, got: %s", text)
	}
	if len(p.ListFiles()) != 1 {
		t.Errorf("expected one remaining file, got %q", p.ListFiles())
	}
}

func Test_DeleteHandler_EmptyPath(t *testing.T) {
	h := &DeleteHandler{Project: newTestProject(t), Logger: discardLogger()}

	result, _, _ := h.Handle(context.Background(), nil, DeleteArgs{})
	if !result.IsError {
		t.Fatal("expected IsError=true for empty path")
	}
}

func Test_DeleteHandler_CallsOnDeleteWithCanonicalPath(t *testing.T) {
	p := newTestProject(t)
	p.WriteFile("/components/Button.jsx", testButton, vfs.KindComponent)

	var deleted []string
	h := &DeleteHandler{
		Project:  p,
		OnDelete: func(path string) { deleted = append(deleted, path) },
		Logger:   discardLogger(),
	}

	h.Handle(context.Background(), nil, DeleteArgs{Path: "@/components/Button.jsx"})
	h.Handle(context.Background(), nil, DeleteArgs{Path: "/missing.jsx"})

	if len(deleted) != 1 || deleted[0] != "/components/Button.jsx" {
		t.Errorf("expected one canonical delete callback, got %q", deleted)
	}
}
