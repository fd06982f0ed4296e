package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/lexandro/vproject-mcp/vfs"
)

func newTestSearchHandler(t *testing.T) *SearchHandler {
	t.Helper()
	p := newTestProject(t)
	p.WriteFile("/App.jsx", testApp, vfs.KindComponent)
	p.WriteFile("/components/Button.jsx", testButton, vfs.KindComponent)
	p.WriteFile("/lib/format.js", "export function label(x) { return String(x); }", vfs.KindModule)
	return &SearchHandler{Project: p, Logger: discardLogger()}
}

func Test_SearchHandler_EmptyQuery(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, err := h.Handle(context.Background(), nil, SearchArgs{Query: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for empty query")
	}
	if text := resultText(t, result); !strings.Contains(text, "query parameter is required") {
		t.Errorf("expected error message about empty query, got: %s", text)
	}
}

func Test_SearchHandler_BasicSearch(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "hello"})
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "/App.jsx (component)") {
		t.Errorf("expected result to contain /App.jsx, got:\n%s", text)
	}
}

func Test_SearchHandler_KindFilter(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "label", Kind: "module"})
	text := resultText(t, result)

	if !strings.Contains(text, "/lib/format.js") {
		t.Errorf("expected module hit, got:\n%s", text)
	}
	if strings.Contains(text, "Button.jsx") || strings.Contains(text, "App.jsx") {
		t.Errorf("expected components to be filtered out, got:\n%s", text)
	}
}

func Test_SearchHandler_BadKind(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "label", Kind: "stylesheet"})
	if !result.IsError {
		t.Error("expected IsError=true for unknown kind")
	}
}

func Test_SearchHandler_NoResults(t *testing.T) {
	h := newTestSearchHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "nonexistent"})
	if result.IsError {
		t.Fatal("expected success (no error), got error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "No matches found") {
		t.Errorf("expected 'No matches found', got:\n%s", text)
	}
}
