package register

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func Test_DeriveServerName(t *testing.T) {
	tests := []struct {
		name       string
		binaryPath string
		want       string
	}{
		{"vproject-mcp", "vproject-mcp", "vproject"},
		{"vproject-mcp.exe", "vproject-mcp.exe", "vproject"},
		{"no -mcp suffix passthrough", "vproject", "vproject"},
		{"only .exe suffix", "vproject.exe", "vproject"},
		{"full path stripped to base", "/usr/local/bin/vproject-mcp", "vproject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveServerName(tt.binaryPath)
			if got != tt.want {
				t.Errorf("DeriveServerName(%q) = %q, want %q", tt.binaryPath, got, tt.want)
			}
		})
	}
}

func Test_parseRequest(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		wantScope     scope
		wantDir       string
		wantArgs      []string
		wantForwarded bool
	}{
		{"project default directory", []string{"project"}, scopeProject, ".", nil, false},
		{"project directory", []string{"project", "shop"}, scopeProject, "shop", nil, false},
		{"project forwarded args", []string{"project", "shop", "--", "-entrypoint", "/src/main.jsx"}, scopeProject, "shop", []string{"-entrypoint", "/src/main.jsx"}, true},
		{"project separator only", []string{"project", "--"}, scopeProject, ".", []string{}, true},
		{"user", []string{"user"}, scopeUser, "", nil, false},
		{"user forwarded args", []string{"user", "--", "-alias", "~/"}, scopeUser, "", []string{"-alias", "~/"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseRequest(tt.args)
			if err != nil {
				t.Fatalf("parseRequest() error: %v", err)
			}
			if req.scope != tt.wantScope || req.directory != tt.wantDir || req.forwarded != tt.wantForwarded {
				t.Errorf("parseRequest() = %+v", req)
			}
			if !sliceEqual(req.serverArgs, tt.wantArgs) {
				t.Errorf("serverArgs = %v, want %v", req.serverArgs, tt.wantArgs)
			}
		})
	}
}

func Test_parseRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no scope", nil},
		{"unknown scope", []string{"global"}},
		{"two directories", []string{"project", "a", "b"}},
		{"user with directory", []string{"user", "shop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRequest(tt.args); !errors.Is(err, ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
		})
	}
}

func Test_request_launchArgs(t *testing.T) {
	configPath := filepath.Join("/projects", "shop", ".mcp.json")
	tests := []struct {
		name string
		req  request
		want []string
	}{
		{"project mirrors its directory", request{scope: scopeProject}, []string{"-mirror", filepath.Join("/projects", "shop")}},
		{"forwarded args win", request{scope: scopeProject, serverArgs: []string{"-log-level", "debug"}, forwarded: true}, []string{"-log-level", "debug"}},
		{"user has no default", request{scope: scopeUser}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.launchArgs(configPath); !sliceEqual(got, tt.want) {
				t.Errorf("launchArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

// readServers decodes the mcpServers object of a client config file.
func readServers(t *testing.T, configPath string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var config struct {
		McpServers map[string]json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	return config.McpServers
}

func Test_mergeServerEntry_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")

	entry := mcpServerEntry{Command: "/usr/local/bin/vproject-mcp", Args: []string{"-mirror", "/tmp"}}
	if err := mergeServerEntry(configPath, "vproject", entry); err != nil {
		t.Fatalf("mergeServerEntry() error: %v", err)
	}

	var got mcpServerEntry
	if err := json.Unmarshal(readServers(t, configPath)["vproject"], &got); err != nil {
		t.Fatalf("vproject entry: %v", err)
	}
	if got.Command != entry.Command || !sliceEqual(got.Args, entry.Args) {
		t.Errorf("entry = %+v, want %+v", got, entry)
	}
}

func Test_mergeServerEntry_KeepsOtherServersAndKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	initial := `{
  "theme": "dark",
  "mcpServers": {
    "codesearch": {"command": "/usr/bin/codesearch"},
    "vproject": {"command": "/old/vproject-mcp"}
  }
}`
	if err := os.WriteFile(configPath, []byte(initial), 0644); err != nil {
		t.Fatal(err)
	}

	if err := mergeServerEntry(configPath, "vproject", mcpServerEntry{Command: "/new/vproject-mcp"}); err != nil {
		t.Fatalf("mergeServerEntry() error: %v", err)
	}

	servers := readServers(t, configPath)
	var other, updated mcpServerEntry
	json.Unmarshal(servers["codesearch"], &other)
	json.Unmarshal(servers["vproject"], &updated)
	if other.Command != "/usr/bin/codesearch" {
		t.Errorf("codesearch entry changed: %+v", other)
	}
	if updated.Command != "/new/vproject-mcp" {
		t.Errorf("vproject command = %q, want /new/vproject-mcp", updated.Command)
	}

	data, _ := os.ReadFile(configPath)
	var top map[string]any
	json.Unmarshal(data, &top)
	if top["theme"] != "dark" {
		t.Errorf("unrelated key lost: %v", top)
	}
}

func Test_mergeServerEntry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "not valid json{{{"},
		{"mcpServers not an object", `{"mcpServers": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), ".mcp.json")
			os.WriteFile(configPath, []byte(tt.content), 0644)

			if err := mergeServerEntry(configPath, "vproject", mcpServerEntry{Command: "/usr/local/bin/vproject-mcp"}); err == nil {
				t.Fatal("expected error, got nil")
			}
			data, _ := os.ReadFile(configPath)
			if string(data) != tt.content {
				t.Error("expected the original file to be left untouched")
			}
		})
	}
}

func Test_launchEntry(t *testing.T) {
	binaryPath := "/usr/local/bin/vproject-mcp"
	tests := []struct {
		name        string
		goos        string
		serverArgs  []string
		wantCommand string
		wantArgs    []string
	}{
		{"linux", "linux", []string{"-mirror", "/projects/shop"}, binaryPath, []string{"-mirror", "/projects/shop"}},
		{"linux no args", "darwin", nil, binaryPath, nil},
		{"windows", "windows", []string{"-mirror", "/projects/shop"}, "cmd", []string{"/C", binaryPath, "-mirror", "/projects/shop"}},
		{"windows no args", "windows", nil, "cmd", []string{"/C", binaryPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := launchEntry(tt.goos, binaryPath, tt.serverArgs)
			if entry.Command != tt.wantCommand || !sliceEqual(entry.Args, tt.wantArgs) {
				t.Errorf("launchEntry() = %+v, want %s %v", entry, tt.wantCommand, tt.wantArgs)
			}
		})
	}
}

func Test_request_configPath(t *testing.T) {
	got, err := request{scope: scopeProject, directory: "."}.configPath()
	absDir, _ := filepath.Abs(".")
	if err != nil || got != filepath.Join(absDir, ".mcp.json") {
		t.Errorf("project configPath = %q, %v", got, err)
	}

	got, err = request{scope: scopeUser}.configPath()
	homeDir, _ := os.UserHomeDir()
	if err != nil || got != filepath.Join(homeDir, ".claude.json") {
		t.Errorf("user configPath = %q, %v", got, err)
	}
}

func Test_Run_ProjectScopeMirrorsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	var out bytes.Buffer

	if err := Run("vproject", []string{"project", tmpDir}, &out); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".mcp.json"))
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var config struct {
		McpServers map[string]mcpServerEntry `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}

	entry, ok := config.McpServers["vproject"]
	if !ok {
		t.Fatalf("vproject entry missing: %s", data)
	}
	absDir, _ := filepath.Abs(tmpDir)
	args := entry.Args
	if runtime.GOOS == "windows" {
		args = args[2:]
	}
	if !sliceEqual(args, []string{"-mirror", absDir}) {
		t.Errorf("args = %v, want [-mirror %s]", args, absDir)
	}
}

func Test_Run_ForwardedArgsReplaceMirror(t *testing.T) {
	tmpDir := t.TempDir()

	if err := Run("vproject", []string{"project", tmpDir, "--", "-entrypoint", "/main.jsx"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(tmpDir, ".mcp.json"))
	var config struct {
		McpServers map[string]mcpServerEntry `json:"mcpServers"`
	}
	json.Unmarshal(data, &config)

	args := config.McpServers["vproject"].Args
	if runtime.GOOS == "windows" {
		args = args[2:]
	}
	if !sliceEqual(args, []string{"-entrypoint", "/main.jsx"}) {
		t.Errorf("args = %v, want forwarded args only", args)
	}
}

func Test_Run_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no scope", nil},
		{"unknown scope", []string{"global"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Run("vproject", tt.args, &out)
			if !errors.Is(err, ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
			if out.Len() == 0 {
				t.Error("expected usage to be printed")
			}
		})
	}
}

func sliceEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
