// Package register adds a vproject server entry to an MCP client config file.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUsage is returned when the command line cannot be parsed.
var ErrUsage = errors.New("invalid register arguments")

type scope string

const (
	scopeProject scope = "project" // <directory>/.mcp.json
	scopeUser    scope = "user"    // ~/.claude.json
)

// request is a parsed register command line.
type request struct {
	scope      scope
	directory  string   // project scope only
	serverArgs []string // everything after "--"
	forwarded  bool     // "--" was present
}

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run executes the register subcommand with args = everything after "register".
// A project registration without forwarded args mirrors the project directory.
func Run(serverName string, args []string, out io.Writer) error {
	req, err := parseRequest(args)
	if err != nil {
		printUsage(out)
		return err
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}
	configPath, err := req.configPath()
	if err != nil {
		return err
	}

	entry := launchEntry(runtime.GOOS, binaryPath, req.launchArgs(configPath))
	if err := mergeServerEntry(configPath, serverName, entry); err != nil {
		return err
	}

	fmt.Fprintf(out, "Registered %q in %s\n", serverName, configPath)
	return nil
}

func printUsage(out io.Writer) {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(out, "Usage:\n")
	fmt.Fprintf(out, "  %s register project [directory]        mirror <directory> (default .) via <directory>/.mcp.json\n", bin)
	fmt.Fprintf(out, "  %s register project [directory] -- ...  pass the given server flags instead of -mirror\n", bin)
	fmt.Fprintf(out, "  %s register user [-- ...]               empty in-memory project via ~/.claude.json\n", bin)
}

// DeriveServerName turns a binary path into a server name: "vproject-mcp.exe" -> "vproject".
func DeriveServerName(binaryPath string) string {
	name := strings.TrimSuffix(filepath.Base(binaryPath), ".exe")
	return strings.TrimSuffix(name, "-mcp")
}

func parseRequest(args []string) (request, error) {
	if len(args) == 0 {
		return request{}, fmt.Errorf("%w: missing scope", ErrUsage)
	}

	req := request{scope: scope(args[0])}
	rest := args[1:]
	if i := indexOf(rest, "--"); i >= 0 {
		req.serverArgs = rest[i+1:]
		req.forwarded = true
		rest = rest[:i]
	}

	switch req.scope {
	case scopeProject:
		req.directory = "."
		if len(rest) > 0 {
			req.directory = rest[0]
		}
		if len(rest) > 1 {
			return request{}, fmt.Errorf("%w: unexpected %q", ErrUsage, rest[1])
		}
	case scopeUser:
		if len(rest) > 0 {
			return request{}, fmt.Errorf("%w: user scope takes no directory", ErrUsage)
		}
	default:
		return request{}, fmt.Errorf("%w: unknown scope %q (must be \"project\" or \"user\")", ErrUsage, req.scope)
	}
	return req, nil
}

func indexOf(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

func (r request) configPath() (string, error) {
	if r.scope == scopeUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		return filepath.Join(home, ".claude.json"), nil
	}
	dir, err := filepath.Abs(r.directory)
	if err != nil {
		return "", fmt.Errorf("resolving directory %s: %w", r.directory, err)
	}
	return filepath.Join(dir, ".mcp.json"), nil
}

// launchArgs returns the server flags stored in the entry.
func (r request) launchArgs(configPath string) []string {
	if r.forwarded || r.scope != scopeProject {
		return r.serverArgs
	}
	return []string{"-mirror", filepath.Dir(configPath)}
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

// launchEntry wraps the binary in cmd /C on Windows, where MCP clients cannot spawn it directly.
func launchEntry(goos string, binaryPath string, serverArgs []string) mcpServerEntry {
	if goos == "windows" {
		return mcpServerEntry{Command: "cmd", Args: append([]string{"/C", binaryPath}, serverArgs...)}
	}
	return mcpServerEntry{Command: binaryPath, Args: serverArgs}
}

// mergeServerEntry sets mcpServers[serverName] in configPath. Other keys survive, and a file
// that does not parse is left untouched.
func mergeServerEntry(configPath string, serverName string, entry mcpServerEntry) error {
	doc := map[string]any{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	servers, _ := doc["mcpServers"].(map[string]any)
	if servers == nil {
		if _, present := doc["mcpServers"]; present {
			return fmt.Errorf("%s: mcpServers is not an object", configPath)
		}
		servers = map[string]any{}
		doc["mcpServers"] = servers
	}
	servers[serverName] = entry

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", configPath, err)
	}
	return replaceFile(configPath, append(data, '\n'))
}

// replaceFile writes data next to path and renames it into place.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mcp-*.tmp")
	if err != nil {
		return err
	}
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
