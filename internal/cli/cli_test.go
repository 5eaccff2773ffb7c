package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/graph"
)

// run executes the CLI with a private cache directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "cache"))
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), &stdout, &stderr, args)
	return stdout.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg,png,dot", []string{"svg", "png", "dot"}},
		{" SVG , json ,", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || (got == nil) != (tt.want == nil) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "", "wordpath"},
		{"", "-", "wordpath"},
		{"", "cat,cot", "wordpath"},
		{"", "routes/easy.json", "routes/easy"},
		{"out/ladder.svg", "", "out/ladder"},
		{"ladder.txt", "", "ladder.txt"},
		{"ladder", "route.json", "ladder"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got := outputPaths([]string{"svg"}, "", "diagram.image")
	if got["svg"] != "diagram.image" {
		t.Errorf("single format path = %q", got["svg"])
	}
	got = outputPaths([]string{"svg", "png"}, "", "out/ladder.svg")
	if got["svg"] != "out/ladder.svg" || got["png"] != "out/ladder.png" {
		t.Errorf("multi format paths = %v", got)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "wordpath version ") {
		t.Errorf("--version = %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ladder.svg")

	stdout, err := run(t, "render", "cat", "cot", "cog", "dog", "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("output is not SVG: %.40s", data)
	}
	if !strings.Contains(stdout, out) || !strings.Contains(stdout, "4 nodes") {
		t.Errorf("summary = %q", stdout)
	}
}

func TestRenderMultipleFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "ladder")
	if _, err := run(t, "render", "cat,cot,dog", "-f", "svg,json,dot", "-o", base); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{"svg", "json", "dot"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
	l, err := graph.ReadLayoutFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 3 || !l.Converged {
		t.Errorf("layout = %d nodes, converged %v", len(l.Nodes), l.Converged)
	}
}

func TestRenderToStdout(t *testing.T) {
	out, err := run(t, "render", "cat", "cot", "-f", "dot", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"cat" -- "cot"`) {
		t.Errorf("stdout = %q", out)
	}

	if _, err := run(t, "render", "cat", "-f", "svg,dot", "-o", "-"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("two formats to stdout: err = %v", err)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	badConfig := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(badConfig, []byte("[force]\ncharge_strength = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"render", "cat", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"missing route file", []string{"render", filepath.Join(dir, "missing.json")}, errors.ErrCodeFileNotFound},
		{"bad edge policy", []string{"render", "cat", "--edges", "merge"}, errors.ErrCodeInvalidInput},
		{"bad config", []string{"render", "cat", "--config", badConfig}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "-o", filepath.Join(dir, "out"))...)
			if errors.GetCode(err) != tt.code {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "ladder.layout.json")

	stdout, err := run(t, "layout", "cat", "cot", "cog", "-o", layoutPath, "--width", "800", "--height", "400")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "visualize "+layoutPath) {
		t.Errorf("next step hint missing: %q", stdout)
	}
	l, err := graph.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 800 || l.Height != 400 || len(l.Nodes) != 3 {
		t.Errorf("layout = %vx%v, %d nodes", l.Width, l.Height, len(l.Nodes))
	}

	dotPath := filepath.Join(dir, "ladder.dot")
	if _, err := run(t, "visualize", layoutPath, "-f", "dot", "-o", dotPath); err != nil {
		t.Fatal(err)
	}
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(dot, []byte(`"cot" -- "cog"`)) {
		t.Errorf("dot = %s", dot)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wordpath.yaml")
	cfg := "force:\n  width: 640\n  height: 320\nrender:\n  formats: [json]\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	base := filepath.Join(dir, "ladder")
	if _, err := run(t, "render", "cat", "cot", "--config", cfgPath, "-o", base+".json"); err != nil {
		t.Fatal(err)
	}
	l, err := graph.ReadLayoutFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if l.Width != 640 || l.Height != 320 {
		t.Errorf("canvas = %vx%v, want 640x320", l.Width, l.Height)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheHome := filepath.Join(t.TempDir(), "xdg")
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	var stdout bytes.Buffer
	if err := Run(context.Background(), &stdout, &bytes.Buffer{}, []string{"cache", "path"}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(stdout.String()); got != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", got)
	}

	stdout.Reset()
	if err := Run(context.Background(), &stdout, &bytes.Buffer{}, []string{"cache", "clear"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "Cache is empty") {
		t.Errorf("clear on empty cache = %q", stdout.String())
	}

	out := filepath.Join(t.TempDir(), "a.svg")
	if err := Run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"render", "cat", "-o", out}); err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	if err := Run(context.Background(), &stdout, &bytes.Buffer{}, []string{"cache", "clear"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "Cleared cache") {
		t.Errorf("clear = %q", stdout.String())
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "wordpath") {
				t.Error("completion script does not mention wordpath")
			}
		})
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
