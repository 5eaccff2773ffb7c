package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/force"
)

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Force.ChargeStrength != force.DefaultChargeStrength || cfg.Server.Addr != DefaultAddr {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordpath.toml")
	writeFile(t, path, `
[force]
charge_strength = -20000
theta = 0.9

[render]
formats = ["svg", "png"]
edge_policy = "collapse"

[server]
addr = ":9090"
frame_interval = "20ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Force.ChargeStrength != -20000 || cfg.Force.Theta != 0.9 {
		t.Errorf("force = %+v", cfg.Force)
	}
	if cfg.Force.LinkDistance != force.DefaultLinkDistance {
		t.Errorf("unset key lost its default: %v", cfg.Force.LinkDistance)
	}
	if len(cfg.Render.Formats) != 2 || cfg.Render.EdgePolicy != "collapse" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.FrameInterval != 20*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.PointerRate != DefaultPointerRate {
		t.Errorf("pointer rate = %v", cfg.Server.PointerRate)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordpath.yml")
	writeFile(t, path, `
force:
  link_distance: 80
render:
  scale: 3
server:
  redis_url: redis://localhost:6379/0
  frame_interval: 10ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Force.LinkDistance != 80 || cfg.Render.Scale != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.RedisURL != "redis://localhost:6379/0" || cfg.Server.FrameInterval != 10*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
		code   errors.Code
	}{
		{"bad toml", "toml", "[force\n", errors.ErrCodeInvalidConfig},
		{"unknown toml key", "toml", "[force]\nspeed = 3\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "yaml", "force:\n  speed: 3\n", errors.ErrCodeInvalidConfig},
		{"positive charge", "toml", "[force]\ncharge_strength = 5\n", errors.ErrCodeInvalidConfig},
		{"bad format", "toml", "[render]\nformats = [\"gif\"]\n", errors.ErrCodeInvalidConfig},
		{"bad edge policy", "yaml", "render:\n  edge_policy: merge\n", errors.ErrCodeInvalidConfig},
		{"bad redis url", "toml", "[server]\nredis_url = \"::\"\n", errors.ErrCodeInvalidConfig},
		{"unsupported", "ini", "", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestFormat(t *testing.T) {
	for path, want := range map[string]string{
		"a.toml": "toml", "a.yaml": "yaml", "a.YML": "yaml", "a": "toml",
	} {
		if got := Format(path); got != want {
			t.Errorf("Format(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordpath.toml")
	writeFile(t, path, "[force]\ncharge_strength = -100\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, log.New(os.Stderr), func(c Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changes:
			if c.Force.ChargeStrength != -200 {
				t.Errorf("charge = %v, want -200", c.Force.ChargeStrength)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch: %v", err)
			}
			return
		case <-tick.C:
			writeFile(t, path, "[force]\ncharge_strength = -200\n")
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchIgnoresInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordpath.toml")
	writeFile(t, path, "")

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(path, []byte("[force\n"), 0o644)
	}()
	if err := Watch(ctx, path, log.New(os.Stderr), func(Config) { called <- struct{}{} }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-called:
		t.Error("invalid file delivered")
	default:
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
