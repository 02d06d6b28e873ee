package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/iconstage"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.TransparencyRatio != iconstage.DefaultThreshold {
		t.Errorf("TransparencyRatio = %v, want %v", c.TransparencyRatio, iconstage.DefaultThreshold)
	}
	if c.Resolution != 256 || c.Margin != 32 {
		t.Errorf("Resolution, Margin = %d, %d, want 256, 32", c.Resolution, c.Margin)
	}
	if c.ListBehaviour != "blacklist" {
		t.Errorf("ListBehaviour = %q, want blacklist", c.ListBehaviour)
	}
	if c.FOV != 45 {
		t.Errorf("FOV = %v, want 45", c.FOV)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "iconstage.yaml", `
transparency_ratio: 0.9
resolution: 128
margin: 16
list_behaviour: Whitelist
item_list: "Vanilla/Vanilla/Shovel, Vanilla/Vanilla/Key"
log_level: warn
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TransparencyRatio != 0.9 || c.Resolution != 128 || c.Margin != 16 {
		t.Errorf("got ratio %v resolution %d margin %d", c.TransparencyRatio, c.Resolution, c.Margin)
	}
	if c.Level() != slog.LevelWarn {
		t.Errorf("Level = %v, want WARN", c.Level())
	}
	f, err := c.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if f.Mode != iconstage.ListWhite {
		t.Errorf("Mode = %v, want whitelist", f.Mode)
	}
	if !f.Contains("vanilla/vanilla/key") {
		t.Error("filter does not contain the listed key")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "iconstage.json", `{"resolution": 128}`)
	t.Setenv("ICONSTAGE_RESOLUTION", "64")
	t.Setenv("ICONSTAGE_VERBOSE_RENDERING", "true")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Resolution != 64 {
		t.Errorf("Resolution = %d, want 64", c.Resolution)
	}
	if c.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want DEBUG", c.Level())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"ratio", "transparency_ratio = 1.5\n", "TransparencyRatio"},
		{"resolution", "resolution = 4\n", "Resolution"},
		{"margin", "resolution = 64\nmargin = 40\n", "Margin"},
		{"clip", "near_clip = 2.0\nfar_clip = 1.0\n", "FarClip"},
		{"list", "list_behaviour = \"greylist\"\n", "ListBehaviour"},
		{"dump dir", "dump_to_cache = true\n", "DumpDir"},
		{"level", "log_level = \"loud\"\n", "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "iconstage.toml", tt.body))
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("err = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestOptions(t *testing.T) {
	c := Default()
	c.DumpToCache = true
	c.DumpDir = t.TempDir()
	c.OverrideDirs = []string{t.TempDir()}
	opts, err := c.Options(context.Background())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	// 8 base options plus overrides and dumper.
	if len(opts) != 10 {
		t.Errorf("len(opts) = %d, want 10", len(opts))
	}

	c.OverrideDirs = []string{filepath.Join(t.TempDir(), "missing")}
	if _, err := c.Options(context.Background()); err == nil {
		t.Error("Options with a missing override dir succeeded")
	}
}
