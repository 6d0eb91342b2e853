package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Target != "AUTO" {
		t.Errorf("Target = %q, want AUTO", cfg.Target)
	}
	if cfg.Mode != ModeForce {
		t.Errorf("Mode = %v, want %v", cfg.Mode, ModeForce)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Background != "#FFFFFF" {
		t.Errorf("Background = %q, want #FFFFFF", cfg.Background)
	}
	if len(cfg.InputExtensions) != 7 {
		t.Errorf("InputExtensions = %v, want 7 entries", cfg.InputExtensions)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.InputDir = "/input"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "fixed target", modify: func(c *Config) { c.Target = "1216x832" }},
		{name: "missing input dir", modify: func(c *Config) { c.InputDir = "" }, wantErr: true},
		{name: "no extensions", modify: func(c *Config) { c.InputExtensions = nil }, wantErr: true},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "unknown mode", modify: func(c *Config) { c.Mode = "dedup" }, wantErr: true},
		{name: "bad target", modify: func(c *Config) { c.Target = "0x100" }, wantErr: true},
		{name: "bad policy", modify: func(c *Config) { c.Policy = "stretch" }, wantErr: true},
		{name: "bad align", modify: func(c *Config) { c.Align = "upper" }, wantErr: true},
		{name: "bad background", modify: func(c *Config) { c.Background = "#zzzzzz" }, wantErr: true},
		{name: "negative memory", modify: func(c *Config) { c.MaxMemoryMB = -1 }, wantErr: true},
		{name: "csv report", modify: func(c *Config) { c.ReportPath = "out.csv" }, wantErr: true},
		{name: "parquet report", modify: func(c *Config) { c.ReportPath = "out.parquet" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateInvalidDimension(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = "/input"
	cfg.Target = "-5x10"
	if err := cfg.Validate(); !errors.Is(err, resolution.ErrInvalidDimension) {
		t.Errorf("Validate() error = %v, want ErrInvalidDimension", err)
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = "/input"
	cfg.Mode = ModeSkip
	cfg.CacheEnabled = true

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/input", ".aspectcrop", "state.sqlite"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir should be set when cache is enabled")
	}
}

func TestConfig_BuildRecipe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "832x1216"
	cfg.Policy = "fit"
	cfg.Align = "bottom-right"
	cfg.Background = "000000"

	r, err := cfg.BuildRecipe()
	if err != nil {
		t.Fatal(err)
	}
	if r.Target.IsAuto() || r.Target.Size() != (resolution.Resolution{Width: 832, Height: 1216}) {
		t.Errorf("Target = %v", r.Target)
	}
	if r.Policy != geometry.Fit || r.Align != geometry.BottomRight {
		t.Errorf("Policy/Align = %v/%v", r.Policy, r.Align)
	}
	if r.Background.Hex() != "#000000" {
		t.Errorf("Background = %s", r.Background.Hex())
	}
	if r.Crop != nil || !r.Transform.IsIdentity() {
		t.Error("resize recipe should have no crop and no transform")
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "7")
	t.Setenv(EnvDB, "/tmp/j.sqlite")
	t.Setenv(EnvCacheDir, "/tmp/c")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 7 || cfg.DBPath != "/tmp/j.sqlite" || cfg.CacheDir != "/tmp/c" {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}

	t.Setenv(EnvWorkers, "many")
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("ApplyEnv() should fail on non-numeric workers")
	}
}

func TestApplyProfile(t *testing.T) {
	tests := []struct {
		profile     string
		wantOK      bool
		wantPolicy  string
		wantAlign   string
		transparent bool
	}{
		{profile: "fill", wantOK: true, wantPolicy: "crop", wantAlign: "center"},
		{profile: "letterbox", wantOK: true, wantPolicy: "fit", wantAlign: "center"},
		{profile: "transparent", wantOK: true, wantPolicy: "fit", wantAlign: "center", transparent: true},
		{profile: "portrait-top", wantOK: true, wantPolicy: "crop", wantAlign: "top-center"},
		{profile: "unknown", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			cfg := DefaultConfig()
			ok := cfg.ApplyProfile(tt.profile)
			if ok != tt.wantOK {
				t.Fatalf("ApplyProfile() = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if cfg.Policy != tt.wantPolicy || cfg.Align != tt.wantAlign || cfg.Transparent != tt.transparent {
				t.Errorf("got policy=%s align=%s transparent=%v", cfg.Policy, cfg.Align, cfg.Transparent)
			}
		})
	}

	if got := ValidProfiles(); len(got) != 4 || got[0] != "fill" {
		t.Errorf("ValidProfiles() = %v", got)
	}
}

func TestFileConfig_ApplyToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aspectcrop.yaml")
	data := `
input:
  dir: /photos
output:
  profile: letterbox
  target: 1024x1024
  background: "#112233"
processing:
  workers: 2
  mode: skip
  cache: true
paths:
  db: /tmp/state.sqlite
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	fc, found, err := FindAndLoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if found != path {
		t.Errorf("found = %q, want %q", found, path)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.InputDir != "/photos" || cfg.Target != "1024x1024" || cfg.Policy != "fit" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Background != "#112233" || cfg.Profile != "letterbox" {
		t.Errorf("Background/Profile = %s/%s", cfg.Background, cfg.Profile)
	}
	if cfg.Workers != 2 || cfg.Mode != ModeSkip || !cfg.CacheEnabled || cfg.DBPath != "/tmp/state.sqlite" {
		t.Errorf("processing = %+v", cfg)
	}
}

func TestFileConfig_UnknownProfile(t *testing.T) {
	fc := &FileConfig{Output: &OutputConfig{Profile: "nope"}}
	if err := fc.ApplyToConfig(DefaultConfig()); err == nil {
		t.Error("ApplyToConfig() should fail on unknown profile")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	fc, err := LoadFromFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil || fc != nil {
		t.Errorf("LoadFromFile() = %v, %v; want nil, nil", fc, err)
	}

	if _, _, err := FindAndLoadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("FindAndLoadConfig() with explicit missing path should fail")
	}
}

func TestGenerateExampleConfig_Parses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	if err := os.WriteFile(path, []byte(GenerateExampleConfig()), 0644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := fc.ApplyToConfig(cfg); err != nil {
		t.Fatal(err)
	}
	cfg.InputDir = "/x"
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config is invalid: %v", err)
	}
}
