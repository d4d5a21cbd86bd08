package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config gets service defaults", func(t *testing.T) {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		if cfg.Name != "speechkit" {
			t.Errorf("expected name 'speechkit', got %q", cfg.Name)
		}
		if cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("expected development with debug, got %q debug=%v", cfg.Environment, cfg.Debug)
		}
		if cfg.Logging.ServiceName != "speechkit" {
			t.Errorf("expected logging service name propagated, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServiceConfig)
		wantErr string
	}{
		{"valid", func(*ServiceConfig) {}, ""},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, "config.name is required"},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, "config.environment must be one of"},
		{"invalid logging", func(c *ServiceConfig) { c.Logging.Level = "loud" }, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ServiceConfig{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type testAudio struct {
	TempDir string        `mapstructure:"temp_dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Audio         testAudio `mapstructure:"audio"`
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: speech-test
environment: staging
audio:
  temp_dir: /var/tmp/speech
  timeout: 45s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("speech-test", &cfg, WithConfigFile(configPath), WithEnvPrefix("SPEECHKIT_TEST_UNUSED")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "speech-test" {
		t.Errorf("expected name 'speech-test', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Audio.TempDir != "/var/tmp/speech" {
		t.Errorf("expected temp_dir from YAML, got %q", cfg.Audio.TempDir)
	}
	if cfg.Audio.Timeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.Audio.Timeout)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SPKTEST_AUDIO_TEMP_DIR", "/from/env")

	var cfg testConfig
	if err := LoadConfig("speech-test", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("SPKTEST")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Audio.TempDir != "/from/env" {
		t.Errorf("expected env override, got %q", cfg.Audio.TempDir)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("SPKTEST_NONE"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/speechkit/config.yml": true,
		".env":                       true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("speechkit", LoaderConfig{})
	if files.ConfigFile != "./cmd/speechkit/config.yml" {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("unexpected env file %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := resolver.ResolveFiles("speechkit", LoaderConfig{ConfigFile: "/etc/speech.yml", EnvFile: "/etc/speech.env"})
	if files.ConfigFile != "/etc/speech.yml" || files.EnvFile != "/etc/speech.env" {
		t.Errorf("expected explicit paths, got %+v", files)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("AUDIO_TEMP_DIR")
	want := map[string]bool{
		"audio_temp_dir": true,
		"audio.temp.dir": true,
		"audio.temp_dir": true,
		"audio_temp.dir": true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %v", len(want), got)
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
	}

	if single := generateEnvKeyVariants("NAME"); len(single) != 1 || single[0] != "name" {
		t.Errorf("unexpected single-part variants %v", single)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("speechkit_")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config %+v", lc)
	}
	if lc.EnvPrefix != "SPEECHKIT" {
		t.Errorf("expected normalized prefix, got %q", lc.EnvPrefix)
	}
}
