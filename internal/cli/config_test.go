package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Source.Kind != "file" {
		t.Errorf("Source.Kind = %q, want file", cfg.Source.Kind)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if !cfg.Server.MetricsEnabled() {
		t.Error("metrics should default to enabled")
	}
	if cfg.Source.RelationsCollection != "workflow_relations" {
		t.Errorf("RelationsCollection = %q", cfg.Source.RelationsCollection)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[render]
locale = "zh"
show_labels = true

[source]
kind = "mongo"
uri = "mongodb://localhost:27017"
database = "scheduler"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[server]
addr = ":9000"
read_timeout = "3s"
metrics = false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Render.Locale != "zh" || !cfg.Render.ShowLabels {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Source.Database != "scheduler" {
		t.Errorf("Source.Database = %q", cfg.Source.Database)
	}
	if cfg.Cache.RedisDB != 2 || cfg.Cache.RedisPrefix != "kinship:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v, want 3s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MetricsEnabled() {
		t.Error("metrics = false should disable metrics")
	}

	sc := cfg.sourceConfig()
	if sc.URI != "mongodb://localhost:27017" || sc.Collections.Workflows != "workflows" {
		t.Errorf("sourceConfig() = %+v", sc)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
		want    kerrors.Code
	}{
		{"bad toml", `[render`, kerrors.ErrCodeInvalidConfig},
		{"unknown key", "[render]\ncolour = \"red\"", kerrors.ErrCodeInvalidConfig},
		{"bad locale", "[render]\nlocale = \"!!\"", kerrors.ErrCodeInvalidConfig},
		{"bad kind", "[source]\nkind = \"mysql\"", kerrors.ErrCodeInvalidConfig},
		{"mongo without uri", "[source]\nkind = \"mongo\"", kerrors.ErrCodeInvalidConfig},
		{"mongo bad scheme", "[source]\nkind = \"mongo\"\nuri = \"http://x\"", kerrors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"disk\"", kerrors.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"", kerrors.ErrCodeInvalidConfig},
		{"negative timeout", "[server]\nread_timeout = \"-1s\"", kerrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if got := kerrors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !kerrors.Is(err, kerrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
