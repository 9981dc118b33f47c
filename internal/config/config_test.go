package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTempFile creates a temporary config file with the given content and
// extension, removed automatically at test end.
func writeTempFile(t *testing.T, content string, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-config"+ext)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func checkErrorContains(t *testing.T, err error, expectedSubstring string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected an error containing %q, but got nil", expectedSubstring)
	}
	if !strings.Contains(err.Error(), expectedSubstring) {
		t.Fatalf("Expected error message to contain %q, but got: %v", expectedSubstring, err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	checkErrorContains(t, err, "configuration file path cannot be empty")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	checkErrorContains(t, err, "failed to read configuration file")
}

func TestLoad_TOML(t *testing.T) {
	root := t.TempDir()
	content := `
[server]
name = "testsrv/0.1"
bind_host = "127.0.0.1"
candidate_ports = [9100, 9101]
document_root = "` + root + `"
max_header_bytes = 4096

[logging]
level = "DEBUG"
format = "json"
target = "stderr"

[mime_types]
".foo" = "application/x-foo"
`
	cfg, err := Load(writeTempFile(t, content, ".toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Name != "testsrv/0.1" {
		t.Errorf("Name = %q, want testsrv/0.1", cfg.Server.Name)
	}
	if cfg.Server.BindHost != "127.0.0.1" {
		t.Errorf("BindHost = %q", cfg.Server.BindHost)
	}
	if len(cfg.Server.CandidatePorts) != 2 || cfg.Server.CandidatePorts[0] != 9100 {
		t.Errorf("CandidatePorts = %v", cfg.Server.CandidatePorts)
	}
	if cfg.Server.MaxHeaderBytes != 4096 {
		t.Errorf("MaxHeaderBytes = %d", cfg.Server.MaxHeaderBytes)
	}
	if cfg.Logging.Level != LogLevelDebug {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
	if cfg.MimeTypes[".foo"] != "application/x-foo" {
		t.Errorf("MimeTypes = %v", cfg.MimeTypes)
	}
}

func TestLoad_JSON(t *testing.T) {
	root := t.TempDir()
	content := `{"server": {"document_root": ` + jsonQuote(root) + `, "candidate_ports": [9200]}}`
	cfg, err := Load(writeTempFile(t, content, ".json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Server.CandidatePorts) != 1 || cfg.Server.CandidatePorts[0] != 9200 {
		t.Errorf("CandidatePorts = %v", cfg.Server.CandidatePorts)
	}
	// Unset options take defaults.
	if cfg.Server.BindHost != DefaultBindHost {
		t.Errorf("BindHost = %q, want default", cfg.Server.BindHost)
	}
	if cfg.Server.MaxHeaderBytes != DefaultMaxHeaderBytes {
		t.Errorf("MaxHeaderBytes = %d, want default", cfg.Server.MaxHeaderBytes)
	}
}

func jsonQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func TestLoad_MalformedTOML(t *testing.T) {
	_, err := Load(writeTempFile(t, "[server\nname=", ".toml"))
	checkErrorContains(t, err, "failed to parse TOML configuration")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := Default()
	cfg.Server.DocumentRoot = t.TempDir()
	cfg.Server.CandidatePorts = []int{0}
	checkErrorContains(t, cfg.Validate(), "candidate_ports entries must be in 1..65535")

	cfg.Server.CandidatePorts = []int{70000}
	checkErrorContains(t, cfg.Validate(), "candidate_ports entries must be in 1..65535")
}

func TestValidate_RootMustBeDirectory(t *testing.T) {
	file := writeTempFile(t, "not a dir", ".txt")
	cfg := Default()
	cfg.Server.DocumentRoot = file
	checkErrorContains(t, cfg.Validate(), "document_root is not a directory")
}

func TestValidate_ResolvesRootSymlinks(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg := Default()
	cfg.Server.DocumentRoot = link
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	resolvedReal, err := filepath.EvalSymlinks(real)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.DocumentRoot != resolvedReal {
		t.Errorf("DocumentRoot = %q, want %q", cfg.Server.DocumentRoot, resolvedReal)
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Server.DocumentRoot = t.TempDir()
	cfg.Logging.Level = "TRACE"
	checkErrorContains(t, cfg.Validate(), "logging.level must be")
}

func TestApplyEnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvBindHost, "10.0.0.5")
	t.Setenv(EnvDocumentRoot, root)

	cfg := Default()
	ApplyEnvOverrides(cfg)
	if cfg.Server.BindHost != "10.0.0.5" {
		t.Errorf("BindHost = %q", cfg.Server.BindHost)
	}
	if cfg.Server.DocumentRoot != root {
		t.Errorf("DocumentRoot = %q", cfg.Server.DocumentRoot)
	}
}
