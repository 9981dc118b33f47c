package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// LogLevel defines the minimum severity for log output.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// Defaults applied by ApplyDefaults when the corresponding option is absent.
const (
	DefaultBindHost       = "0.0.0.0"
	DefaultMaxHeaderBytes = 8192
	DefaultServerName     = "sfws/1.0"
)

// DefaultCandidatePorts is the ordered port list raced at startup when the
// configuration does not name one.
var DefaultCandidatePorts = []int{9000, 9001, 9002, 9003, 9004, 9005}

// Environment variables recognized as overrides after file decode. A .env
// file in the working directory is loaded first, if present.
const (
	EnvBindHost     = "SFWS_BIND_HOST"
	EnvDocumentRoot = "SFWS_DOCUMENT_ROOT"
)

// Config is the top-level configuration for the server. It is constructed
// once at startup, validated, and passed down read-only; no component
// mutates it afterwards.
type Config struct {
	Server    ServerConfig      `json:"server" toml:"server"`
	Logging   LoggingConfig     `json:"logging" toml:"logging"`
	MimeTypes map[string]string `json:"mime_types,omitempty" toml:"mime_types,omitempty"`
}

// ServerConfig holds the startup surface: where to bind, which ports to race,
// and what to serve.
type ServerConfig struct {
	// Name is the token emitted in the Server response header.
	Name string `json:"name,omitempty" toml:"name,omitempty"`
	// BindHost is the interface the listener race binds on.
	BindHost string `json:"bind_host,omitempty" toml:"bind_host,omitempty"`
	// CandidatePorts is the ordered list of ports tried concurrently at
	// startup; the first one to pass its self-test wins.
	CandidatePorts []int `json:"candidate_ports,omitempty" toml:"candidate_ports,omitempty"`
	// DocumentRoot is the directory all served paths are confined to.
	// Resolved to an absolute, symlink-free path during validation.
	DocumentRoot string `json:"document_root,omitempty" toml:"document_root,omitempty"`
	// MaxHeaderBytes bounds how many raw header bytes a connection may send
	// before the terminator; exceeding it yields a 431.
	MaxHeaderBytes int `json:"max_header_bytes,omitempty" toml:"max_header_bytes,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  LogLevel `json:"level,omitempty" toml:"level,omitempty"`
	Format string   `json:"format,omitempty" toml:"format,omitempty"` // "console" or "json"
	Target string   `json:"target,omitempty" toml:"target,omitempty"` // "stderr", "stdout", or a file path
}

// ConfigError describes a configuration problem tied to a file or field.
type ConfigError struct {
	FilePath string
	Message  string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("config %s: %s: %v", e.FilePath, e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Message, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Default returns a Config with every option at its default value. The
// document root defaults to the current working directory and still needs
// Validate before use.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:           DefaultServerName,
			BindHost:       DefaultBindHost,
			CandidatePorts: append([]int(nil), DefaultCandidatePorts...),
			DocumentRoot:   ".",
			MaxHeaderBytes: DefaultMaxHeaderBytes,
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: "console",
			Target: "stderr",
		},
	}
}

// Load reads a configuration file (TOML or JSON, chosen by extension),
// overlays environment overrides, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{FilePath: path, Message: "failed to read configuration file", Err: err}
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{FilePath: path, Message: "failed to parse JSON configuration", Err: err}
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{FilePath: path, Message: "failed to parse TOML configuration", Err: err}
		}
	}

	ApplyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays SFWS_* environment variables onto cfg. A .env
// file in the working directory is merged into the environment first; a
// missing .env is not an error.
func ApplyEnvOverrides(cfg *Config) {
	if _, err := os.Stat(".env"); err == nil {
		// godotenv never overwrites variables already set in the environment.
		_ = godotenv.Load()
	}
	if v := os.Getenv(EnvBindHost); v != "" {
		cfg.Server.BindHost = v
	}
	if v := os.Getenv(EnvDocumentRoot); v != "" {
		cfg.Server.DocumentRoot = v
	}
}

// ApplyDefaults fills in every unset option.
func (c *Config) ApplyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = DefaultServerName
	}
	if c.Server.BindHost == "" {
		c.Server.BindHost = DefaultBindHost
	}
	if len(c.Server.CandidatePorts) == 0 {
		c.Server.CandidatePorts = append([]int(nil), DefaultCandidatePorts...)
	}
	if c.Server.DocumentRoot == "" {
		c.Server.DocumentRoot = "."
	}
	if c.Server.MaxHeaderBytes == 0 {
		c.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Target == "" {
		c.Logging.Target = "stderr"
	}
}

// Validate checks option ranges and resolves DocumentRoot to its canonical
// absolute form (symlinks included). The resolved root is what the path
// resolver's containment check is anchored to, so it is computed here, once,
// and never recomputed per request.
func (c *Config) Validate() error {
	if len(c.Server.CandidatePorts) == 0 {
		return &ConfigError{Message: "candidate_ports must name at least one port", Err: fmt.Errorf("empty list")}
	}
	for _, p := range c.Server.CandidatePorts {
		if p < 1 || p > 65535 {
			return &ConfigError{Message: "candidate_ports entries must be in 1..65535", Err: fmt.Errorf("port %d", p)}
		}
	}
	if c.Server.MaxHeaderBytes < 1 {
		return &ConfigError{Message: "max_header_bytes must be positive", Err: fmt.Errorf("got %d", c.Server.MaxHeaderBytes)}
	}

	abs, err := filepath.Abs(c.Server.DocumentRoot)
	if err != nil {
		return &ConfigError{Message: "document_root could not be made absolute", Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return &ConfigError{Message: "document_root could not be resolved", Err: err}
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return &ConfigError{Message: "document_root is not accessible", Err: err}
	}
	if !fi.IsDir() {
		return &ConfigError{Message: "document_root is not a directory", Err: fmt.Errorf("%s", resolved)}
	}
	c.Server.DocumentRoot = resolved

	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return &ConfigError{Message: "logging.level must be DEBUG, INFO, WARNING or ERROR", Err: fmt.Errorf("got %q", c.Logging.Level)}
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return &ConfigError{Message: "logging.format must be console or json", Err: fmt.Errorf("got %q", c.Logging.Format)}
	}
	return nil
}

// IsFilePath reports whether a logging target names a file rather than one of
// the standard streams.
func IsFilePath(target string) bool {
	return target != "stdout" && target != "stderr"
}
