// Package config loads pious settings from pious.yaml, the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/pious/pkg/adapters/process"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/protocol"
	"github.com/aretw0/pious/pkg/session"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "PIOUS_"

// Pio locates the PioSOLVER installation.
type Pio struct {
	InstallDirectory string `yaml:"install_directory"`
	VersionNo        string `yaml:"version_no"`
	VersionType      string `yaml:"version_type"`
	VersionSuffix    string `yaml:"version_suffix"`
	// Executable overrides the name derived from the version fields.
	Executable string `yaml:"executable"`
}

// SolverName is PioSOLVER{no}-{type}[-{suffix}].
func (p Pio) SolverName() string {
	name := fmt.Sprintf("PioSOLVER%s-%s", p.VersionNo, p.VersionType)
	if p.VersionSuffix != "" {
		name += "-" + p.VersionSuffix
	}
	return name
}

// ViewerName is PioViewer{no}.
func (p Pio) ViewerName() string {
	return "PioViewer" + p.VersionNo
}

// SolverPath is the full path of the solver executable.
func (p Pio) SolverPath() string {
	if p.Executable != "" {
		if filepath.IsAbs(p.Executable) {
			return p.Executable
		}
		return filepath.Join(p.InstallDirectory, p.Executable)
	}
	return filepath.Join(p.InstallDirectory, p.SolverName()+".exe")
}

// ViewerPath is the full path of the viewer executable.
func (p Pio) ViewerPath() string {
	return filepath.Join(p.InstallDirectory, p.ViewerName()+".exe")
}

// Engine tunes the solver session.
type Engine struct {
	Args           []string          `yaml:"args"`
	Env            map[string]string `yaml:"env"`
	Startup        []string          `yaml:"startup"`
	CommandTimeout time.Duration     `yaml:"command_timeout"`
	StartTimeout   time.Duration     `yaml:"start_timeout"`
	GracePeriod    time.Duration     `yaml:"grace_period"`
}

// GrammarRule is an extra line token rule.
type GrammarRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Class   string `yaml:"class"`
}

// Store selects the shared tree info store.
type Store struct {
	RedisAddr string `yaml:"redis_addr"`
	Prefix    string `yaml:"prefix"`
}

// Server configures `pious serve` and `pious mcp`.
type Server struct {
	Addr     string `yaml:"addr"`
	PoolSize int    `yaml:"pool_size"`
	Tree     string `yaml:"tree"`
}

// Config is the resolved configuration.
type Config struct {
	Pio     Pio             `yaml:"pio"`
	Engine  Engine          `yaml:"engine"`
	Tokens  protocol.Tokens `yaml:"tokens"`
	Grammar []GrammarRule   `yaml:"grammar"`
	Store   Store           `yaml:"store"`
	Server  Server          `yaml:"server"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	defaults := session.DefaultConfig("")
	return Config{
		Pio: Pio{
			InstallDirectory: `C:\PioSOLVER`,
			VersionNo:        "3",
			VersionType:      "edge",
		},
		Engine: Engine{
			CommandTimeout: defaults.CommandTimeout,
			StartTimeout:   defaults.StartTimeout,
			GracePeriod:    defaults.GracePeriod,
		},
		Server: Server{
			Addr:     ":8080",
			PoolSize: 1,
		},
	}
}

// DefaultPath is ~/.config/pious/pious.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pious", "pious.yaml")
}

// Load reads path (DefaultPath when empty), then applies .env and PIOUS_*
// environment variables. A missing default file is not an error; a missing
// explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			cfg.Source = path
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"INSTALL_DIR":    &c.Pio.InstallDirectory,
		"VERSION_NO":     &c.Pio.VersionNo,
		"VERSION_TYPE":   &c.Pio.VersionType,
		"VERSION_SUFFIX": &c.Pio.VersionSuffix,
		"EXECUTABLE":     &c.Pio.Executable,
		"REDIS_ADDR":     &c.Store.RedisAddr,
		"ADDR":           &c.Server.Addr,
		"TREE":           &c.Server.Tree,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"COMMAND_TIMEOUT": &c.Engine.CommandTimeout,
		"START_TIMEOUT":   &c.Engine.StartTimeout,
	}
	for key, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "POOL_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPOOL_SIZE: %w", EnvPrefix, err)
		}
		c.Server.PoolSize = n
	}
	return nil
}

// LineGrammar is the default grammar extended with the configured rules.
func (c Config) LineGrammar() (*line.Grammar, error) {
	if len(c.Grammar) == 0 {
		return line.DefaultGrammar(), nil
	}
	rules := make([]line.Rule, 0, len(c.Grammar))
	for _, r := range c.Grammar {
		rule, err := line.CompileRule(r.Name, r.Pattern, line.Class(r.Class))
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return line.DefaultGrammar().With(rules...)
}

// Session converts the configuration into a session.Config.
func (c Config) Session() session.Config {
	cfg := session.DefaultConfig(c.Pio.SolverPath())
	cfg.Process = process.Config{
		Executable: c.Pio.SolverPath(),
		Args:       c.Engine.Args,
		Dir:        c.Pio.InstallDirectory,
		Env:        c.Engine.Env,
	}
	cfg.Tokens = cfg.Tokens.Merge(c.Tokens)
	if len(c.Engine.Startup) > 0 {
		cfg.Startup = make([]protocol.Command, 0, len(c.Engine.Startup))
		for _, raw := range c.Engine.Startup {
			fields := strings.Fields(raw)
			if len(fields) == 0 {
				continue
			}
			cfg.Startup = append(cfg.Startup, protocol.NewCommand(fields[0], fields[1:]...))
		}
	}
	if c.Engine.CommandTimeout > 0 {
		cfg.CommandTimeout = c.Engine.CommandTimeout
	}
	if c.Engine.StartTimeout > 0 {
		cfg.StartTimeout = c.Engine.StartTimeout
	}
	if c.Engine.GracePeriod > 0 {
		cfg.GracePeriod = c.Engine.GracePeriod
	}
	return cfg
}
