package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultGracePeriod is how long Stop waits for the engine to exit on its own
// before killing it.
const DefaultGracePeriod = 5 * time.Second

// Config describes how to launch the engine.
type Config struct {
	Executable string            `yaml:"executable" json:"executable"`
	Args       []string          `yaml:"args" json:"args"`
	Dir        string            `yaml:"dir" json:"dir"`
	Env        map[string]string `yaml:"env" json:"env"`
}

// Path resolves the executable against Dir when it is relative.
func (c Config) Path() string {
	if c.Executable == "" || filepath.IsAbs(c.Executable) || c.Dir == "" {
		return c.Executable
	}
	return filepath.Join(c.Dir, c.Executable)
}

// WorkDir is the directory the engine runs in: Dir, or the executable's
// directory when Dir is empty.
func (c Config) WorkDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	if filepath.IsAbs(c.Executable) {
		return filepath.Dir(c.Executable)
	}
	return ""
}

// Validate checks that the executable exists and is a regular file.
func (c Config) Validate() error {
	if c.Executable == "" {
		return errors.New("no engine executable configured")
	}
	path := c.Path()
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("engine executable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("engine executable %s is a directory", path)
	}
	return nil
}
