// internal/config/config.go
//
// This package handles configuration and the .tasks directory structure.
// The task list itself is never written here; only UI preferences and logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// TasksDir is the name of the directory we create in the working directory
	TasksDir = ".tasks"

	defaultTitle       = "Task Manager"
	defaultPlaceholder = "Enter task..."
	defaultCharLimit   = 256
	defaultLogFile     = "logs/tasks.log"
	defaultPanelLines  = 4
)

const defaultProjectConfigYAML = `# task manager configuration
version: 1

# Heading shown at the top of the screen.
title: Task Manager

form:
  placeholder: Enter task...
  # Maximum characters accepted by the add form and edit fields (0 = unlimited).
  char_limit: 256

editing:
  # When false, saving a blank edit is rejected and the old name is kept.
  allow_empty_names: true

log:
  enabled: true
  # Relative paths resolve against the .tasks directory.
  file: logs/tasks.log
  # Number of recent log lines shown under the task columns (0 hides the panel).
  panel_lines: 4
`

// FormConfig configures the add form and edit fields.
type FormConfig struct {
	Placeholder string `yaml:"placeholder"`
	CharLimit   int    `yaml:"char_limit"`
}

// EditingConfig captures the rename policy.
type EditingConfig struct {
	AllowEmptyNames bool `yaml:"allow_empty_names"`
}

// LogConfig controls the logbook.
type LogConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	File       string `yaml:"file"`
	PanelLines int    `yaml:"panel_lines"`
}

// ProjectConfig models .tasks/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Title   string        `yaml:"title"`
	Form    FormConfig    `yaml:"form"`
	Editing EditingConfig `yaml:"editing"`
	Log     LogConfig     `yaml:"log"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the binary was started from
	ProjectDir string

	// TasksProjectDir is ProjectDir/.tasks
	TasksProjectDir string

	Project ProjectConfig

	// logFile is log.file as written in config.yaml, before resolving
	logFile string
}

// InitTasksDir creates the .tasks directory structure in the given directory.
//
// Structure created:
// .tasks/
// ├── config.yaml
// └── logs/
func InitTasksDir(projectDir string) error {
	tasksDir := filepath.Join(projectDir, TasksDir)
	if err := os.MkdirAll(filepath.Join(tasksDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(tasksDir, "config.yaml"))
}

// NewConfig creates a new Config populated from .tasks/config.yaml when present.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		TasksProjectDir: filepath.Join(projectDir, TasksDir),
		Project:         defaultProjectConfig(),
		logFile:         defaultLogFile,
	}
	cfg.Project.normalize(cfg.TasksProjectDir)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns an in-memory configuration with logging turned off. It
// touches no files.
func Defaults() *Config {
	disabled := false
	cfg := &Config{Project: defaultProjectConfig()}
	cfg.Project.Log.Enabled = &disabled
	return cfg
}

// ProjectConfigPath returns the on-disk location for the config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.TasksProjectDir, "config.yaml")
}

// Title returns the heading to render.
func (c *Config) Title() string {
	return c.Project.Title
}

// LogEnabled reports whether the logbook should be opened.
func (c *Config) LogEnabled() bool {
	return c.Project.Log.Enabled == nil || *c.Project.Log.Enabled
}

// LogPath returns the absolute logbook path.
func (c *Config) LogPath() string {
	return c.Project.Log.File
}

// AllowEmptyNames returns the rename policy.
func (c *Config) AllowEmptyNames() bool {
	return c.Project.Editing.AllowEmptyNames
}

// SetAllowEmptyNames updates the rename policy and persists it back to
// .tasks/config.yaml. An in-memory config from Defaults is only updated.
func (c *Config) SetAllowEmptyNames(allow bool) error {
	c.Project.Editing.AllowEmptyNames = allow
	if c.TasksProjectDir == "" {
		return nil
	}
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	logFile := strings.TrimSpace(parsed.Log.File)
	parsed.normalize(c.TasksProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	c.logFile = logFile
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	pc.Log.PanelLines = defaultPanelLines
	pc.Form.CharLimit = defaultCharLimit
	pc.Editing.AllowEmptyNames = true
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Title) == "" {
		pc.Title = defaultTitle
	}
	if strings.TrimSpace(pc.Form.Placeholder) == "" {
		pc.Form.Placeholder = defaultPlaceholder
	}
	if strings.TrimSpace(pc.Log.File) == "" {
		pc.Log.File = defaultLogFile
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Title = strings.TrimSpace(pc.Title)
	pc.Form.Placeholder = strings.TrimSpace(pc.Form.Placeholder)
	pc.Log.File = resolvePath(base, pc.Log.File)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Form.CharLimit < 0 {
		return fmt.Errorf("form.char_limit must be >= 0")
	}
	if pc.Log.PanelLines < 0 {
		return fmt.Errorf("log.panel_lines must be >= 0")
	}
	if pc.Log.File == "" {
		return fmt.Errorf("log.file is required")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.TasksProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.TasksProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure tasks dir: %w", err)
	}
	out := c.Project
	if c.logFile != "" {
		out.Log.File = c.logFile
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
