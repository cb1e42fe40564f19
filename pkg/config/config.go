// Package config handles .techtree/config.yaml and the .techtree directory
// every project gets in its root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory created in each project
	Dir = ".techtree"

	// FileName is the config file inside Dir
	FileName = "config.yaml"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

const defaultConfigYAML = `# techtree project configuration

# Where plan files (*.yaml, *.yml, *.jsonl) are read from, relative to the project.
plans_dir: plans

# SQLite file holding collapsed plans and other view state.
state_db: .techtree/state/view.db

# debug, info, warn or error. Logs go to .techtree/logs/techtree.log
log_level: info

layout:
  node_width: 26
  column_gap: 8
  row_gap: 1

view:
  group_mode: true
  hide_finished: false

# Command run when a PR is activated with enter. Go template fields:
# .ID .Title .Branch .Group .URL
activate:
  command: ""
  timeout: 30s

watch:
  debounce: 300ms
`

// Duration is a time.Duration written as "30s" in YAML
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LayoutConfig sizes the tree boxes
type LayoutConfig struct {
	NodeWidth int `yaml:"node_width"`
	ColumnGap int `yaml:"column_gap"`
	RowGap    int `yaml:"row_gap"`
}

// ViewConfig holds the initial view toggles
type ViewConfig struct {
	GroupMode    bool `yaml:"group_mode"`
	HideFinished bool `yaml:"hide_finished"`
}

// ActivateConfig configures the enter hook
type ActivateConfig struct {
	Command string   `yaml:"command"`
	Timeout Duration `yaml:"timeout"`
}

// WatchConfig configures live reload
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Config models .techtree/config.yaml
type Config struct {
	PlansDir string         `yaml:"plans_dir"`
	StateDB  string         `yaml:"state_db"`
	LogLevel string         `yaml:"log_level"`
	Layout   LayoutConfig   `yaml:"layout"`
	View     ViewConfig     `yaml:"view"`
	Activate ActivateConfig `yaml:"activate"`
	Watch    WatchConfig    `yaml:"watch"`

	// ProjectDir is where the .techtree directory lives. Not persisted.
	ProjectDir string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() Config {
	var c Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &c); err != nil {
		panic(fmt.Sprintf("config: bad default config: %v", err))
	}
	return c
}

// InitDir creates the .techtree directory structure and a default config
// file when none exists.
//
// Structure created:
// .techtree/
// ├── config.yaml
// ├── logs/
// └── state/
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	for _, dir := range []string{root, filepath.Join(root, "logs"), filepath.Join(root, "state")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Load reads the project config, falling back to defaults for a missing file
// or missing keys
func Load(projectDir string) (*Config, error) {
	c := Default()
	c.ProjectDir = projectDir

	path := c.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &c, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the config back to .techtree/config.yaml
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.Path()), 0755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", c.Path(), err)
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.PlansDir) == "" {
		problems = append(problems, "plans_dir is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Layout.NodeWidth < 8 {
		problems = append(problems, "layout.node_width must be >= 8")
	}
	if c.Layout.ColumnGap < 3 {
		problems = append(problems, "layout.column_gap must be >= 3")
	}
	if c.Layout.RowGap < 0 {
		problems = append(problems, "layout.row_gap must be >= 0")
	}
	if c.Activate.Timeout < 0 {
		problems = append(problems, "activate.timeout must not be negative")
	}
	if c.Watch.Debounce < 0 {
		problems = append(problems, "watch.debounce must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) normalize() {
	c.PlansDir = strings.TrimSpace(c.PlansDir)
	c.StateDB = strings.TrimSpace(c.StateDB)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Activate.Command = strings.TrimSpace(c.Activate.Command)
}

// Path returns the on-disk location of the config file
func (c *Config) Path() string {
	return filepath.Join(c.ProjectDir, Dir, FileName)
}

// LogsDir returns the directory log files are written to
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProjectDir, Dir, "logs")
}

// PlansPath resolves plans_dir against the project directory
func (c *Config) PlansPath() string {
	return resolvePath(c.ProjectDir, c.PlansDir)
}

// StateDBPath resolves state_db against the project directory
func (c *Config) StateDBPath() string {
	return resolvePath(c.ProjectDir, c.StateDB)
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
