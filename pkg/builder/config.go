package builder

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file LoadConfig reads when given an empty path.
const DefaultConfigFile = "ssr.config.yaml"

// Config describes the development build.
//
//	output: ./dist
//	public_path: /dist/
//	command: [npm, run, watch]
//	debounce: 150ms
type Config struct {
	// Output is the directory the bundler writes artifacts to.
	Output string `yaml:"output"`

	// PublicPath is the URL prefix client assets are served under.
	PublicPath string `yaml:"public_path"`

	// ReloadPath is where live-reload clients connect. The client script is
	// served at ReloadPath + ".js".
	ReloadPath string `yaml:"reload_path"`

	// Dir is the working directory of Command.
	Dir string `yaml:"dir"`

	// Command optionally starts the bundler in watch mode.
	Command []string `yaml:"command"`

	// Debounce groups bursts of file events into one rebuild.
	Debounce time.Duration `yaml:"debounce"`

	// PollInterval is how often the output directory is checked before the
	// first build.
	PollInterval time.Duration `yaml:"poll_interval"`

	// StartTimeout bounds the wait for the first build. Zero waits forever.
	StartTimeout time.Duration `yaml:"start_timeout"`
}

// DefaultConfig returns the configuration used for missing fields.
func DefaultConfig() Config {
	return Config{
		Output:       "./dist",
		PublicPath:   "/dist/",
		ReloadPath:   "/__ssr/reload",
		Debounce:     150 * time.Millisecond,
		PollInterval: 250 * time.Millisecond,
	}
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.PublicPath == "" {
		c.PublicPath = d.PublicPath
	}
	if !strings.HasPrefix(c.PublicPath, "/") {
		c.PublicPath = "/" + c.PublicPath
	}
	if !strings.HasSuffix(c.PublicPath, "/") {
		c.PublicPath += "/"
	}
	if c.ReloadPath == "" {
		c.ReloadPath = d.ReloadPath
	}
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	return c
}
