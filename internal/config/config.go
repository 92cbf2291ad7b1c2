// Package config loads subedit settings from YAML and SUBEDIT_* environment
// variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "subedit.yaml"
	EnvPrefix = "SUBEDIT"
)

// providers understood by the condense command
var Providers = []string{"gemini", "openai", "anthropic"}

type Config struct {
	Playback Playback `mapstructure:"playback" yaml:"playback"`
	Condense Condense `mapstructure:"condense" yaml:"condense"`
	FFmpeg   FFmpeg   `mapstructure:"ffmpeg"   yaml:"ffmpeg"`
	Server   Server   `mapstructure:"server"   yaml:"server"`

	// file the values were read from, empty when only defaults applied
	path string
}

type Playback struct {
	Skip  time.Duration `mapstructure:"skip"  yaml:"skip"`
	Tick  time.Duration `mapstructure:"tick"  yaml:"tick"`
	Rates []float64     `mapstructure:"rates" yaml:"rates,flow"`
}

type Condense struct {
	Provider    string `mapstructure:"provider"    yaml:"provider"`
	Model       string `mapstructure:"model"       yaml:"model,omitempty"`
	APIKey      string `mapstructure:"api_key"     yaml:"api_key,omitempty"`
	MaxWidth    int    `mapstructure:"max_width"   yaml:"max_width"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	BatchSize   int    `mapstructure:"batch_size"  yaml:"batch_size"`
}

type FFmpeg struct {
	FFmpegPath  string `mapstructure:"ffmpeg_path"  yaml:"ffmpeg_path,omitempty"`
	FFprobePath string `mapstructure:"ffprobe_path" yaml:"ffprobe_path,omitempty"`
}

type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Playback: Playback{
			Skip:  15 * time.Second,
			Tick:  250 * time.Millisecond,
			Rates: []float64{0.5, 1, 1.5, 1.75, 2},
		},
		Condense: Condense{
			Provider:    "gemini",
			MaxWidth:    36,
			Concurrency: 4,
			BatchSize:   20,
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load reads path, or searches for subedit.yaml in the working directory and
// the user config dir when path is empty. A missing file is only an error
// when path was given explicitly. Environment variables override the file,
// e.g. SUBEDIT_CONDENSE_PROVIDER or SUBEDIT_SERVER_ADDR.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "subedit"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.path = v.ConfigFileUsed()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of the defaults, without environment
// overrides.
func Parse(data []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// every key needs a default so AutomaticEnv can see it during Unmarshal
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("playback.skip", d.Playback.Skip)
	v.SetDefault("playback.tick", d.Playback.Tick)
	v.SetDefault("playback.rates", d.Playback.Rates)
	v.SetDefault("condense.provider", d.Condense.Provider)
	v.SetDefault("condense.model", d.Condense.Model)
	v.SetDefault("condense.api_key", d.Condense.APIKey)
	v.SetDefault("condense.max_width", d.Condense.MaxWidth)
	v.SetDefault("condense.concurrency", d.Condense.Concurrency)
	v.SetDefault("condense.batch_size", d.Condense.BatchSize)
	v.SetDefault("ffmpeg.ffmpeg_path", d.FFmpeg.FFmpegPath)
	v.SetDefault("ffmpeg.ffprobe_path", d.FFmpeg.FFprobePath)
	v.SetDefault("server.addr", d.Server.Addr)
}

func (c *Config) normalize() {
	c.Condense.Provider = strings.ToLower(strings.TrimSpace(c.Condense.Provider))
	c.Condense.Model = strings.TrimSpace(c.Condense.Model)
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
}

// Path reports the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Validate() error {
	if c.Playback.Skip <= 0 {
		return fmt.Errorf("playback.skip must be positive, got %s", c.Playback.Skip)
	}
	if c.Playback.Tick <= 0 {
		return fmt.Errorf("playback.tick must be positive, got %s", c.Playback.Tick)
	}
	if len(c.Playback.Rates) == 0 {
		return fmt.Errorf("playback.rates must not be empty")
	}
	for _, r := range c.Playback.Rates {
		if r <= 0 {
			return fmt.Errorf("playback.rates must be positive, got %v", r)
		}
	}

	if !knownProvider(c.Condense.Provider) {
		return fmt.Errorf(
			"unknown condense.provider %q (expected one of %s)",
			c.Condense.Provider,
			strings.Join(Providers, ", "),
		)
	}
	if c.Condense.MaxWidth <= 0 {
		return fmt.Errorf("condense.max_width must be positive, got %d", c.Condense.MaxWidth)
	}
	if c.Condense.Concurrency <= 0 {
		return fmt.Errorf("condense.concurrency must be positive, got %d", c.Condense.Concurrency)
	}
	if c.Condense.BatchSize <= 0 {
		return fmt.Errorf("condense.batch_size must be positive, got %d", c.Condense.BatchSize)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

func knownProvider(p string) bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Write stores cfg as YAML at path, creating parent directories. The API key
// is never written.
func Write(path string, cfg *Config) error {
	out := *cfg
	out.Condense.APIKey = ""

	var buf bytes.Buffer
	buf.WriteString("# subedit configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
