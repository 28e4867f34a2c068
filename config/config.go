// Package config loads greet settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "greet.toml"

type Config struct {
	Parser ParserConfig `toml:"parser"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

type ParserConfig struct {
	MaxRecoveries int `toml:"max_recoveries"`

	// Tables names a binary table file to use instead of the built-in
	// greet tables. Relative paths are resolved against the config file.
	Tables string `toml:"tables"`
}

type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type ServerConfig struct {
	CacheSize int `toml:"cache_size"`
}

func Default() *Config {
	return &Config{
		Parser: ParserConfig{MaxRecoveries: parser.DefaultMaxRecoveries},
		Server: ServerConfig{CacheSize: 128},
	}
}

// Load reads the configuration at path over the defaults. With an empty
// path it tries FileName in the working directory and then in the user
// configuration directory, and falls back to the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, candidate := range searchPath() {
		c, err := loadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return c, err
	}
	return Default(), nil
}

func searchPath() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "greet", FileName))
	}
	return paths
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes TOML text over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("decode config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Parser.MaxRecoveries < 0 {
		return fmt.Errorf("parser.max_recoveries must not be negative, got %d", c.Parser.MaxRecoveries)
	}
	if c.Server.CacheSize <= 0 {
		return fmt.Errorf("server.cache_size must be positive, got %d", c.Server.CacheSize)
	}
	if c.Log.Verbosity < -4 || c.Log.Verbosity > 4 {
		return fmt.Errorf("log.verbosity must be between -4 and 4, got %d", c.Log.Verbosity)
	}
	return nil
}

func (c *Config) ParserOptions() []parser.Option {
	return []parser.Option{parser.WithMaxRecoveries(c.Parser.MaxRecoveries)}
}

// TablesPath returns the table file path resolved against the config file,
// or "" for the built-in tables.
func (c *Config) TablesPath() string {
	p := c.Parser.Tables
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// Language returns the configured tables.
func (c *Config) Language() (*parser.Language, error) {
	path := c.TablesPath()
	if path == "" {
		return greet.Language(), nil
	}
	return LoadTables(path)
}

// LoadTables reads and validates a binary table file.
func LoadTables(path string) (*parser.Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	lang, err := parser.UnmarshalLanguage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lang, nil
}
