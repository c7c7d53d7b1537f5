package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.SQLite.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the preview server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig holds the source vault and output tree locations.
//
//   - Source: the directory of markdown documents, with an optional
//     assets/ subtree of images.
//   - Output: the deployable site root. Converted posts land under
//     Output/blogs, organized images under Output/blogs/assets.
//   - Script: the front-end script receiving the generated metadata,
//     relative to Output.
type SiteConfig struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Script string `yaml:"script"`
}

// BlogsDir returns the directory of converted posts inside the output tree.
func (c *SiteConfig) BlogsDir() string {
	return filepath.Join(c.Output, "blogs")
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Script, validation.Required),
	); err != nil {
		return err
	}
	if filepath.IsAbs(c.Script) {
		return fmt.Errorf("site: script must be relative to the output dir: %s", c.Script)
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration for the post index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Source: "./blogs",
			Output: "./docs",
			Script: "js/blog.js",
		},
		SQLite: SQLiteConfig{
			Path: "./dagaz.db",
		},
	}
}
