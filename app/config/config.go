package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Gemini  Gemini
	Resumes Resumes

	fs   vfs.FileSystem
	path string
}

// Gemini defines configuration options for the extraction model.
type Gemini struct {
	// Model is the Gemini model name used for resume extraction.
	Model sql.Null[string] `json:"model"`
}

// Resumes defines configuration options for resume ingestion.
type Resumes struct {
	// Dir is the directory scanned for resume documents.
	Dir sql.Null[string] `json:"dir"`
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Resumes.Dir.Valid {
		c.Resumes.Dir = sql.Null[string]{V: "resumes", Valid: true}
	}
}

type cfgWrapper struct {
	Gemini  geminiCfgWrapper  `json:"gemini"`
	Resumes resumesCfgWrapper `json:"resumes"`
}
type geminiCfgWrapper struct {
	Model string `json:"model,omitempty"`
}
type resumesCfgWrapper struct {
	Dir string `json:"dir,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Gemini.Model.Valid {
		w.Gemini.Model = c.Gemini.Model.V
	}
	if c.Resumes.Dir.Valid {
		w.Resumes.Dir = c.Resumes.Dir.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Gemini.Model != "" {
		c.Gemini.Model = sql.Null[string]{V: w.Gemini.Model, Valid: true}
	}
	if w.Resumes.Dir != "" {
		c.Resumes.Dir = sql.Null[string]{V: w.Resumes.Dir, Valid: true}
	}

	return nil
}
