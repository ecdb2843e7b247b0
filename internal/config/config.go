// Package config holds the process-wide settings of bucketbook.
//
// Defaults match the production layout (modelo.xlsx next to the binary,
// entity files under banco_de_dados_clientes). A YAML file overrides
// individual fields; unknown fields are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bucketbook/internal/ident"
	"github.com/roach88/bucketbook/internal/ingest"
)

// Config is the complete runtime configuration.
type Config struct {
	TemplateXLSX  string       `yaml:"template_xlsx"`
	TemplateXLS   string       `yaml:"template_xls"`
	LegacySheet   string       `yaml:"legacy_sheet"`
	OutputDir     string       `yaml:"output_dir"`
	UploadDir     string       `yaml:"upload_dir"`
	Listen        string       `yaml:"listen"`
	MaxKeyLength  int          `yaml:"max_key_length"`
	FailurePolicy string       `yaml:"failure_policy"`
	LockBuckets   bool         `yaml:"lock_buckets"`
	Journal       string       `yaml:"journal"`
	Schema        ident.Schema `yaml:"schema"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TemplateXLSX:  "modelo.xlsx",
		TemplateXLS:   "modelo.xls",
		LegacySheet:   "Modelo 1",
		OutputDir:     "banco_de_dados_clientes",
		UploadDir:     "arquivos_recebidos",
		Listen:        "0.0.0.0:8000",
		MaxKeyLength:  ident.DefaultMaxKeyLength,
		FailurePolicy: string(ingest.PolicyAbort),
		Schema:        ident.DefaultSchema(),
	}
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Load reads the YAML file at path over the defaults. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and the identifier schema.
func (c Config) Validate() error {
	var problems []string

	required := []struct{ name, value string }{
		{"template_xlsx", c.TemplateXLSX},
		{"template_xls", c.TemplateXLS},
		{"output_dir", c.OutputDir},
		{"upload_dir", c.UploadDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.name+" is required")
		}
	}
	if c.MaxKeyLength <= 0 {
		problems = append(problems, fmt.Sprintf("max_key_length must be positive, got %d", c.MaxKeyLength))
	}
	if _, err := ingest.ParseFailurePolicy(c.FailurePolicy); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.Schema.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			problems = append(problems, "schema: "+line)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Builder returns the identifier builder for this configuration.
func (c Config) Builder() (*ident.Builder, error) {
	return ident.NewBuilder(c.Schema, c.MaxKeyLength)
}

// Templates returns the template loader for this configuration.
func (c Config) Templates() *ingest.TemplateLoader {
	return &ingest.TemplateLoader{
		Modern:      c.TemplateXLSX,
		Legacy:      c.TemplateXLS,
		LegacySheet: c.LegacySheet,
	}
}

// Policy returns the parsed failure policy.
func (c Config) Policy() ingest.FailurePolicy {
	p, err := ingest.ParseFailurePolicy(c.FailurePolicy)
	if err != nil {
		return ingest.PolicyAbort
	}
	return p
}

// EnsureDirs creates the output and upload directories if absent.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.OutputDir, c.UploadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
