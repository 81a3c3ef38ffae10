package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// FileNames lists the config file names checked in every directory, in
// priority order.
var FileNames = []string{
	"glslcheck.toml",
	"glslcheck.yaml",
	"glslcheck.yml",
	"glslcheck.json",
	"parcel-validator-glsl.config.json",
}

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the syntax from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%s: unsupported config format", path)
}

// LoadFile reads and type-checks one config file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 -- path comes from config discovery
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	raw, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromMap(raw, path)
}

// Decode parses data into a generic key/value map.
func Decode(data []byte, format Format) (map[string]any, error) {
	raw := map[string]any{}
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatYAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return raw, nil
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return raw, nil
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Encode writes cfg in the given syntax.
func Encode(w io.Writer, cfg *Config, format Format) error {
	out := *cfg
	if out.Exclude == nil {
		out.Exclude = []string{}
	}
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(out)
	case FormatYAML:
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported config format %q", format)
}
