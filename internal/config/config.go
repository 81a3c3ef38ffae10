// Package config resolves per-project validator settings.
//
// Settings live in glslcheck.toml, glslcheck.yaml/.yml, glslcheck.json or the
// legacy parcel-validator-glsl.config.json, searched from the shader's
// directory up to the project root. The nearest file wins; its values are
// laid over the defaults and type-checked before any validator runs.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"glslcheck/internal/augment"
	"glslcheck/internal/glslang"
)

// Recognised keys.
const (
	KeyExclude          = "exclude"
	KeyGLSLVersion      = "glslVersion"
	KeyCommandArguments = "commandArguments"
	KeyThreeIntegration = "threeIntegration"
	KeyCSMIntegration   = "csmIntegration"
)

// DefaultGLSLVersion is used when a shader has no #version directive.
const DefaultGLSLVersion = 110

// Config is the resolved configuration for one directory.
type Config struct {
	Exclude          []string `toml:"exclude" yaml:"exclude" json:"exclude"`
	GLSLVersion      int      `toml:"glslVersion" yaml:"glslVersion" json:"glslVersion"`
	CommandArguments string   `toml:"commandArguments" yaml:"commandArguments" json:"commandArguments"`
	ThreeIntegration bool     `toml:"threeIntegration" yaml:"threeIntegration" json:"threeIntegration"`
	CSMIntegration   bool     `toml:"csmIntegration" yaml:"csmIntegration" json:"csmIntegration"`

	// Source is the file the values came from; empty for pure defaults.
	Source string `toml:"-" yaml:"-" json:"source,omitempty"`
	// Unknown lists keys present in Source that glslcheck does not recognise.
	Unknown []string `toml:"-" yaml:"-" json:"unknown,omitempty"`

	globs []glob.Glob
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Exclude:     []string{},
		GLSLVersion: DefaultGLSLVersion,
	}
}

// ConfigError reports an option with the wrong shape.
type ConfigError struct {
	Path   string // config file, may be empty
	Key    string
	Type   string // expected type, e.g. "boolean"
	Reason string // overrides the "must be a" wording when set
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("glslcheck config - %s %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("glslcheck config - %s must be a %s", e.Key, e.Type)
}

// Excluded reports whether relPath (relative to the project root) matches an
// exclude pattern. Patterns use '/' as separator and support "**".
func (c *Config) Excluded(relPath string) bool {
	p := filepath.ToSlash(relPath)
	p = strings.TrimPrefix(p, "./")
	for _, g := range c.globs {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// Integrations returns the snippet sets in insertion order.
func (c *Config) Integrations() []augment.Integration {
	return []augment.Integration{
		{Name: augment.IntegrationThree, Enabled: c.ThreeIntegration},
		{Name: augment.IntegrationCSM, Enabled: c.CSMIntegration},
	}
}

// AugmentOptions builds the augmenter options for this configuration.
func (c *Config) AugmentOptions() augment.Options {
	return augment.Options{
		GLSLVersion:  c.GLSLVersion,
		Integrations: c.Integrations(),
	}
}

// Fingerprint is a stable description of every option that can change
// validation output. Exclude patterns are not part of it.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("v=%d;args=%q;three=%t;csm=%t",
		c.GLSLVersion, c.CommandArguments, c.ThreeIntegration, c.CSMIntegration)
}

func (c *Config) compile() error {
	c.globs = c.globs[:0]
	for _, pattern := range c.Exclude {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return &ConfigError{
				Path:   c.Source,
				Key:    KeyExclude,
				Type:   "string[]",
				Reason: fmt.Sprintf("has an invalid glob pattern %q: %v", pattern, err),
			}
		}
		c.globs = append(c.globs, g)
	}
	return nil
}

// FromMap lays raw values over the defaults and checks their types.
// Checks run in a fixed order so the first reported key is deterministic.
func FromMap(raw map[string]any, source string) (*Config, error) {
	cfg := Default()
	cfg.Source = source

	for key := range raw {
		switch key {
		case KeyExclude, KeyGLSLVersion, KeyCommandArguments, KeyThreeIntegration, KeyCSMIntegration:
		default:
			cfg.Unknown = append(cfg.Unknown, key)
		}
	}
	sort.Strings(cfg.Unknown)

	if v, ok := raw[KeyExclude]; ok {
		list, ok := asStrings(v)
		if !ok {
			return nil, &ConfigError{Path: source, Key: KeyExclude, Type: "string[]"}
		}
		cfg.Exclude = list
	}
	if v, ok := raw[KeyCommandArguments]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, &ConfigError{Path: source, Key: KeyCommandArguments, Type: "string"}
		}
		if _, err := glslang.SplitArgs(s); err != nil {
			return nil, &ConfigError{
				Path:   source,
				Key:    KeyCommandArguments,
				Type:   "string",
				Reason: fmt.Sprintf("must be a valid argument list: %v", errors.Unwrap(err)),
			}
		}
		cfg.CommandArguments = s
	}
	if v, ok := raw[KeyGLSLVersion]; ok {
		n, ok := asInt(v)
		if !ok {
			return nil, &ConfigError{Path: source, Key: KeyGLSLVersion, Type: "number"}
		}
		cfg.GLSLVersion = n
	}
	if v, ok := raw[KeyThreeIntegration]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, &ConfigError{Path: source, Key: KeyThreeIntegration, Type: "boolean"}
		}
		cfg.ThreeIntegration = b
	}
	if v, ok := raw[KeyCSMIntegration]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, &ConfigError{Path: source, Key: KeyCSMIntegration, Type: "boolean"}
		}
		cfg.CSMIntegration = b
	}

	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func asStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// asInt accepts every integer representation the decoders produce and
// floats without a fractional part (JSON numbers).
func asInt(v any) (int, bool) {
	const maxInt = int64(^uint(0) >> 1)
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n > maxInt || n < -maxInt-1 {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > uint64(maxInt) {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
