// Package project reads the optional mcc.yaml that sits next to the sources.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/mccompiled/pkg/fileutil"
)

// FileName is the project file looked up in the source root.
const FileName = "mcc.yaml"

// Defaults
const (
	DefaultNamespace    = "mcc"
	DefaultGlobalHolder = "global"
)

// Config はプロジェクト設定
type Config struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	// Entities is the behaviour-pack entity directory, relative to the
	// project file. Empty disables the bind attribute.
	Entities     string   `yaml:"entities"`
	Features     []string `yaml:"features"`
	GlobalHolder string   `yaml:"global_holder"`
}

var (
	namespacePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	holderPattern    = regexp.MustCompile(`^[A-Za-z0-9_.#$-]{1,40}$`)
)

// Default returns the configuration used when no project file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads FileName from the root of fsys. A missing file yields the
// defaults.
func Load(fsys fileutil.FileSystem) (*Config, error) {
	data, err := fsys.ReadFile(FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return Parse(data)
}

// Parse decodes a project file. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.GlobalHolder == "" {
		c.GlobalHolder = DefaultGlobalHolder
	}
}

// Validate checks the fields that end up inside generated commands.
func (c *Config) Validate() error {
	if !namespacePattern.MatchString(c.Namespace) {
		return fmt.Errorf("invalid namespace %q: use lowercase letters, digits, '_', '-' or '.'", c.Namespace)
	}
	if !holderPattern.MatchString(c.GlobalHolder) {
		return fmt.Errorf("invalid global_holder %q", c.GlobalHolder)
	}
	seen := make(map[string]bool, len(c.Features))
	for _, f := range c.Features {
		if f == "" {
			return errors.New("empty feature name")
		}
		if seen[f] {
			return fmt.Errorf("feature %q listed twice", f)
		}
		seen[f] = true
	}
	return nil
}
