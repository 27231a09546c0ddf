// Package runconfig loads the YAML run manifest consumed by cmd/sandboxrun:
// the command to spawn, its limits, and the stdio endpoints to dial.
package runconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk shape of a run manifest.
type Manifest struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`

	CPUTimeLimitMs   int64 `yaml:"cpu_time_limit_ms"`
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`

	Endpoints struct {
		Stdin  string `yaml:"stdin"`
		Stdout string `yaml:"stdout"`
		Stderr string `yaml:"stderr"`
	} `yaml:"endpoints"`
}

// Load reads and validates a run manifest from path.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var doc Manifest
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	if doc.Dir != "" && !filepath.IsAbs(doc.Dir) {
		doc.Dir = filepath.Clean(filepath.Join(filepath.Dir(absPath), doc.Dir))
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &doc, nil
}

func (m *Manifest) validate() error {
	if m.Command == "" {
		return fmt.Errorf("command is required")
	}
	if m.CPUTimeLimitMs < 0 {
		return fmt.Errorf("cpu_time_limit_ms must be >= 0")
	}
	if m.MemoryLimitBytes < 0 {
		return fmt.Errorf("memory_limit_bytes must be >= 0")
	}
	if m.Endpoints.Stdin == "" || m.Endpoints.Stdout == "" || m.Endpoints.Stderr == "" {
		return fmt.Errorf("endpoints.stdin, endpoints.stdout and endpoints.stderr are required")
	}
	return nil
}
