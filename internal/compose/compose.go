// Package compose reads the service-orchestration descriptor. The derivation
// engine uses it only as a source of variable references for validation;
// stackctl never renders or mutates the descriptor.
package compose

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// refPattern matches ${VAR} and ${VAR:-default} style references.
var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::?-[^}]*)?\}`)

// File is the subset of the descriptor stackctl inspects.
type File struct {
	// Services maps service name to its declaration.
	Services map[string]Service `yaml:"services"`
	// raw holds the descriptor bytes for reference scanning.
	raw []byte
}

// Service carries the per-service fields used by preflight checks.
type Service struct {
	// Image is the container image reference.
	Image string `yaml:"image"`
}

// Load reads and parses the descriptor at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read orchestration descriptor %q: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse orchestration descriptor %q: %w", path, err)
	}
	f.raw = raw
	return &f, nil
}

// RequiredVariables returns every variable name the descriptor references,
// deduplicated and sorted. Extraction is textual on purpose: references can
// appear anywhere in the file, including inside strings yaml parses opaquely.
func (f *File) RequiredVariables() []string {
	return ScanVariables(string(f.raw))
}

// ServiceNames returns the declared service names, sorted.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScanVariables extracts ${VAR} references from arbitrary descriptor text.
func ScanVariables(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, match := range refPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(match[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
