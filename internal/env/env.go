// Package env contains helpers for loading environment variables and the
// ordered configuration template they are resolved against.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Vars represents a simple string-to-string map of variables.
type Vars map[string]string

// FromOS builds a Vars map from the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}

// Merge merges several Vars maps into one, later maps overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile loads a single .env-style file into Vars.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, err
	}
	out := make(Vars, len(envMap))
	for k, v := range envMap {
		out[k] = v
	}
	return out, nil
}

// Template is an ordered sequence of KEY=value declarations. The key order of
// the source file is preserved so regenerated output stays byte-comparable
// across runs.
type Template struct {
	keys   []string
	values Vars
}

// LoadTemplate reads the template file at path. The key set of the template is
// closed: resolution may override values but never introduces new keys.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", path, err)
	}

	// godotenv gives correct unquoting but an unordered map; a second pass
	// over the raw lines recovers declaration order.
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind template %q: %w", path, err)
	}

	tpl := &Template{values: make(Vars, len(values))}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.TrimSpace(strings.SplitN(line, "=", 2)[0])
		value, ok := values[key]
		if !ok {
			continue
		}
		if _, dup := tpl.values[key]; dup {
			// Last declaration wins, matching godotenv; first position kept.
			tpl.values[key] = value
			continue
		}
		tpl.keys = append(tpl.keys, key)
		tpl.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan template %q: %w", path, err)
	}
	return tpl, nil
}

// Keys returns the template keys in declaration order.
func (t *Template) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Has reports whether key is declared in the template.
func (t *Template) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Values returns a fresh copy of the template's key-value pairs, so callers
// can overlay resolved values without mutating the template itself.
func (t *Template) Values() Vars {
	out := make(Vars, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}
