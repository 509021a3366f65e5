// Package secrets contains the secret sources and the derived-secret store used
// during environment generation.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keySuffix is appended to the uppercased file name to build the template key
// a provided secret maps to (e.g. "anthropic" -> "ANTHROPIC_API_KEY").
const keySuffix = "_API_KEY"

// Entry is a single provided secret resolved to its template key.
type Entry struct {
	// Key is the environment variable name the secret maps to.
	Key string
	// Value is the secret material, trimmed of surrounding whitespace.
	Value string
	// Origin describes where the secret came from, for logging.
	Origin string
}

// Source enumerates provided secrets. The derivation engine queries sources
// through this interface so that the file-drop convention stays one
// implementation among possible others.
type Source interface {
	List() ([]Entry, error)
}

// DirSource reads secrets from a directory following the one-file-per-secret
// convention: the file name, uppercased, plus the fixed key suffix yields the
// target variable name, and the trimmed file content is the value.
type DirSource struct {
	Dir string
}

// NewDirSource constructs a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// List enumerates the secret files in the directory. A missing directory is
// treated as "no secrets provided" rather than an error, so a fresh checkout
// generates a usable environment before any operator has dropped in keys.
func (s *DirSource) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read secrets dir %q: %w", s.Dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		path := filepath.Join(s.Dir, de.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read secret file %q: %w", path, err)
		}
		entries = append(entries, Entry{
			Key:    KeyForName(de.Name()),
			Value:  strings.TrimSpace(string(content)),
			Origin: path,
		})
	}
	return entries, nil
}

// KeyForName maps a secret file name to its template key. An optional file
// extension is stripped first, so "anthropic" and "anthropic.txt" resolve to
// the same key.
func KeyForName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ToUpper(base) + keySuffix
}
