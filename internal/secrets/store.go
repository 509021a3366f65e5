package secrets

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// derivedLength is the length of every generated secret value.
	derivedLength = 32
	// derivedAlphabet restricts generated values to characters that are safe
	// inside connection URLs and compose files without escaping.
	derivedAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Store persists derived secrets in a cache directory, one file per value.
// A value, once materialized, never changes until its cache file is deleted.
type Store struct {
	dir      string
	generate func(length int) (string, error)
}

// NewStore constructs a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create derived secret cache %q: %w", dir, err)
	}
	return &Store{dir: dir, generate: randomAlphanumeric}, nil
}

// GetOrCreate returns the cached value for name, generating and persisting a
// fresh one when no cache file exists. The create is exclusive: when two runs
// race on an empty cache, exactly one generated value wins and both callers
// observe it. The second return reports whether a new value was generated by
// this call.
func (s *Store) GetOrCreate(name string) (string, bool, error) {
	path := filepath.Join(s.dir, name)

	if value, err := s.read(path); err == nil {
		return value, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("read cached secret %q: %w", name, err)
	}

	value, err := s.generate(derivedLength)
	if err != nil {
		return "", false, fmt.Errorf("generate secret %q: %w", name, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			// Lost the create race; the winner's value is authoritative.
			winner, rerr := s.read(path)
			if rerr != nil {
				return "", false, fmt.Errorf("read secret %q after create race: %w", name, rerr)
			}
			return winner, false, nil
		}
		return "", false, fmt.Errorf("create secret cache file %q: %w", path, err)
	}
	if _, err := f.WriteString(value); err != nil {
		_ = f.Close()
		return "", false, fmt.Errorf("write secret cache file %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", false, fmt.Errorf("close secret cache file %q: %w", path, err)
	}
	return value, true, nil
}

// read loads and trims one cache file.
func (s *Store) read(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

// randomAlphanumeric returns a random string of the given length drawn from
// the derived alphabet.
func randomAlphanumeric(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = derivedAlphabet[int(b)%len(derivedAlphabet)]
	}
	return string(out), nil
}
