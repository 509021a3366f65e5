// Package envgen implements the environment derivation engine: it resolves the
// checked-in configuration template against provided and derived secrets,
// synthesizes composite values, and emits the generated environment snapshot.
package envgen

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai-stack/stackctl/internal/compose"
	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/secrets"
)

// CredentialSentinel is substituted for credential-class keys that no provided
// secret covers. Consumers test for this exact value to fail loudly at first
// use instead of tripping over an empty string.
const CredentialSentinel = "NEED-API-KEY"

// ErrTemplateMissing is returned when the configuration template itself is
// absent. This is the only fatal input error; everything else degrades to
// warnings.
var ErrTemplateMissing = errors.New("configuration template not found")

// credentialKeys is the closed set of external credential variables subject to
// sentinel substitution.
var credentialKeys = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"GROQ_API_KEY",
	"TOGETHER_API_KEY",
	"TAVILY_API_KEY",
}

// derivedKeys lists the infrastructure secrets generated once and cached.
var derivedKeys = []string{
	"DATABASE_PASSWORD",
	"REDIS_PASSWORD",
	"NEO4J_PASSWORD",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
}

// WarningKind classifies non-fatal findings reported during resolution.
type WarningKind string

const (
	// WarnUnknownSecret flags a provided secret whose derived key is not
	// declared in the template.
	WarnUnknownSecret WarningKind = "unknown-secret"
	// WarnMissingVariable flags a descriptor reference absent from the
	// generated environment.
	WarnMissingVariable WarningKind = "missing-variable"
)

// Warning is a non-fatal validation finding surfaced to the operator.
type Warning struct {
	Kind   WarningKind
	Key    string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Key, w.Detail)
}

// Options configures one resolution run.
type Options struct {
	// TemplatePath locates the configuration template.
	TemplatePath string
	// DescriptorPath locates the orchestration descriptor scanned for
	// required variables. Empty skips descriptor validation.
	DescriptorPath string
	// Provided enumerates operator-supplied secrets.
	Provided secrets.Source
	// Derived persists generated infrastructure secrets.
	Derived *secrets.Store
}

// Environment is the fully resolved configuration snapshot for one stack
// launch. Key order follows the template.
type Environment struct {
	keys   []string
	values env.Vars
}

// Lookup returns the resolved value for key.
func (e *Environment) Lookup(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Keys returns the resolved keys in template order.
func (e *Environment) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

// Encode serializes the environment as KEY=value lines in template order.
// Serialization runs every value through a single escaping routine; for fixed
// inputs the output is byte-identical across runs.
func (e *Environment) Encode() []byte {
	var b strings.Builder
	for _, key := range e.keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escapeValue(e.values[key]))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// WriteFile regenerates the environment file wholesale: the snapshot is
// written to a temp file and renamed into place, so readers never observe a
// partially written file and a failed run leaves no partial output.
func (e *Environment) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("create temp env file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(e.Encode()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close env file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod env file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace env file %q: %w", path, err)
	}
	return nil
}

// Resolve runs the derivation pipeline and returns the generated environment
// together with any validation warnings. Only a missing template is fatal.
func Resolve(logger *slog.Logger, opts Options) (*Environment, []Warning, error) {
	tpl, err := env.LoadTemplate(opts.TemplatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrTemplateMissing, opts.TemplatePath)
		}
		return nil, nil, err
	}

	resolved := tpl.Values()
	var warnings []Warning

	// Provided secrets overlay the template copy; an entry whose key the
	// template never declared is surfaced, not silently adopted.
	if opts.Provided != nil {
		entries, err := opts.Provided.List()
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			if !tpl.Has(entry.Key) {
				warnings = append(warnings, Warning{
					Kind:   WarnUnknownSecret,
					Key:    entry.Key,
					Detail: fmt.Sprintf("secret %s maps to no template key", entry.Origin),
				})
				continue
			}
			resolved[entry.Key] = entry.Value
			logger.Debug("provided secret applied", "key", entry.Key)
		}
	}

	// Credential-class keys that remain unset get the sentinel so a missing
	// external credential fails loudly and distinctly at first use.
	for _, key := range credentialKeys {
		if !tpl.Has(key) {
			continue
		}
		if strings.TrimSpace(resolved[key]) == "" {
			resolved[key] = CredentialSentinel
		}
	}

	// Derived infrastructure secrets are cache-gated for stability across
	// rebuilds.
	if opts.Derived != nil {
		for _, key := range derivedKeys {
			if !tpl.Has(key) {
				continue
			}
			value, created, err := opts.Derived.GetOrCreate(key)
			if err != nil {
				return nil, nil, err
			}
			if created {
				logger.Info("derived secret generated", "key", key)
			}
			resolved[key] = value
		}
	}

	applyComposites(tpl, resolved)

	environment := &Environment{keys: tpl.Keys(), values: resolved}

	if opts.DescriptorPath != "" {
		descriptorWarnings, err := validateDescriptor(opts.DescriptorPath, environment)
		if err != nil {
			// Missing or unreadable descriptor is reported, not fatal.
			logger.Warn("orchestration descriptor not validated", "error", err)
		}
		warnings = append(warnings, descriptorWarnings...)
	}

	for _, w := range warnings {
		logger.Warn("validation warning", "kind", string(w.Kind), "key", w.Key, "detail", w.Detail)
	}

	return environment, warnings, nil
}

// applyComposites computes connection strings and packed credentials from
// already-resolved components. Composites are never independent secrets.
func applyComposites(tpl *env.Template, resolved env.Vars) {
	set := func(key, value string) {
		if tpl.Has(key) {
			resolved[key] = value
		}
	}

	set("DATABASE_URL", fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		resolved["DATABASE_USER"], resolved["DATABASE_PASSWORD"],
		resolved["DATABASE_HOST"], resolved["DATABASE_PORT"], resolved["DATABASE_NAME"]))

	set("REDIS_URL", fmt.Sprintf("redis://:%s@%s:%s/0",
		resolved["REDIS_PASSWORD"], resolved["REDIS_HOST"], resolved["REDIS_PORT"]))

	// Packed principal/secret pair, split on the first "/" by consumers.
	set("NEO4J_AUTH", resolved["NEO4J_USER"]+"/"+resolved["NEO4J_PASSWORD"])

	set("MINIO_ROOT_USER", resolved["MINIO_ACCESS_KEY"])
	set("MINIO_ROOT_PASSWORD", resolved["MINIO_SECRET_KEY"])
}

// validateDescriptor diffs the descriptor's required variables against the
// generated environment and reports each missing name exactly once.
func validateDescriptor(path string, environment *Environment) ([]Warning, error) {
	descriptor, err := compose.Load(path)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	for _, name := range descriptor.RequiredVariables() {
		if _, ok := environment.Lookup(name); !ok {
			warnings = append(warnings, Warning{
				Kind:   WarnMissingVariable,
				Key:    name,
				Detail: fmt.Sprintf("referenced by %s but absent from generated environment", filepath.Base(path)),
			})
		}
	}
	return warnings, nil
}

// SplitCredential unpacks a combined principal/secret value on its first
// delimiter occurrence.
func SplitCredential(packed string) (principal, secret string, ok bool) {
	idx := strings.Index(packed, "/")
	if idx < 0 {
		return "", "", false
	}
	return packed[:idx], packed[idx+1:], true
}
