// Package config defines the file-system layout stackctl operates on and the
// connection targets it derives from a generated environment.
package config

import (
	"fmt"
	"strings"

	envparse "github.com/caarlos0/env/v11"

	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/envgen"
)

// Paths locates every external artifact of the bootstrap pipeline. Values
// come from STACKCTL_* variables with conventional defaults and are
// overridable per command via flags.
type Paths struct {
	// Template is the checked-in configuration template.
	Template string `env:"STACKCTL_TEMPLATE" envDefault:".env.template"`
	// SecretsDir holds operator-provided secret files.
	SecretsDir string `env:"STACKCTL_SECRETS_DIR" envDefault:"secrets"`
	// DerivedDir caches generated infrastructure secrets.
	DerivedDir string `env:"STACKCTL_DERIVED_DIR" envDefault:"secrets/.derived"`
	// Descriptor is the service-orchestration descriptor scanned for
	// variable references.
	Descriptor string `env:"STACKCTL_COMPOSE_FILE" envDefault:"docker-compose.yml"`
	// Output is the generated environment file.
	Output string `env:"STACKCTL_ENV_FILE" envDefault:".env"`
	// DataDir is the root under which each service's persistent volume is
	// mounted; initialization markers live beneath it.
	DataDir string `env:"STACKCTL_DATA_DIR" envDefault:"data"`
}

// LoadPaths reads Paths from the process environment.
func LoadPaths() (Paths, error) {
	var p Paths
	if err := envparse.Parse(&p); err != nil {
		return Paths{}, fmt.Errorf("parse STACKCTL_* environment: %w", err)
	}
	return p, nil
}

// PostgresDSN returns the Postgres connection string from the generated
// environment, preferring the composite DATABASE_URL.
func PostgresDSN(vars env.Vars) (string, error) {
	if url := strings.TrimSpace(vars["DATABASE_URL"]); url != "" {
		return url, nil
	}
	host, port := vars["DATABASE_HOST"], vars["DATABASE_PORT"]
	if host == "" || port == "" {
		return "", fmt.Errorf("generated environment carries no postgres connection parameters")
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		vars["DATABASE_USER"], vars["DATABASE_PASSWORD"], host, port, vars["DATABASE_NAME"]), nil
}

// RedisTarget returns the Redis address and password.
func RedisTarget(vars env.Vars) (addr, password string, err error) {
	host, port := vars["REDIS_HOST"], vars["REDIS_PORT"]
	if host == "" || port == "" {
		return "", "", fmt.Errorf("generated environment carries no redis connection parameters")
	}
	return host + ":" + port, vars["REDIS_PASSWORD"], nil
}

// Neo4jTarget returns the Bolt address plus the credentials unpacked from the
// combined NEO4J_AUTH value.
func Neo4jTarget(vars env.Vars) (addr, user, password string, err error) {
	uri := strings.TrimSpace(vars["NEO4J_URI"])
	addr = strings.TrimPrefix(strings.TrimPrefix(uri, "bolt://"), "neo4j://")
	if addr == "" {
		return "", "", "", fmt.Errorf("generated environment carries no NEO4J_URI")
	}
	user, password, ok := envgen.SplitCredential(vars["NEO4J_AUTH"])
	if !ok {
		return "", "", "", fmt.Errorf("NEO4J_AUTH is not a principal/secret pair")
	}
	return addr, user, password, nil
}

// QdrantReadyURL returns the Qdrant readiness endpoint.
func QdrantReadyURL(vars env.Vars) (string, error) {
	base := strings.TrimSpace(vars["QDRANT_URL"])
	if base == "" {
		return "", fmt.Errorf("generated environment carries no QDRANT_URL")
	}
	return strings.TrimRight(base, "/") + "/readyz", nil
}

// MinioReadyURL returns the MinIO readiness endpoint derived from the
// endpoint and TLS flag.
func MinioReadyURL(vars env.Vars) (string, error) {
	endpoint := strings.TrimSpace(vars["MINIO_ENDPOINT"])
	if endpoint == "" {
		return "", fmt.Errorf("generated environment carries no MINIO_ENDPOINT")
	}
	scheme := "http"
	if strings.EqualFold(strings.TrimSpace(vars["MINIO_SECURE"]), "true") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/minio/health/ready", scheme, endpoint), nil
}

// OllamaBaseURL returns the Ollama API base URL.
func OllamaBaseURL(vars env.Vars) (string, error) {
	base := strings.TrimSpace(vars["OLLAMA_BASE_URL"])
	if base == "" {
		return "", fmt.Errorf("generated environment carries no OLLAMA_BASE_URL")
	}
	return base, nil
}
