package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-stack/stackctl/internal/env"
)

func TestLoadPathsDefaults(t *testing.T) {
	p, err := LoadPaths()
	require.NoError(t, err)
	assert.Equal(t, ".env.template", p.Template)
	assert.Equal(t, "secrets", p.SecretsDir)
	assert.Equal(t, "secrets/.derived", p.DerivedDir)
	assert.Equal(t, "docker-compose.yml", p.Descriptor)
	assert.Equal(t, ".env", p.Output)
}

func TestLoadPathsOverride(t *testing.T) {
	t.Setenv("STACKCTL_TEMPLATE", "conf/.env.template")
	t.Setenv("STACKCTL_ENV_FILE", "out/.env")

	p, err := LoadPaths()
	require.NoError(t, err)
	assert.Equal(t, "conf/.env.template", p.Template)
	assert.Equal(t, "out/.env", p.Output)
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	dsn, err := PostgresDSN(env.Vars{"DATABASE_URL": "postgresql://app:pw@db:5432/app"})
	require.NoError(t, err)
	assert.Equal(t, "postgresql://app:pw@db:5432/app", dsn)

	dsn, err = PostgresDSN(env.Vars{
		"DATABASE_HOST": "db", "DATABASE_PORT": "5432",
		"DATABASE_USER": "app", "DATABASE_PASSWORD": "pw", "DATABASE_NAME": "app",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgresql://app:pw@db:5432/app", dsn)

	_, err = PostgresDSN(env.Vars{})
	require.Error(t, err)
}

func TestRedisTarget(t *testing.T) {
	t.Parallel()

	addr, password, err := RedisTarget(env.Vars{"REDIS_HOST": "redis", "REDIS_PORT": "6379", "REDIS_PASSWORD": "pw"})
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", addr)
	assert.Equal(t, "pw", password)
}

func TestNeo4jTarget(t *testing.T) {
	t.Parallel()

	addr, user, password, err := Neo4jTarget(env.Vars{
		"NEO4J_URI":  "bolt://neo4j:7687",
		"NEO4J_AUTH": "neo4j/s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "neo4j:7687", addr)
	assert.Equal(t, "neo4j", user)
	assert.Equal(t, "s3cret", password)

	_, _, _, err = Neo4jTarget(env.Vars{"NEO4J_URI": "bolt://neo4j:7687", "NEO4J_AUTH": "broken"})
	require.Error(t, err)
}

func TestReadinessURLs(t *testing.T) {
	t.Parallel()

	qdrant, err := QdrantReadyURL(env.Vars{"QDRANT_URL": "http://qdrant:6333/"})
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant:6333/readyz", qdrant)

	minio, err := MinioReadyURL(env.Vars{"MINIO_ENDPOINT": "minio:9000", "MINIO_SECURE": "false"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/minio/health/ready", minio)

	minioTLS, err := MinioReadyURL(env.Vars{"MINIO_ENDPOINT": "minio:9000", "MINIO_SECURE": "true"})
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000/minio/health/ready", minioTLS)
}
