package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	merged := Merge(
		Vars{"A": "1", "B": "2"},
		Vars{"B": "override", "C": "3"},
	)
	assert.Equal(t, Vars{"A": "1", "B": "override", "C": "3"}, merged)
}

func TestFromOS(t *testing.T) {
	t.Setenv("STACKCTL_FROMOS_TEST_VAR", "visible")

	vars := FromOS()
	assert.Equal(t, "visible", vars["STACKCTL_FROMOS_TEST_VAR"])
}

func TestLoadTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env.template")
	content := `# application
APP_NAME=ai-stack
APP_VERSION=0.1.0

# credentials
DATABASE_USER=app
DATABASE_PASSWORD=
ANTHROPIC_API_KEY=
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"APP_NAME", "APP_VERSION", "DATABASE_USER", "DATABASE_PASSWORD", "ANTHROPIC_API_KEY"},
		tpl.Keys())
	assert.True(t, tpl.Has("DATABASE_USER"))
	assert.False(t, tpl.Has("NOT_DECLARED"))

	values := tpl.Values()
	assert.Equal(t, "ai-stack", values["APP_NAME"])
	assert.Equal(t, "", values["DATABASE_PASSWORD"])

	// Values returns a copy; mutating it must not leak into the template.
	values["APP_NAME"] = "mutated"
	assert.Equal(t, "ai-stack", tpl.Values()["APP_NAME"])
}

func TestLoadTemplateMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadTemplate(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
