package envgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-stack/stackctl/internal/env"
)

func TestEscapeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "ai-stack", want: "ai-stack"},
		{name: "empty", in: "", want: ""},
		{name: "url unquoted", in: "postgresql://app:pw@db:5432/app", want: "postgresql://app:pw@db:5432/app"},
		{name: "space quoted", in: "two words", want: `"two words"`},
		{name: "backslash escaped", in: `a\b`, want: `"a\\b"`},
		{name: "quote escaped", in: `say "hi"`, want: `"say \"hi\""`},
		{name: "newline escaped", in: "line1\nline2", want: `"line1\nline2"`},
		{name: "carriage return escaped", in: "a\rb", want: `"a\rb"`},
		{name: "dollar escaped", in: "pa$$word", want: `"pa\$\$word"`},
		{name: "reference neutralized", in: "ref-${DATABASE_HOST}-end", want: `"ref-\${DATABASE_HOST}-end"`},
		{name: "hash quoted", in: "v#1", want: `"v#1"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, escapeValue(tt.in))
		})
	}
}

// TestEncodeRoundTrip re-reads encoded output through the same parser the
// init and pull-models commands use. Secret content must come back verbatim:
// no expansion of ${NAME} references against other variables in the file, no
// loss of backslashes, quotes or newlines.
func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	e := &Environment{
		keys: []string{
			"DATABASE_HOST",
			"DATABASE_PASSWORD",
			"ANTHROPIC_API_KEY",
			"OPENAI_API_KEY",
			"TAVILY_API_KEY",
			"GROQ_API_KEY",
		},
		values: map[string]string{
			"DATABASE_HOST":     "postgres",
			"DATABASE_PASSWORD": "s3cret",
			"ANTHROPIC_API_KEY": "ref-${DATABASE_HOST}-end",
			"OPENAI_API_KEY":    "${DATABASE_PASSWORD}",
			"TAVILY_API_KEY":    `back\slash "quoted" pa$$`,
			"GROQ_API_KEY":      "line1\nline2",
		},
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, e.Encode(), 0o600))

	parsed, err := env.LoadEnvFile(path)
	require.NoError(t, err)

	for key, want := range e.values {
		assert.Equal(t, want, parsed[key], "key %s", key)
	}
	// In particular, no secret was spliced into another.
	assert.Equal(t, "${DATABASE_PASSWORD}", parsed["OPENAI_API_KEY"])
}

func TestEncodeOrder(t *testing.T) {
	t.Parallel()

	e := &Environment{
		keys: []string{"B_KEY", "A_KEY"},
		values: map[string]string{
			"A_KEY": "1",
			"B_KEY": "2",
		},
	}
	assert.Equal(t, "B_KEY=2\nA_KEY=1\n", string(e.Encode()))
}
