package initializer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-stack/stackctl/internal/readiness"
	"github.com/ai-stack/stackctl/internal/sentinel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy() readiness.Policy {
	return readiness.Policy{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  100 * time.Millisecond,
	}
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	marker := sentinel.New(t.TempDir(), "postgres")
	probes, setups := 0, 0

	c := New(testLogger(), "postgres", marker,
		readiness.ProbeFunc(func(context.Context) error {
			probes++
			if probes < 2 {
				return errors.New("starting up")
			}
			return nil
		}),
		func(context.Context) error {
			setups++
			return nil
		},
		testPolicy(),
	)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, 2, probes)
	assert.Equal(t, 1, setups)

	exists, err := marker.Exists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunSentinelShortCircuit(t *testing.T) {
	t.Parallel()

	marker := sentinel.New(t.TempDir(), "redis")
	require.NoError(t, marker.Write())

	c := New(testLogger(), "redis", marker,
		readiness.ProbeFunc(func(context.Context) error {
			t.Fatal("probe must not run when the marker exists")
			return nil
		}),
		func(context.Context) error {
			t.Fatal("setup must not run when the marker exists")
			return nil
		},
		testPolicy(),
	)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, StateCompleted, c.State())
}

func TestRunSetupFailureLeavesNoMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marker := sentinel.New(dir, "minio")
	setupErr := errors.New("bucket create rejected")

	run := func(fail bool) (*Controller, error) {
		c := New(testLogger(), "minio", marker,
			readiness.ProbeFunc(func(context.Context) error { return nil }),
			func(context.Context) error {
				if fail {
					return setupErr
				}
				return nil
			},
			testPolicy(),
		)
		return c, c.Run(context.Background())
	}

	c, err := run(true)
	require.ErrorIs(t, err, setupErr)
	assert.Equal(t, StateFailed, c.State())

	exists, err := marker.Exists()
	require.NoError(t, err)
	assert.False(t, exists, "failed setup must not record completion")

	// The next invocation re-attempts the full sequence and succeeds.
	c, err = run(false)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, c.State())

	exists, err = marker.Exists()
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunReadinessTimeoutFails(t *testing.T) {
	t.Parallel()

	marker := sentinel.New(t.TempDir(), "neo4j")

	c := New(testLogger(), "neo4j", marker,
		readiness.ProbeFunc(func(context.Context) error { return errors.New("unreachable") }),
		func(context.Context) error { return nil },
		testPolicy(),
	)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, readiness.ErrWaitTimeout)
	assert.Equal(t, StateFailed, c.State())
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	var ran []string
	units := []Unit{
		{Name: "llama3", Run: func(context.Context) error { ran = append(ran, "llama3"); return nil }},
		{Name: "nomic-embed-text", Run: func(context.Context) error {
			ran = append(ran, "nomic-embed-text")
			return errors.New("pull failed")
		}},
		{Name: "mistral", Run: func(context.Context) error { ran = append(ran, "mistral"); return nil }},
	}

	report := RunBatch(context.Background(), testLogger(), units)

	assert.Equal(t, []string{"llama3", "nomic-embed-text", "mistral"}, ran)
	require.Len(t, report.Results, 3)
	assert.NoError(t, report.Results[0].Err)
	assert.Error(t, report.Results[1].Err)
	assert.NoError(t, report.Results[2].Err)

	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "1 of 3 units failed")
	assert.Contains(t, report.Err().Error(), "nomic-embed-text")
}

func TestRunBatchAllSuccess(t *testing.T) {
	t.Parallel()

	report := RunBatch(context.Background(), testLogger(), []Unit{
		{Name: "a", Run: func(context.Context) error { return nil }},
	})
	assert.NoError(t, report.Err())
}

func TestParseUnitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "trims whitespace", in: "llama3, nomic-embed-text ,mistral", want: []string{"llama3", "nomic-embed-text", "mistral"}},
		{name: "drops empties", in: "a,,b,", want: []string{"a", "b"}},
		{name: "empty list", in: "  ", want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseUnitList(tt.in))
		})
	}
}
