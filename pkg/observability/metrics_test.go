package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/internal/runtime"
	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/aretw0/augtree/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	engine := runtime.NewEngine(runtime.WithLifecycleHooks(metrics.Hooks()))
	store := memory.New(memory.WithRoot(t.TempDir()))
	ctx := context.Background()

	seq, err := compiler.Parse("set /files/a 1\nset /files/a 1\nmatch /files/a\nload")
	require.NoError(t, err)
	_, err = engine.Execute(ctx, store, seq)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("set", observability.OutcomeChanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("set", observability.OutcomeUnchanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("match", observability.OutcomeQuery)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commands.WithLabelValues("load", observability.OutcomeQuery)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.StatusCommitted)))

	seq, err = compiler.Parse("ins x before /files/missing")
	require.NoError(t, err)
	_, err = engine.Execute(ctx, store, seq)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.StatusFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Duration, "augtree_run_duration_seconds"))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	var already prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &already))
}
