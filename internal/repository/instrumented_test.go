package repository_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/memory"
	"github.com/jwalitptl/popdoc-api/internal/repository/repotest"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

func TestInstrumentCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	m := metrics.New("popdoc")
	repo := repository.Instrument(memory.New(), "memory", m)

	u := repotest.NewUser()
	assert.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, u), repository.ErrEmailTaken)
	_, err := repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "create", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "load", "not_found")))
}

func TestInstrumentWithoutMetricsIsPassThrough(t *testing.T) {
	backend := memory.New()
	assert.Same(t, backend, repository.Instrument(backend, "memory", nil))
}
