package metrics

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveVerification("approved", "USA", 1200*time.Millisecond)
	m.ObserveVerification("approved", "USA", time.Second)
	m.ObserveVerification("review", "GBR", time.Second)
	m.IncrementMRZ("td3")
	m.IncrementRuleCheck("failed")
	m.ObserveStage("quality", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("approved", "USA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("review", "GBR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MRZParses.WithLabelValues("td3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuleChecks.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageLatency))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveVerification("approved", "USA", time.Second)
		m.ObserveStage("mrz", time.Millisecond)
		m.IncrementMRZ("none")
		m.IncrementRuleCheck("passed")
		m.SetStored(map[string]int64{"approved": 1})
	})
}

func TestMetrics_SetStoredResets(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetStored(map[string]int64{"approved": 3, "rejected": 1})
	m.SetStored(map[string]int64{"review": 2})

	assert.Equal(t, 1, testutil.CollectAndCount(m.StoredVerifications))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoredVerifications.WithLabelValues("review")))
}

type fakeStore struct {
	mu         sync.Mutex
	counts     map[string]int64
	countErr   error
	pruned     []time.Duration
	countCalls int
}

func (f *fakeStore) CountByStatus(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return f.counts, f.countErr
}

func (f *fakeStore) DeleteOlderThan(_ context.Context, age time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, age)
	return 2, nil
}

func TestAggregator_Aggregate(t *testing.T) {
	store := &fakeStore{counts: map[string]int64{"approved": 4}}
	m := New(prometheus.NewRegistry())
	agg := NewAggregator(store, m, slog.New(slog.DiscardHandler), time.Hour, 24*time.Hour)

	agg.aggregate(context.Background())

	assert.Equal(t, []time.Duration{24 * time.Hour}, store.pruned)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StoredVerifications.WithLabelValues("approved")))
}

type fakeCleaner struct {
	calls int
	err   error
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

func TestAggregator_CleansCache(t *testing.T) {
	store := &fakeStore{counts: map[string]int64{}}
	cleaner := &fakeCleaner{}
	agg := NewAggregator(store, New(prometheus.NewRegistry()), slog.New(slog.DiscardHandler), time.Hour, 0).WithCleaner(cleaner)

	agg.aggregate(context.Background())
	cleaner.err = errors.New("db down")
	agg.aggregate(context.Background())

	assert.Equal(t, 2, cleaner.calls)
	assert.Equal(t, 2, store.countCalls)
}

func TestAggregator_NoRetentionSkipsPrune(t *testing.T) {
	store := &fakeStore{countErr: errors.New("db down")}
	agg := NewAggregator(store, New(prometheus.NewRegistry()), slog.New(slog.DiscardHandler), 0, 0)

	agg.aggregate(context.Background())

	assert.Empty(t, store.pruned)
	assert.Equal(t, time.Minute, agg.interval)
}

func TestAggregator_StartStop(t *testing.T) {
	store := &fakeStore{counts: map[string]int64{}}
	agg := NewAggregator(store, nil, slog.New(slog.DiscardHandler), time.Hour, 0)

	done := make(chan struct{})
	go func() {
		agg.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.countCalls == 1
	}, time.Second, 5*time.Millisecond)

	agg.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("aggregator did not stop")
	}
}
