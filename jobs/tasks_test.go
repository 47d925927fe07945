package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerview/ledgerview/internal/ledger"
	"github.com/ledgerview/ledgerview/internal/tenants"
	_ "github.com/ledgerview/ledgerview/testing"
)

type stubDirectory struct {
	mu      sync.Mutex
	list    []tenants.Tenant
	listErr error
	probes  map[int64]bool
}

func (s *stubDirectory) List(context.Context) ([]tenants.Tenant, error) {
	return s.list, s.listErr
}

func (s *stubDirectory) Resolve(_ context.Context, slug string) (*tenants.Tenant, error) {
	for _, t := range s.list {
		if t.Slug == slug {
			copied := t
			return &copied, nil
		}
	}
	return nil, tenants.ErrNotConfigured
}

func (s *stubDirectory) RecordProbe(_ context.Context, id int64, reachable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probes == nil {
		s.probes = make(map[int64]bool)
	}
	s.probes[id] = reachable
	return nil
}

type stubPinger struct {
	down map[string]bool
}

func (s *stubPinger) Ping(_ context.Context, profile ledger.ConnectionProfile) error {
	if s.down[profile.DatabaseName] {
		return ledger.ErrConnectionFailed
	}
	return nil
}

func probeTask(t *testing.T, payload TenantProbePayload) *asynq.Task {
	t.Helper()
	task, err := NewTenantProbeTask(payload)
	require.NoError(t, err)
	return task
}

func TestHandleTenantProbeSweep(t *testing.T) {
	dir := &stubDirectory{list: []tenants.Tenant{
		{ID: 1, Slug: "acme", Profile: ledger.ConnectionProfile{Engine: ledger.EngineEmbedded, DatabaseName: "acme.db"}},
		{ID: 2, Slug: "globex", Profile: ledger.ConnectionProfile{Engine: ledger.EngineEmbedded, DatabaseName: "globex.db"}},
		{ID: 3, Slug: "initech", Profile: ledger.ConnectionProfile{Engine: ledger.EngineEmbedded, DatabaseName: "initech.db"}},
	}}
	pinger := &stubPinger{down: map[string]bool{"globex.db": true}}
	prober := NewProber(dir, pinger, slog.Default())

	err := prober.HandleTenantProbeTask(context.Background(), probeTask(t, TenantProbePayload{}))
	require.NoError(t, err)

	assert.Equal(t, map[int64]bool{1: true, 2: false, 3: true}, dir.probes)
}

func TestHandleTenantProbeSingleTenant(t *testing.T) {
	dir := &stubDirectory{list: []tenants.Tenant{
		{ID: 1, Slug: "acme", Profile: ledger.ConnectionProfile{Engine: ledger.EngineEmbedded, DatabaseName: "acme.db"}},
		{ID: 2, Slug: "globex", Profile: ledger.ConnectionProfile{Engine: ledger.EngineEmbedded, DatabaseName: "globex.db"}},
	}}
	prober := NewProber(dir, &stubPinger{}, slog.Default())

	err := prober.HandleTenantProbeTask(context.Background(), probeTask(t, TenantProbePayload{Slug: "acme"}))
	require.NoError(t, err)

	assert.Equal(t, map[int64]bool{1: true}, dir.probes)
}

func TestHandleTenantProbeUnknownSlug(t *testing.T) {
	prober := NewProber(&stubDirectory{}, &stubPinger{}, slog.Default())

	err := prober.HandleTenantProbeTask(context.Background(), probeTask(t, TenantProbePayload{Slug: "ghost"}))
	require.ErrorIs(t, err, tenants.ErrNotConfigured)
}

func TestHandleTenantProbeBadPayloadSkipsRetry(t *testing.T) {
	prober := NewProber(&stubDirectory{}, &stubPinger{}, slog.Default())

	task := asynq.NewTask(TaskTenantProbe, []byte("{not json"))
	err := prober.HandleTenantProbeTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleTenantProbeListError(t *testing.T) {
	boom := errors.New("registry down")
	prober := NewProber(&stubDirectory{listErr: boom}, &stubPinger{}, slog.Default())

	err := prober.HandleTenantProbeTask(context.Background(), probeTask(t, TenantProbePayload{}))
	require.ErrorIs(t, err, boom)
}
