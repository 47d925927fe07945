// Package jobs holds background tasks run by the asynq worker.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerview/ledgerview/internal/ledger"
	"github.com/ledgerview/ledgerview/internal/tenants"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTenantProbe checks tenant database reachability and stamps the
	// registry. Purely observational: report requests never depend on it.
	TaskTenantProbe = "tenant:probe"

	probeConcurrency = 8
	probeTimeout     = 10 * time.Second
)

// TenantProbePayload scopes a probe run. An empty slug probes every tenant.
type TenantProbePayload struct {
	Slug string `json:"slug,omitempty"`
}

// NewTenantProbeTask constructs an asynq task for a probe run.
func NewTenantProbeTask(payload TenantProbePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTenantProbe, data), nil
}

// Pinger opens a tenant database just far enough to know it answers.
type Pinger interface {
	Ping(ctx context.Context, profile ledger.ConnectionProfile) error
}

// TenantDirectory lists tenants and records probe outcomes.
type TenantDirectory interface {
	List(ctx context.Context) ([]tenants.Tenant, error)
	Resolve(ctx context.Context, slug string) (*tenants.Tenant, error)
	RecordProbe(ctx context.Context, id int64, reachable bool) error
}

// Prober runs connectivity probes against tenant databases.
type Prober struct {
	directory TenantDirectory
	pinger    Pinger
	logger    *slog.Logger
}

// NewProber wires the probe handler.
func NewProber(directory TenantDirectory, pinger Pinger, logger *slog.Logger) *Prober {
	return &Prober{directory: directory, pinger: pinger, logger: logger}
}

// HandleTenantProbeTask processes TaskTenantProbe tasks.
func (p *Prober) HandleTenantProbeTask(ctx context.Context, t *asynq.Task) error {
	var payload TenantProbePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var targets []tenants.Tenant
	if payload.Slug != "" {
		tenant, err := p.directory.Resolve(ctx, payload.Slug)
		if err != nil {
			return err
		}
		targets = []tenants.Tenant{*tenant}
	} else {
		list, err := p.directory.List(ctx)
		if err != nil {
			return err
		}
		targets = list
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, tenant := range targets {
		tenant := tenant
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()
			err := p.pinger.Ping(pctx, tenant.Profile)
			reachable := err == nil
			if !reachable && p.logger != nil {
				p.logger.Warn("tenant probe failed",
					slog.String("tenant", tenant.Slug),
					slog.Any("error", err))
			}
			// Probe result recording is best effort per tenant; one registry
			// write failing should not abort the sweep.
			if recErr := p.directory.RecordProbe(gctx, tenant.ID, reachable); recErr != nil && p.logger != nil {
				p.logger.Warn("record probe",
					slog.String("tenant", tenant.Slug),
					slog.Any("error", recErr))
			}
			return nil
		})
	}
	return g.Wait()
}
