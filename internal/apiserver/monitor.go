package apiserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
	"github.com/muurk/nodeboard/internal/probe"
)

// DefaultProbeInterval is the time between probe rounds
const DefaultProbeInterval = 30 * time.Second

// maxConcurrentProbes bounds how many devices are probed at once
const maxConcurrentProbes = 16

// Monitor periodically probes every stored interface and records the result
type Monitor struct {
	store    *Store
	prober   *probe.Prober
	interval time.Duration
}

// NewMonitor creates a monitor that probes every interval
func NewMonitor(store *Store, prober *probe.Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{store: store, prober: prober, interval: interval}
}

// Run probes immediately and then on every tick until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("Probe round failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce probes every interface once
func (m *Monitor) RunOnce(ctx context.Context) error {
	devices, err := m.store.List(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	sem := make(chan struct{}, maxConcurrentProbes)
	var wg sync.WaitGroup

	for _, d := range devices {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}
		wg.Add(1)
		go func(d inventory.Device) {
			defer wg.Done()
			defer func() { <-sem }()
			m.probeDevice(ctx, d)
		}(d)
	}
	wg.Wait()

	logging.Debug("Probe round complete",
		zap.Int("devices", len(devices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (m *Monitor) probeDevice(ctx context.Context, d inventory.Device) {
	for i, iface := range d.Interfaces {
		status := m.prober.Probe(ctx, iface)
		if status == iface.Status {
			continue
		}
		// The write is skipped if the interface was edited while probing
		if _, err := m.store.SetStatus(ctx, d.ID, i, iface, status); err != nil {
			logging.Warn("Failed to record interface status",
				zap.String("device", d.ID.String()),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		logging.Info("Interface status changed",
			zap.String("device", d.Name),
			zap.String("address", iface.Address),
			zap.String("from", iface.Status.String()),
			zap.String("to", status.String()),
		)
	}
}
