package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

// DefaultTimeout bounds a single check
const DefaultTimeout = 2 * time.Second

// ErrNoAddress is returned when an interface has an empty address
var ErrNoAddress = errors.New("interface has no address")

// Checker tests whether one address answers
type Checker interface {
	Check(ctx context.Context, address string) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context, address string) error

// Check calls f
func (f CheckerFunc) Check(ctx context.Context, address string) error {
	return f(ctx, address)
}

// Prober maps each check method to its Checker
type Prober struct {
	Checkers map[inventory.CheckMethod]Checker
	Timeout  time.Duration
}

// NewProber creates a prober with the HTTP, ICMP and SIP checkers
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Checkers: map[inventory.CheckMethod]Checker{
			inventory.CheckHTTP:    NewHTTPChecker(),
			inventory.CheckPing:    NewPingChecker(),
			inventory.CheckSipPing: NewSIPChecker(),
		},
		Timeout: timeout,
	}
}

// Probe runs the check for iface and returns the observed status.
// Any failure, including an unknown method, is Down.
func (p *Prober) Probe(ctx context.Context, iface inventory.Interface) inventory.InterfaceStatus {
	if err := p.check(ctx, iface); err != nil {
		logging.Debug("Interface check failed",
			zap.String("method", iface.CheckMethod.String()),
			zap.String("address", iface.Address),
			zap.Error(err),
		)
		return inventory.StatusDown
	}
	return inventory.StatusUp
}

func (p *Prober) check(ctx context.Context, iface inventory.Interface) error {
	if iface.Address == "" {
		return ErrNoAddress
	}
	checker, ok := p.Checkers[iface.CheckMethod]
	if !ok {
		return fmt.Errorf("no checker for %s", iface.CheckMethod)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return checker.Check(ctx, iface.Address)
}

// ProbeDevice probes every interface of d and returns a copy with updated
// statuses.
func (p *Prober) ProbeDevice(ctx context.Context, d inventory.Device) inventory.Device {
	out := d.Clone()
	for i := range out.Interfaces {
		out.Interfaces[i].Status = p.Probe(ctx, out.Interfaces[i])
	}
	return out
}
