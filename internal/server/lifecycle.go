// Package server runs the desk's listeners together and shuts them down in
// reverse start order on a signal or the first listener failure.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a listener owned by a Lifecycle. Start blocks while the
// listener serves; Stop makes Start return.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a pair of funcs to Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts a fixed set of services and stops them together.
type Lifecycle struct {
	logger *zap.Logger
	// drain bounds how long Run waits for Start calls to return after Stop.
	drain time.Duration

	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

type serviceExit struct {
	name string
	err  error
}

// NewLifecycle creates a Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, drain: 10 * time.Second}
}

// Add registers svc under name. Services start in the order added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT or SIGTERM, ctx is
// cancelled, or a service exits. It then stops services in reverse order.
//
// Postcondition: Every service has been stopped. Returns the error of the
// first service that failed, or nil on a requested shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	exits := make(chan serviceExit, len(services))
	for _, ns := range services {
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func() {
			exits <- serviceExit{name: ns.name, err: ns.service.Start()}
		}()
	}
	l.logger.Info("desk services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var failure error
	pending := len(services)
	select {
	case <-ctx.Done():
		l.logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	case e := <-exits:
		pending--
		if e.err != nil {
			failure = fmt.Errorf("service %s: %w", e.name, e.err)
			l.logger.Error("service failed, shutting down", zap.String("service", e.name), zap.Error(e.err))
		} else {
			l.logger.Warn("service exited, shutting down", zap.String("service", e.name))
		}
	}

	l.stopAll(services)
	l.awaitExits(exits, pending)

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return failure
}

func (l *Lifecycle) stopAll(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		began := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(began)),
		)
	}
}

// awaitExits waits for n Start calls to return, up to the drain timeout.
func (l *Lifecycle) awaitExits(exits <-chan serviceExit, n int) {
	timeout := time.NewTimer(l.drain)
	defer timeout.Stop()
	for ; n > 0; n-- {
		select {
		case e := <-exits:
			if e.err != nil {
				l.logger.Warn("service returned error during shutdown", zap.String("service", e.name), zap.Error(e.err))
			}
		case <-timeout.C:
			l.logger.Warn("services still running after drain timeout", zap.Int("remaining", n))
			return
		}
	}
}
