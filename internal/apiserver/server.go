package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/discovery"
	"github.com/muurk/nodeboard/internal/logging"
	"github.com/muurk/nodeboard/internal/probe"
	"github.com/muurk/nodeboard/internal/version"
)

// ShutdownTimeout bounds how long Shutdown waits for in-flight work
const ShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host          string
	Port          int
	SeedFile      string        // YAML inventory loaded at startup (optional)
	ProbeInterval time.Duration // Time between probe rounds (0 = DefaultProbeInterval)
	ProbeTimeout  time.Duration // Per-interface probe timeout (0 = probe.DefaultTimeout)
	DisableProbes bool          // Serve statuses as stored without probing
	Advertise     bool          // Announce the API over mDNS
	Instance      string        // mDNS instance name (empty = derived from hostname)
}

// Server is the inventory API process: HTTP handler, store and probe loop
type Server struct {
	config     *Config
	store      *Store
	monitor    *Monitor
	httpServer *http.Server
	listener   net.Listener
	advertiser *discovery.Advertiser
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
}

// New creates a server with an in-memory store, seeded from config.SeedFile
func New(config *Config) (*Server, error) {
	store, err := OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if config.SeedFile != "" {
		devices, err := LoadSeed(config.SeedFile)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if err := Seed(context.Background(), store, devices); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return &Server{
		config:  config,
		store:   store,
		monitor: NewMonitor(store, probe.NewProber(config.ProbeTimeout), config.ProbeInterval),
		httpServer: &http.Server{
			Handler:           NewRouter(store),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Store returns the server's device store
func (s *Server) Store() *Store { return s.store }

// Addr returns the bound listen address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the configured address and starts serving in the background
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	logging.Info("Inventory API listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("version", version.Version),
	)

	if !s.config.DisableProbes {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.monitor.Run(ctx)
		}()
	}

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		txt := []string{"version=" + version.Version, "path=" + deviceapi.DevicesPath}
		adv, err := discovery.Advertise(s.config.Instance, port, txt)
		if err != nil {
			// Non-fatal: clients can still use a configured URL
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.advertiser = adv
			logging.Info("Advertising over mDNS", zap.String("service", discovery.ServiceType), zap.Int("port", port))
		}
	}
	return nil
}

// Serve blocks serving HTTP on the bound listener
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("server is not listening")
	}

	err := s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start starts the server and blocks until a shutdown signal or error
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown stops serving, withdraws the mDNS record and closes the store
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	logging.Info("Shutting down server...")

	s.advertiser.Shutdown()
	if cancel != nil {
		cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Probe loop stopped")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	err := s.store.Close()
	logging.Sync()
	return err
}
