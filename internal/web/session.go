package web

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/muurk/nodeboard/internal/dashboard"
	"github.com/muurk/nodeboard/internal/inventory"
)

// Session serialises every browser action through one dashboard.Store.
// Commands returned by the store run on their own goroutines and post their
// result back through Dispatch.
type Session struct {
	mu          sync.Mutex
	store       dashboard.Store
	onChange    func()
	synchronous bool
	wg          sync.WaitGroup
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithChangeHook sets a function called after a command result changes state
func WithChangeHook(fn func()) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// WithSynchronousCommands runs commands inline on the dispatching goroutine
func WithSynchronousCommands() SessionOption {
	return func(s *Session) { s.synchronous = true }
}

// NewSession creates a session backed by service
func NewSession(service dashboard.DeviceService, timeout time.Duration, opts ...SessionOption) *Session {
	s := &Session{store: dashboard.NewStore(service, timeout)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init runs the store's startup command
func (s *Session) Init() {
	s.mu.Lock()
	cmd := s.store.Init()
	s.mu.Unlock()
	s.run(cmd)
}

// Dispatch applies msg to the store and runs the resulting command
func (s *Session) Dispatch(msg tea.Msg) {
	s.mu.Lock()
	next, cmd := s.store.Update(msg)
	s.store = next
	s.mu.Unlock()
	s.run(cmd)
}

// Select opens the modal for the device with id. It reports false when the
// id is not in the current list.
func (s *Session) Select(id uuid.UUID) bool {
	s.mu.Lock()
	device, ok := s.store.FindByID(id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.Dispatch(dashboard.SelectDeviceMsg{Device: device})
	return true
}

// Store returns a copy of the current store state
func (s *Session) Store() dashboard.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Devices returns a copy of the current device list
func (s *Session) Devices() []inventory.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Device, len(s.store.Devices))
	for i, d := range s.store.Devices {
		out[i] = d.Clone()
	}
	return out
}

// Wait blocks until every running command has delivered its result
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if s.synchronous {
		s.execute(cmd)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(cmd)
	}()
}

func (s *Session) execute(cmd tea.Cmd) {
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			s.run(c)
		}
	default:
		s.Dispatch(msg)
		if s.onChange != nil {
			s.onChange()
		}
	}
}
