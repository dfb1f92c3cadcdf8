package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

// Store owns the device list, the current selection and the modal
type Store struct {
	Devices      []inventory.Device
	Selected     *inventory.Device
	ModalVisible bool
	Modal        Modal

	// Loading is true while a fetch is in flight
	Loading bool

	// LoadErr is the last fetch failure. The previous list is kept.
	LoadErr error

	service DeviceService
	timeout time.Duration
	req     request
}

// NewStore creates an empty store backed by service.
// A non-positive timeout selects DefaultRequestTimeout.
func NewStore(service DeviceService, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return Store{
		Devices: []inventory.Device{},
		Modal:   NewModal(service, timeout),
		service: service,
		timeout: timeout,
	}
}

// Init issues the initial fetch
func (s Store) Init() tea.Cmd {
	return func() tea.Msg { return LoadDevicesMsg{} }
}

// Update applies msg. Messages the store does not handle itself are
// forwarded to the modal.
func (s Store) Update(msg tea.Msg) (Store, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadDevicesMsg:
		s.Loading = true
		cmd := s.load()
		return s, cmd

	case devicesLoadedMsg:
		if !s.req.finish(msg.seq) {
			logging.LogIgnoredEvent("store", "loading", "staleDeviceList")
			return s, nil
		}
		s.Loading = false
		if msg.err != nil {
			s.LoadErr = msg.err
			logging.Warn("Device list fetch failed", zap.Error(msg.err), zap.Int("kept", len(s.Devices)))
			return s, nil
		}
		s.LoadErr = nil
		s.Devices = msg.devices
		if s.Devices == nil {
			s.Devices = []inventory.Device{}
		}
		logging.Debug("Device list loaded", zap.Int("devices", len(msg.devices)))
		return s, nil

	case SelectDeviceMsg:
		selected := msg.Device.Clone()
		s.Selected = &selected
		s.ModalVisible = true
		var cmd tea.Cmd
		s.Modal, cmd = s.Modal.Update(OpenModalMsg{Device: selected.Clone()})
		return s, cmd

	case ModalClosedMsg:
		if s.Modal.Visible() {
			// Reopened before the close was delivered
			logging.LogIgnoredEvent("store", "modalOpen", "staleModalClosed")
			return s, nil
		}
		s.DeselectAndClose()
		return s, nil

	case DeviceSavedMsg:
		s.upsert(msg.Device)
		return s, nil

	case AddNodeMsg:
		logging.Debug("Add node requested")
		return s, nil
	}

	var cmd tea.Cmd
	s.Modal, cmd = s.Modal.Update(msg)
	return s, cmd
}

// DeselectAndClose clears the selection and hides the modal region
func (s *Store) DeselectAndClose() {
	s.ModalVisible = false
	s.Selected = nil
}

// FindByID returns the device with id, if present
func (s Store) FindByID(id uuid.UUID) (inventory.Device, bool) {
	for _, d := range s.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return inventory.Device{}, false
}

func (s *Store) load() tea.Cmd {
	ctx, seq := s.req.begin(s.timeout)
	service := s.service

	return func() tea.Msg {
		devices, err := service.ListDevices(ctx)
		return devicesLoadedMsg{seq: seq, devices: devices, err: err}
	}
}

func (s *Store) upsert(device inventory.Device) {
	saved := device.Clone()
	devices := make([]inventory.Device, len(s.Devices), len(s.Devices)+1)
	copy(devices, s.Devices)

	replaced := false
	for i := range devices {
		if devices[i].ID == saved.ID {
			devices[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		devices = append(devices, saved)
	}
	s.Devices = devices

	if s.Selected != nil && s.Selected.ID == saved.ID {
		selected := saved.Clone()
		s.Selected = &selected
	}
}
