package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

// ModalState is the phase of the device modal
type ModalState int

const (
	ModalHidden ModalState = iota
	ModalViewing
	ModalEditing
	ModalSubmitting
)

// String returns the state name used in logs
func (s ModalState) String() string {
	switch s {
	case ModalHidden:
		return "hidden"
	case ModalViewing:
		return "viewing"
	case ModalEditing:
		return "editing"
	case ModalSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("ModalState(%d)", int(s))
	}
}

// SavedNotice is shown in the modal after a successful submit
const SavedNotice = "Device saved"

// Modal is the view/edit dialog for a single device
type Modal struct {
	State  ModalState
	Device inventory.Device

	// Err is the last submit failure. Cleared on open and on a new submit.
	Err error

	// Notice is a transient success message
	Notice string

	// Substitutions and Dropped describe the last decoded form
	Substitutions []inventory.Substitution
	Dropped       int

	service DeviceService
	timeout time.Duration
	req     request
}

// NewModal creates a hidden modal that saves through service.
// A non-positive timeout selects DefaultRequestTimeout.
func NewModal(service DeviceService, timeout time.Duration) Modal {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return Modal{
		State:   ModalHidden,
		service: service,
		timeout: timeout,
	}
}

// Visible reports whether the modal is shown
func (m Modal) Visible() bool {
	return m.State != ModalHidden
}

// Update applies msg and returns the new modal and any effect to run.
// Messages that are not valid in the current state are ignored.
func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	from := m.State

	switch msg := msg.(type) {
	case OpenModalMsg:
		m.req.abort()
		m.State = ModalViewing
		m.Device = msg.Device.Clone()
		m.clearFeedback()
		m.logTransition(from, msg)
		return m, nil

	case RequestEditMsg:
		if m.State != ModalViewing {
			return m.ignore(msg)
		}
		m.State = ModalEditing
		m.Notice = ""
		m.logTransition(from, msg)
		return m, nil

	case FinishEditMsg:
		if m.State != ModalEditing {
			return m.ignore(msg)
		}
		if msg.Form != nil {
			m.applyForm(inventory.DecodeForm(msg.Form, &m.Device))
		}
		m.State = ModalViewing
		m.logTransition(from, msg)
		return m, nil

	case SubmitMsg:
		if m.State != ModalEditing {
			return m.ignore(msg)
		}
		m.applyForm(inventory.DecodeForm(msg.Form, &m.Device))
		m.Err = nil
		m.Notice = ""
		m.State = ModalSubmitting
		m.logTransition(from, msg)
		cmd := m.submit()
		return m, cmd

	case submitResultMsg:
		if m.State != ModalSubmitting || !m.req.finish(msg.seq) {
			logging.LogIgnoredEvent("modal", m.State.String(), "staleSubmitResult")
			return m, nil
		}
		m.State = ModalViewing
		m.logTransition(from, msg)
		if msg.err != nil {
			m.Err = msg.err
			logging.Warn("Device save failed: " + deviceapi.ShortMessage(msg.err))
			return m, nil
		}
		m.Notice = SavedNotice
		saved := msg.device.Clone()
		return m, func() tea.Msg { return DeviceSavedMsg{Device: saved} }

	case CloseModalMsg:
		if m.State == ModalHidden {
			return m.ignore(msg)
		}
		m.req.abort()
		m.State = ModalHidden
		m.clearFeedback()
		m.logTransition(from, msg)
		return m, func() tea.Msg { return ModalClosedMsg{} }
	}

	return m, nil
}

func (m *Modal) submit() tea.Cmd {
	ctx, seq := m.req.begin(m.timeout)
	device := m.Device.Clone()
	service := m.service

	return func() tea.Msg {
		err := service.UpsertDevice(ctx, device)
		return submitResultMsg{seq: seq, device: device, err: err}
	}
}

// applyForm replaces the shown device with the decoded form. Interfaces the
// edit left unchanged keep their observed status.
func (m *Modal) applyForm(result inventory.FormResult) {
	m.Device = result.Device.CarryStatus(m.Device)
	m.Substitutions = result.Substitutions
	m.Dropped = result.Dropped
}

func (m *Modal) clearFeedback() {
	m.Err = nil
	m.Notice = ""
	m.Substitutions = nil
	m.Dropped = 0
}

func (m Modal) ignore(msg tea.Msg) (Modal, tea.Cmd) {
	logging.LogIgnoredEvent("modal", m.State.String(), eventName(msg))
	return m, nil
}

func (m Modal) logTransition(from ModalState, msg tea.Msg) {
	logging.LogTransition("modal", from.String(), m.State.String(), eventName(msg))
}
