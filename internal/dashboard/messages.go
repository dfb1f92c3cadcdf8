package dashboard

import (
	"fmt"
	"net/url"

	"github.com/muurk/nodeboard/internal/inventory"
)

// OpenModalMsg shows the modal for Device in read-only mode
type OpenModalMsg struct {
	Device inventory.Device
}

// RequestEditMsg switches the modal from viewing to editing
type RequestEditMsg struct{}

// FinishEditMsg leaves editing without saving. When Form is set its values
// are decoded and kept locally; nothing is sent to the backend.
type FinishEditMsg struct {
	Form url.Values
}

// SubmitMsg carries the submitted edit form
type SubmitMsg struct {
	Form url.Values
}

// CloseModalMsg asks the modal to hide, abandoning any in-flight submit
type CloseModalMsg struct{}

// ModalClosedMsg is emitted by the modal once it is hidden so the owner can
// clear its selection. It is ignored if the modal was reopened meanwhile.
type ModalClosedMsg struct{}

// DeviceSavedMsg is emitted by the modal after the backend accepted an upsert
type DeviceSavedMsg struct {
	Device inventory.Device
}

type submitResultMsg struct {
	seq    uint64
	device inventory.Device
	err    error
}

// LoadDevicesMsg fetches the device list. Sent at startup and on retry.
type LoadDevicesMsg struct{}

type devicesLoadedMsg struct {
	seq     uint64
	devices []inventory.Device
	err     error
}

// SelectDeviceMsg selects a row and opens the modal for it
type SelectDeviceMsg struct {
	Device inventory.Device
}

// AddNodeMsg is raised by the "add node" control. It has no behaviour yet.
type AddNodeMsg struct{}

// eventName is the name used for a message in transition logs
func eventName(msg any) string {
	switch msg.(type) {
	case OpenModalMsg:
		return "open"
	case RequestEditMsg:
		return "requestEdit"
	case FinishEditMsg:
		return "finishEdit"
	case SubmitMsg:
		return "submit"
	case submitResultMsg:
		return "submitResult"
	case CloseModalMsg:
		return "close"
	case LoadDevicesMsg:
		return "load"
	case devicesLoadedMsg:
		return "loaded"
	case SelectDeviceMsg:
		return "select"
	case ModalClosedMsg:
		return "modalClosed"
	case DeviceSavedMsg:
		return "deviceSaved"
	case AddNodeMsg:
		return "addNode"
	default:
		return fmt.Sprintf("%T", msg)
	}
}
