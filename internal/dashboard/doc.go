// Package dashboard holds the front-end independent state of the device
// dashboard: the device list Store and the device Modal.
//
// Both are bubbletea reducers. Update never blocks: network round-trips are
// returned as tea.Cmd values whose results come back as messages. Each
// component owns at most one in-flight request; starting a new one cancels the
// old one, and results from a cancelled or superseded request are dropped.
//
// The Store and the Modal keep independent copies of a device. Closing the
// modal is a two step handshake: the modal hides itself and emits
// ModalClosedMsg, and the Store answers by clearing its selection.
package dashboard
