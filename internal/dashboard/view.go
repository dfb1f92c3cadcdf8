package dashboard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/inventory"
)

// InterfaceRow is one interface as shown in the modal
type InterfaceRow struct {
	Index       int
	Address     string
	CheckMethod string
	Status      string
	Up          bool
}

// ModalView is everything a front end needs to draw the modal
type ModalView struct {
	Visible   bool
	Editable  bool
	CanSubmit bool
	Busy      bool

	ID       string
	Name     string
	Location string
	Summary  string
	Rows     []InterfaceRow
	Methods  []string
	Error    string
	Hint     string
	Notice   string
	Warnings []string
}

// View renders the modal state. In viewing mode every field is static text.
// In editing mode name, location and each row's address and check method are
// editable; status is never editable.
func (m Modal) View() ModalView {
	v := ModalView{
		Visible:   m.Visible(),
		Editable:  m.State == ModalEditing,
		CanSubmit: m.State == ModalEditing,
		Busy:      m.State == ModalSubmitting,
		Notice:    m.Notice,
	}
	if !v.Visible {
		return v
	}

	v.ID = m.Device.ID.String()
	v.Name = m.Device.Name
	v.Location = m.Device.Location
	v.Summary = m.Device.SummaryString()

	for _, method := range inventory.CheckMethods {
		v.Methods = append(v.Methods, method.String())
	}

	v.Rows = make([]InterfaceRow, 0, len(m.Device.Interfaces))
	for i, iface := range m.Device.Interfaces {
		v.Rows = append(v.Rows, InterfaceRow{
			Index:       i,
			Address:     iface.Address,
			CheckMethod: iface.CheckMethod.String(),
			Status:      iface.Status.String(),
			Up:          iface.Status == inventory.StatusUp,
		})
	}

	if m.Err != nil {
		v.Error = deviceapi.ShortMessage(m.Err)
		v.Hint = deviceapi.TroubleshootingHint(m.Err)
	}

	for _, s := range m.Substitutions {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("Row %d: unknown check method %q, using %s", s.Index+1, s.Raw, s.Fallback))
	}
	if m.Dropped > 0 {
		v.Warnings = append(v.Warnings,
			fmt.Sprintf("%d incomplete interface entries were discarded", m.Dropped))
	}
	return v
}

// Row is one device as shown in the list
type Row struct {
	ID       uuid.UUID
	Name     string
	Location string
	State    string
}

// Rows returns the device list in display order
func (s Store) Rows() []Row {
	rows := make([]Row, 0, len(s.Devices))
	for _, d := range s.Devices {
		rows = append(rows, Row{
			ID:       d.ID,
			Name:     d.Name,
			Location: d.Location,
			State:    d.SummaryString(),
		})
	}
	return rows
}

// LoadError returns the banner text for a failed fetch, or "" when the last
// fetch succeeded.
func (s Store) LoadError() string {
	if s.LoadErr == nil {
		return ""
	}
	if deviceapi.IsDecodeError(s.LoadErr) {
		return "The server returned an unreadable device list"
	}
	return deviceapi.ShortMessage(s.LoadErr)
}
