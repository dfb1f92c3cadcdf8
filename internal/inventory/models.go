package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CheckMethod is the monitoring technique used to determine interface liveness.
// The zero value is not a valid method.
type CheckMethod int

const (
	CheckHTTP CheckMethod = iota + 1
	CheckPing
	CheckSipPing
)

// CheckMethods lists every valid check method in display order.
var CheckMethods = []CheckMethod{CheckHTTP, CheckPing, CheckSipPing}

// String returns the canonical name of the check method
func (c CheckMethod) String() string {
	switch c {
	case CheckHTTP:
		return "Http"
	case CheckPing:
		return "Ping"
	case CheckSipPing:
		return "SipPing"
	default:
		return fmt.Sprintf("CheckMethod(%d)", int(c))
	}
}

// Valid reports whether c is one of the defined check methods
func (c CheckMethod) Valid() bool {
	return c >= CheckHTTP && c <= CheckSipPing
}

// ParseCheckMethod parses free text into a CheckMethod.
// Matching is case-insensitive over "http", "ping", "sipping" and the
// hyphenated alias "sip-ping". Anything else returns a *ParseError.
func ParseCheckMethod(text string) (CheckMethod, error) {
	switch strings.ToLower(text) {
	case "http":
		return CheckHTTP, nil
	case "ping":
		return CheckPing, nil
	case "sipping", "sip-ping":
		return CheckSipPing, nil
	default:
		return 0, &ParseError{Kind: "check method", Text: text}
	}
}

// MarshalText implements encoding.TextMarshaler
func (c CheckMethod) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid check method %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *CheckMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseCheckMethod(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// InterfaceStatus is the observed health of an interface.
// The zero value is not a valid status.
type InterfaceStatus int

const (
	StatusUp InterfaceStatus = iota + 1
	StatusDown
)

// String returns the canonical name of the status
func (s InterfaceStatus) String() string {
	switch s {
	case StatusUp:
		return "Up"
	case StatusDown:
		return "Down"
	default:
		return fmt.Sprintf("InterfaceStatus(%d)", int(s))
	}
}

// Valid reports whether s is one of the defined statuses
func (s InterfaceStatus) Valid() bool {
	return s == StatusUp || s == StatusDown
}

// ParseInterfaceStatus parses free text into an InterfaceStatus (case-insensitive)
func ParseInterfaceStatus(text string) (InterfaceStatus, error) {
	switch strings.ToLower(text) {
	case "up":
		return StatusUp, nil
	case "down":
		return StatusDown, nil
	default:
		return 0, &ParseError{Kind: "interface status", Text: text}
	}
}

// MarshalText implements encoding.TextMarshaler
func (s InterfaceStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid interface status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *InterfaceStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseInterfaceStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Interface is one monitored network endpoint on a device
type Interface struct {
	CheckMethod CheckMethod
	Address     string
	Status      InterfaceStatus
}

// DefaultInterface returns an interface checked by ping, with no address, Down.
func DefaultInterface() Interface {
	return Interface{
		CheckMethod: CheckPing,
		Address:     "",
		Status:      StatusDown,
	}
}

// Device is a managed network node.
//
// ID is assigned once when the device is created and identifies it from then
// on. Interface order is display order.
type Device struct {
	ID         uuid.UUID
	Name       string
	Location   string
	Interfaces []Interface
}

// NewDevice creates an empty device with a freshly generated ID
func NewDevice() Device {
	return Device{
		ID:         uuid.New(),
		Interfaces: []Interface{},
	}
}

// InterfaceSummary returns the number of interfaces that are Up and the total
// number of interfaces.
func (d Device) InterfaceSummary() (up int, total int) {
	for _, iface := range d.Interfaces {
		if iface.Status == StatusUp {
			up++
		}
	}
	return up, len(d.Interfaces)
}

// SummaryString formats InterfaceSummary as "up/total" for the list view
func (d Device) SummaryString() string {
	up, total := d.InterfaceSummary()
	return fmt.Sprintf("%d/%d", up, total)
}

// Clone returns a copy of d that shares no memory with it
func (d Device) Clone() Device {
	c := d
	c.Interfaces = make([]Interface, len(d.Interfaces))
	copy(c.Interfaces, d.Interfaces)
	return c
}

// CarryStatus returns a copy of d in which each interface takes the status
// of the interface in prev with the same check method and address. Interfaces
// with no counterpart in prev are Down. Repeated pairs match in order.
func (d Device) CarryStatus(prev Device) Device {
	observed := make(map[string][]InterfaceStatus, len(prev.Interfaces))
	for _, iface := range prev.Interfaces {
		k := iface.key()
		observed[k] = append(observed[k], iface.Status)
	}

	out := d.Clone()
	for i := range out.Interfaces {
		iface := &out.Interfaces[i]
		iface.Status = StatusDown
		k := iface.key()
		if statuses := observed[k]; len(statuses) > 0 {
			iface.Status = statuses[0]
			observed[k] = statuses[1:]
		}
	}
	return out
}

// key identifies an interface by what is probed
func (i Interface) key() string {
	return i.CheckMethod.String() + "\x00" + i.Address
}

// String returns a human-readable description of the device
func (d Device) String() string {
	return fmt.Sprintf("%s (%s) at %s [%s]", d.Name, d.ID, d.Location, d.SummaryString())
}
