package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/muurk/nodeboard/internal/logging"
)

// wireInterface is the JSON shape of an Interface:
//
//	{"checkMethod": "Ping", "interface": "10.0.0.1", "status": "Up"}
type wireInterface struct {
	CheckMethod string `json:"checkMethod"`
	Interface   string `json:"interface"`
	Status      string `json:"status"`
}

// MarshalJSON implements json.Marshaler
func (i Interface) MarshalJSON() ([]byte, error) {
	if !i.CheckMethod.Valid() {
		return nil, fmt.Errorf("interface %q has invalid check method %d", i.Address, int(i.CheckMethod))
	}
	if !i.Status.Valid() {
		return nil, fmt.Errorf("interface %q has invalid status %d", i.Address, int(i.Status))
	}
	return json.Marshal(wireInterface{
		CheckMethod: i.CheckMethod.String(),
		Interface:   i.Address,
		Status:      i.Status.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Unknown enum text never fails the decode: an unknown check method becomes
// Ping and an unknown status becomes Down, and the substitution is logged.
func (i *Interface) UnmarshalJSON(data []byte) error {
	var w wireInterface
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	decoded := DefaultInterface()
	decoded.Address = w.Interface

	if method, err := ParseCheckMethod(w.CheckMethod); err == nil {
		decoded.CheckMethod = method
	} else {
		logging.LogSubstitution("checkMethod", -1, w.CheckMethod, decoded.CheckMethod.String())
	}

	if status, err := ParseInterfaceStatus(w.Status); err == nil {
		decoded.Status = status
	} else {
		logging.LogSubstitution("status", -1, w.Status, decoded.Status.String())
	}

	*i = decoded
	return nil
}

// wireDevice is the JSON shape of a Device:
//
//	{"id": "<uuid>", "name": "...", "location": "...", "interfaces": [...]}
type wireDevice struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Location   string      `json:"location"`
	Interfaces []Interface `json:"interfaces"`
}

// MarshalJSON implements json.Marshaler
func (d Device) MarshalJSON() ([]byte, error) {
	w := wireDevice{
		ID:         d.ID.String(),
		Name:       d.Name,
		Location:   d.Location,
		Interfaces: d.Interfaces,
	}
	if w.Interfaces == nil {
		w.Interfaces = []Interface{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. A malformed id is an error.
func (d *Device) UnmarshalJSON(data []byte) error {
	var w wireDevice
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("invalid device id %q: %w", w.ID, err)
	}

	if w.Interfaces == nil {
		w.Interfaces = []Interface{}
	}

	*d = Device{
		ID:         id,
		Name:       w.Name,
		Location:   w.Location,
		Interfaces: w.Interfaces,
	}
	return nil
}
