package inventory

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/logging"
)

// Form field names used by the device edit form
const (
	FieldName        = "device-name"
	FieldLocation    = "device-location"
	FieldAddress     = "iface-address"
	FieldCheckMethod = "iface-check-method"
)

// Substitution records a form value that could not be parsed and the default
// used in its place.
type Substitution struct {
	Field    string // Form field name
	Index    int    // Row index within the multi-valued field
	Raw      string // Text as submitted
	Fallback string // Canonical name of the value used instead
}

// FormResult is the outcome of decoding an edit form
type FormResult struct {
	Device Device

	// Substitutions lists every check method that failed to parse and was
	// replaced with Ping. Empty when every row parsed cleanly.
	Substitutions []Substitution

	// Dropped is the number of trailing iface-address / iface-check-method
	// entries that had no partner in the other field.
	Dropped int
}

// Clean reports whether the form decoded without substitutions or dropped rows
func (r FormResult) Clean() bool {
	return len(r.Substitutions) == 0 && r.Dropped == 0
}

// DecodeForm converts a submitted device form into a Device.
//
// iface-address and iface-check-method are zipped by position. When their
// lengths differ only the shorter length is used and the remainder is counted
// in Dropped. A check method that does not parse becomes Ping and is recorded
// in Substitutions. Decoded interfaces are always Down: status is observed by
// the backend, never entered by the operator.
//
// When base is non-nil the result keeps base.ID, so submitting an edit updates
// the same device. With a nil base a new ID is generated.
func DecodeForm(form url.Values, base *Device) FormResult {
	var device Device
	if base != nil {
		device.ID = base.ID
	} else {
		device = NewDevice()
	}

	device.Name = strings.TrimSpace(form.Get(FieldName))
	device.Location = strings.TrimSpace(form.Get(FieldLocation))

	addresses := form[FieldAddress]
	methods := form[FieldCheckMethod]

	pairs := len(addresses)
	if len(methods) < pairs {
		pairs = len(methods)
	}

	result := FormResult{}
	device.Interfaces = make([]Interface, 0, pairs)

	for i := 0; i < pairs; i++ {
		iface := DefaultInterface()
		iface.Address = strings.TrimSpace(addresses[i])

		raw := strings.TrimSpace(methods[i])
		method, err := ParseCheckMethod(raw)
		if err != nil {
			result.Substitutions = append(result.Substitutions, Substitution{
				Field:    FieldCheckMethod,
				Index:    i,
				Raw:      methods[i],
				Fallback: iface.CheckMethod.String(),
			})
			logging.LogSubstitution(FieldCheckMethod, i, methods[i], iface.CheckMethod.String())
		} else {
			iface.CheckMethod = method
		}

		device.Interfaces = append(device.Interfaces, iface)
	}

	result.Dropped = len(addresses) + len(methods) - 2*pairs
	if result.Dropped > 0 {
		logging.Warn("Unpaired interface form entries dropped",
			zap.Int("addresses", len(addresses)),
			zap.Int("check_methods", len(methods)),
			zap.Int("dropped", result.Dropped),
		)
	}

	result.Device = device
	return result
}

// EncodeForm renders d as the form DecodeForm accepts.
// Interface status is not part of the form.
func EncodeForm(d Device) url.Values {
	form := url.Values{}
	form.Set(FieldName, d.Name)
	form.Set(FieldLocation, d.Location)
	for _, iface := range d.Interfaces {
		form.Add(FieldAddress, iface.Address)
		form.Add(FieldCheckMethod, iface.CheckMethod.String())
	}
	return form
}
