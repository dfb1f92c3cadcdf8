// Package inventory defines the device and interface data model shown by the
// dashboard.
//
// A Device is a managed network node identified by a UUID, with a name, a
// location and an ordered list of monitored interfaces. Each Interface has a
// check method (Http, Ping or SipPing) and an observed status (Up or Down).
//
// # Text Forms
//
// Both enumerations format to their canonical name and parse
// case-insensitively:
//
//	m, err := inventory.ParseCheckMethod("sip-ping") // CheckSipPing
//	s, err := inventory.ParseInterfaceStatus("UP")   // StatusUp
//
// # JSON
//
// Devices use the inventory API wire format:
//
//	{"id": "6f1c...", "name": "core-sw-1", "location": "Rack A3",
//	 "interfaces": [{"checkMethod": "Ping", "interface": "10.0.0.1", "status": "Up"}]}
//
// Unknown enum text in a payload is replaced with a default (Ping, Down) and
// logged rather than failing the whole list.
//
// # Forms
//
// DecodeForm turns a submitted edit form into a Device. See its documentation
// for the pairing and fallback rules.
package inventory
