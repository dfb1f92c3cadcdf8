// Package probe observes interface health.
//
// Each check method has a Checker:
//
//	Http     GET the address; 2xx or 3xx is up
//	Ping     one ICMP echo request; a matching reply is up
//	SipPing  SIP OPTIONS over UDP; any SIP/2.0 response is up
//
// A Prober dispatches on the interface's check method and turns every
// failure into StatusDown.
package probe
