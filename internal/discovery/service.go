package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service is an inventory API instance found on the network
type Service struct {
	// Instance is the advertised instance name (e.g., "nodeboard-api on rack-pi")
	Instance string

	// Hostname is the mDNS hostname (e.g., "rack-pi.local.")
	Hostname string

	// IP is the service address, IPv4 preferred
	IP string

	// Port is the HTTP port of the API
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "path=/devices", "version=v1.2.0"
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// BaseURL returns the HTTP base URL of the API
func (s *Service) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
