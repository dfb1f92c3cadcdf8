package discovery

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
)

// Advertiser announces the inventory API over mDNS until shut down
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers an instance of ServiceType on port. An empty instance
// name is derived from the hostname. txt entries are "key=value" strings.
func Advertise(instance string, port int, txt []string) (*Advertiser, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "localhost"
		}
		instance = "nodeboard-api on " + host
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the announcement
func (a *Advertiser) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
