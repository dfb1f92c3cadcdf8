package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "IPv4 with TXT",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "nodeboard-api on pi"},
				HostName:      "pi.local.",
				Port:          8081,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
				Text:          []string{"path=/devices", "version=v1.0.0"},
			},
			wantIP:   "192.168.1.20",
			wantPort: 8081,
		},
		{
			name: "IPv6 fallback",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				Port:     9000,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 9000,
		},
		{
			name: "default port",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "pi.local.",
				Port:     8081,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if svc != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if svc.IP != tt.wantIP {
				t.Errorf("IP = %s, want %s", svc.IP, tt.wantIP)
			}
			if svc.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", svc.Port, tt.wantPort)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	svc := parseServiceEntry(&zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "nodeboard-api on pi"},
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
		Port:          8081,
		Text:          []string{"path=/devices", "readonly"},
	})

	if svc.GetMetadata("path") != "/devices" {
		t.Errorf("path = %q, want /devices", svc.GetMetadata("path"))
	}
	if _, ok := svc.Metadata["readonly"]; !ok {
		t.Error("key without value should be kept")
	}
	if svc.Instance != "nodeboard-api on pi" {
		t.Errorf("Instance = %q", svc.Instance)
	}
}

func TestService_BaseURL(t *testing.T) {
	tests := []struct {
		svc  *Service
		want string
	}{
		{&Service{IP: "192.168.1.20", Port: 8081}, "http://192.168.1.20:8081"},
		{&Service{IP: "fe80::1", Port: 8081}, "http://[fe80::1]:8081"},
	}
	for _, tt := range tests {
		if got := tt.svc.BaseURL(); got != tt.want {
			t.Errorf("BaseURL() = %s, want %s", got, tt.want)
		}
	}
}

func TestService_String(t *testing.T) {
	svc := &Service{Instance: "api", Hostname: "pi.local.", IP: "10.0.0.5", Port: 8081}
	want := "api (pi.local.) at 10.0.0.5:8081"
	if svc.String() != want {
		t.Errorf("String() = %q, want %q", svc.String(), want)
	}
}

func TestNewScanner(t *testing.T) {
	if NewScanner().Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", NewScanner().Timeout, DefaultScanTimeout)
	}
}

func TestAdvertiserShutdownNil(t *testing.T) {
	var a *Advertiser
	a.Shutdown()
}
