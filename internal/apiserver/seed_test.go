package apiserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/muurk/nodeboard/internal/inventory"
)

const testSeed = `
devices:
  - name: edge-01
    location: rack A
    interfaces:
      - address: 10.0.0.1
        check_method: ping
        status: Up
      - address: http://10.0.0.1
        check_method: Http
  - id: 3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11
    name: voip-gw
    interfaces:
      - address: sip:10.0.0.5
        check_method: sip-ping
`

func TestParseSeed(t *testing.T) {
	devices, err := ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}

	edge := devices[0]
	if edge.Name != "edge-01" || edge.Location != "rack A" {
		t.Errorf("device 0 = %s/%s, want edge-01/rack A", edge.Name, edge.Location)
	}
	if got := edge.SummaryString(); got != "1/2" {
		t.Errorf("summary = %s, want 1/2", got)
	}
	if edge.Interfaces[1].CheckMethod != inventory.CheckHTTP {
		t.Errorf("method = %s, want Http", edge.Interfaces[1].CheckMethod)
	}

	if devices[1].ID.String() != "3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11" {
		t.Errorf("explicit id = %s, not kept", devices[1].ID)
	}
	if devices[1].Interfaces[0].CheckMethod != inventory.CheckSipPing {
		t.Errorf("method = %s, want SipPing", devices[1].Interfaces[0].CheckMethod)
	}
}

func TestParseSeed_StableIDs(t *testing.T) {
	a, err := ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ParseSeed([]byte(testSeed))

	if a[0].ID != b[0].ID {
		t.Errorf("derived ids differ between loads: %s vs %s", a[0].ID, b[0].ID)
	}
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "devices: ["},
		{"unknown method", "devices:\n  - name: x\n    interfaces:\n      - address: a\n        check_method: telnet\n"},
		{"unknown status", "devices:\n  - name: x\n    interfaces:\n      - address: a\n        check_method: ping\n        status: flapping\n"},
		{"bad id", "devices:\n  - id: nope\n    name: x\n"},
		{"no id or name", "devices:\n  - location: somewhere\n"},
		{"duplicate", "devices:\n  - name: x\n  - name: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSeed([]byte(tt.yaml)); err == nil {
				t.Error("ParseSeed() error = nil, want error")
			}
		})
	}
}

func TestLoadSeedAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	if err := os.WriteFile(path, []byte(testSeed), 0o600); err != nil {
		t.Fatal(err)
	}

	devices, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}

	store := openTestStore(t)
	if err := Seed(context.Background(), store, devices); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	listed, _ := store.List(context.Background())
	if len(listed) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(listed))
	}
	if listed[0].Interfaces[0].Status != inventory.StatusUp {
		t.Error("seeded status should be stored as given")
	}
}

func TestLoadSeed_Missing(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadSeed() of missing file should fail")
	}
}
