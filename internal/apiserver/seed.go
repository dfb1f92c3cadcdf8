package apiserver

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

// seedNamespace derives stable ids for seed devices that do not name one
var seedNamespace = uuid.MustParse("6f1c3a52-2b1e-4c55-9a0e-7d4be7a1f3c0")

// SeedFile is the YAML layout accepted by LoadSeed:
//
//	devices:
//	  - name: edge-01
//	    location: rack 3
//	    interfaces:
//	      - address: 10.0.0.1
//	        check_method: Ping
type SeedFile struct {
	Devices []SeedDevice `yaml:"devices"`
}

// SeedDevice is one device entry in a seed file
type SeedDevice struct {
	ID         string          `yaml:"id,omitempty"`
	Name       string          `yaml:"name"`
	Location   string          `yaml:"location,omitempty"`
	Interfaces []SeedInterface `yaml:"interfaces,omitempty"`
}

// SeedInterface is one interface entry in a seed file
type SeedInterface struct {
	Address     string `yaml:"address"`
	CheckMethod string `yaml:"check_method"`
	Status      string `yaml:"status,omitempty"`
}

// LoadSeed reads a seed file from disk
func LoadSeed(path string) ([]inventory.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML into devices.
//
// Unlike the wire format, a seed file is rejected on an unknown check method
// or status. A device without an id gets one derived from its name, so
// restarting with the same file yields the same ids.
func ParseSeed(data []byte) ([]inventory.Device, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	devices := make([]inventory.Device, 0, len(file.Devices))
	seen := map[uuid.UUID]bool{}
	for i, entry := range file.Devices {
		d := inventory.Device{
			Name:       entry.Name,
			Location:   entry.Location,
			Interfaces: make([]inventory.Interface, 0, len(entry.Interfaces)),
		}

		if entry.ID != "" {
			id, err := uuid.Parse(entry.ID)
			if err != nil {
				return nil, fmt.Errorf("device %d: invalid id %q: %w", i, entry.ID, err)
			}
			d.ID = id
		} else {
			if entry.Name == "" {
				return nil, fmt.Errorf("device %d: a device without an id needs a name", i)
			}
			d.ID = uuid.NewSHA1(seedNamespace, []byte(entry.Name))
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("device %d: duplicate id %s", i, d.ID)
		}
		seen[d.ID] = true

		for j, raw := range entry.Interfaces {
			iface := inventory.DefaultInterface()
			iface.Address = raw.Address

			method, err := inventory.ParseCheckMethod(raw.CheckMethod)
			if err != nil {
				return nil, fmt.Errorf("device %d interface %d: %w", i, j, err)
			}
			iface.CheckMethod = method

			if raw.Status != "" {
				status, err := inventory.ParseInterfaceStatus(raw.Status)
				if err != nil {
					return nil, fmt.Errorf("device %d interface %d: %w", i, j, err)
				}
				iface.Status = status
			}
			d.Interfaces = append(d.Interfaces, iface)
		}

		devices = append(devices, d)
	}
	return devices, nil
}

// Seed writes devices into the store as given
func Seed(ctx context.Context, store *Store, devices []inventory.Device) error {
	for _, d := range devices {
		if _, err := store.Put(ctx, d); err != nil {
			return fmt.Errorf("failed to seed %s: %w", d.ID, err)
		}
	}
	logging.Info("Inventory seeded", zap.Int("devices", len(devices)))
	return nil
}
