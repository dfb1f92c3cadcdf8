package dashboard

import (
	"context"
	"time"

	"github.com/muurk/nodeboard/internal/inventory"
)

// DefaultRequestTimeout bounds every list and upsert round-trip
const DefaultRequestTimeout = 10 * time.Second

// DeviceService is the inventory backend as seen by the reducers.
// *deviceapi.Client satisfies it.
type DeviceService interface {
	ListDevices(ctx context.Context) ([]inventory.Device, error)
	UpsertDevice(ctx context.Context, device inventory.Device) error
}
