package apiserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/muurk/nodeboard/internal/inventory"
)

// ErrNotFound is returned when a device id is unknown
var ErrNotFound = errors.New("device not found")

// Store keeps devices in an in-memory SQLite database. Device order is
// insertion order; interface order is the order last written.
type Store struct {
	db *sql.DB
}

// OpenMemory opens a private in-memory store
func OpenMemory() (*Store, error) {
	return Open(fmt.Sprintf("file:nodeboard-%s?mode=memory&cache=shared", uuid.NewString()))
}

// Open opens the store at dsn and creates the schema
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// An in-memory database lives as long as its last connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	_, _ = db.Exec("PRAGMA foreign_keys=ON;")

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS devices (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS interfaces (
  device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
  idx INTEGER NOT NULL,
  check_method TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  PRIMARY KEY (device_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_devices_position ON devices(position);
`
	_, err := s.db.Exec(schema)
	return err
}

// List returns every device in display order
func (s *Store) List(ctx context.Context) ([]inventory.Device, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location FROM devices ORDER BY position`)
	if err != nil {
		return nil, err
	}

	devices := []inventory.Device{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var rawID string
		d := inventory.Device{Interfaces: []inventory.Interface{}}
		if err := rows.Scan(&rawID, &d.Name, &d.Location); err != nil {
			rows.Close()
			return nil, err
		}
		if d.ID, err = uuid.Parse(rawID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("corrupt device id %q: %w", rawID, err)
		}
		index[d.ID] = len(devices)
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	ifaceRows, err := s.db.QueryContext(ctx,
		`SELECT device_id, check_method, address, status FROM interfaces ORDER BY device_id, idx`)
	if err != nil {
		return nil, err
	}
	defer ifaceRows.Close()

	for ifaceRows.Next() {
		var rawID, method, status string
		var iface inventory.Interface
		if err := ifaceRows.Scan(&rawID, &method, &iface.Address, &status); err != nil {
			return nil, err
		}
		if err := decodeInterface(&iface, method, status); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt device id %q: %w", rawID, err)
		}
		if i, ok := index[id]; ok {
			devices[i].Interfaces = append(devices[i].Interfaces, iface)
		}
	}
	return devices, ifaceRows.Err()
}

// Get returns one device
func (s *Store) Get(ctx context.Context, id uuid.UUID) (inventory.Device, error) {
	d := inventory.Device{ID: id, Interfaces: []inventory.Interface{}}
	err := s.db.QueryRowContext(ctx, `SELECT name, location FROM devices WHERE id = ?`, id.String()).
		Scan(&d.Name, &d.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Device{}, ErrNotFound
	}
	if err != nil {
		return inventory.Device{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT check_method, address, status FROM interfaces WHERE device_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return inventory.Device{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var iface inventory.Interface
		var method, status string
		if err := rows.Scan(&method, &iface.Address, &status); err != nil {
			return inventory.Device{}, err
		}
		if err := decodeInterface(&iface, method, status); err != nil {
			return inventory.Device{}, err
		}
		d.Interfaces = append(d.Interfaces, iface)
	}
	return d, rows.Err()
}

// Upsert stores d keyed by its id and reports whether it was new.
//
// Interface status is observed, not entered: an interface whose check method
// and address already existed on the device keeps its stored status, and any
// other interface starts Down.
func (s *Store) Upsert(ctx context.Context, d inventory.Device) (inventory.Device, bool, error) {
	return s.write(ctx, d, true)
}

// Put stores d exactly as given, statuses included
func (s *Store) Put(ctx context.Context, d inventory.Device) (bool, error) {
	_, created, err := s.write(ctx, d, false)
	return created, err
}

func (s *Store) write(ctx context.Context, d inventory.Device, preserve bool) (inventory.Device, bool, error) {
	for i, iface := range d.Interfaces {
		if !iface.CheckMethod.Valid() {
			return inventory.Device{}, false, fmt.Errorf("interface %d: invalid check method", i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return inventory.Device{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	id := d.ID.String()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM devices WHERE id = ?`, id).Scan(&exists); err != nil {
		return inventory.Device{}, false, err
	}
	created := exists == 0

	var previous inventory.Device
	if preserve && !created {
		rows, err := tx.QueryContext(ctx,
			`SELECT check_method, address, status FROM interfaces WHERE device_id = ? ORDER BY idx`, id)
		if err != nil {
			return inventory.Device{}, false, err
		}
		for rows.Next() {
			var iface inventory.Interface
			var method, status string
			if err := rows.Scan(&method, &iface.Address, &status); err != nil {
				rows.Close()
				return inventory.Device{}, false, err
			}
			if err := decodeInterface(&iface, method, status); err != nil {
				rows.Close()
				return inventory.Device{}, false, err
			}
			previous.Interfaces = append(previous.Interfaces, iface)
		}
		rows.Close()
	}

	now := time.Now().Unix()
	if created {
		_, err = tx.ExecContext(ctx, `
INSERT INTO devices (id, name, location, position, updated_at)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM devices), ?)`,
			id, d.Name, d.Location, now)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE devices SET name = ?, location = ?, updated_at = ? WHERE id = ?`,
			d.Name, d.Location, now, id)
	}
	if err != nil {
		return inventory.Device{}, false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM interfaces WHERE device_id = ?`, id); err != nil {
		return inventory.Device{}, false, err
	}

	stored := d.Clone()
	if preserve {
		stored = d.CarryStatus(previous)
	}
	for i := range stored.Interfaces {
		iface := &stored.Interfaces[i]
		if !iface.Status.Valid() {
			iface.Status = inventory.StatusDown
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interfaces (device_id, idx, check_method, address, status) VALUES (?, ?, ?, ?, ?)`,
			id, i, iface.CheckMethod.String(), iface.Address, iface.Status.String()); err != nil {
			return inventory.Device{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return inventory.Device{}, false, err
	}
	return stored, created, nil
}

// SetStatus records an observed status for the interface at idx, provided it
// still has the given check method and address.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, idx int, iface inventory.Interface, status inventory.InterfaceStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE interfaces SET status = ?
WHERE device_id = ? AND idx = ? AND check_method = ? AND address = ?`,
		status.String(), id.String(), idx, iface.CheckMethod.String(), iface.Address)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Count returns the number of devices
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM devices`).Scan(&n)
	return n, err
}

func decodeInterface(iface *inventory.Interface, method, status string) error {
	var err error
	if iface.CheckMethod, err = inventory.ParseCheckMethod(method); err != nil {
		return err
	}
	iface.Status, err = inventory.ParseInterfaceStatus(status)
	return err
}
