// Package apiserver implements nodeboard-api, the inventory service the
// dashboards talk to.
//
// Devices live in an in-memory SQLite database for the lifetime of the
// process, optionally seeded from a YAML file at startup. A Monitor probes
// every interface on a fixed interval using the probe package and writes the
// observed status back to the store. Operators never set status directly:
// POST /devices keeps the stored status of every interface whose check method
// and address are unchanged.
//
// # Endpoints
//
//	GET  /healthz       {"status": "ok", "devices": N}
//	GET  /devices       JSON array of devices in insertion order
//	GET  /devices/:id   one device, 404 if unknown
//	POST /devices       upsert by id; 201 when created, 200 when replaced
//
// # Usage Example
//
//	srv, err := apiserver.New(&apiserver.Config{
//	    Host:      "0.0.0.0",
//	    Port:      8081,
//	    SeedFile:  "inventory.yaml",
//	    Advertise: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package apiserver
