// Package deviceapi provides an HTTP client for the inventory API.
//
// The API exposes one collection resource:
//
//	GET  /devices   JSON array of devices
//	POST /devices   upsert one device, keyed by id
//
// Every call takes a context so callers can bound or abandon it. Transient
// failures (timeouts, refused connections, 5xx responses) are retried with
// exponential backoff; anything else is returned immediately.
//
// # Usage Example
//
//	client := deviceapi.NewClientWithURL("http://127.0.0.1:8081")
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	devices, err := client.ListDevices(ctx)
//	if err != nil {
//	    fmt.Println(deviceapi.ShortMessage(err))
//	    fmt.Println(deviceapi.TroubleshootingHint(err))
//	    return
//	}
//
// # Error Handling
//
// All errors returned by the client are *APIError values. Use IsNetworkError,
// IsHTTPError, IsDecodeError and IsRetryable to branch on them. A decode error
// means the server answered but the body was not a device list, which is
// usually a misconfigured base URL rather than a server fault.
package deviceapi
