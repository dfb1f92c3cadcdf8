package deviceapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/nodeboard/internal/inventory"
)

const mockDevicesResponse = `[
  {"id":"3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11","name":"edge-01","location":"rack A",
   "interfaces":[
     {"checkMethod":"Ping","interface":"10.0.0.1","status":"Up"},
     {"checkMethod":"Http","interface":"http://10.0.0.1","status":"Down"}]}
]`

func newTestClient(url string) *Client {
	client := NewClientWithURL(url)
	client.RetryDelay = time.Millisecond
	client.MaxRetryDelay = 2 * time.Millisecond
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("127.0.0.1", 8081)

	if client.BaseURL != "http://127.0.0.1:8081" {
		t.Errorf("BaseURL = %s, want http://127.0.0.1:8081", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
}

func TestNewClientWithURL_TrimsSlash(t *testing.T) {
	client := NewClientWithURL("http://api.local:8081/")

	if client.BaseURL != "http://api.local:8081" {
		t.Errorf("BaseURL = %s, want http://api.local:8081", client.BaseURL)
	}
}

func TestSetRetry(t *testing.T) {
	client := NewClient("127.0.0.1", 8081)
	client.SetRetry(5, 2*time.Second)

	if client.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", client.MaxRetries)
	}
	if client.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", client.RetryDelay)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != HealthPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestListDevices_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != DevicesPath {
			t.Errorf("request = %s %s, want GET %s", r.Method, r.URL.Path, DevicesPath)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockDevicesResponse))
	}))
	defer server.Close()

	devices, err := newTestClient(server.URL).ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("len(devices) = %d, want 1", len(devices))
	}
	if devices[0].Name != "edge-01" {
		t.Errorf("Name = %s, want edge-01", devices[0].Name)
	}
	if got := devices[0].SummaryString(); got != "1/2" {
		t.Errorf("SummaryString() = %s, want 1/2", got)
	}
}

func TestListDevices_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	devices, err := newTestClient(server.URL).ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if devices == nil || len(devices) != 0 {
		t.Errorf("devices = %#v, want empty non-nil slice", devices)
	}
}

func TestListDevices_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListDevices(context.Background())
	if err == nil {
		t.Fatal("ListDevices() should return error for 404")
	}
	if !IsHTTPError(err) {
		t.Errorf("error should be HTTP error, got %v", err)
	}
	if IsDecodeError(err) {
		t.Error("HTTP error should not be a decode error")
	}
}

func TestListDevices_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>hello</html>`},
		{"object not array", `{"id":"x"}`},
		{"bad id", `[{"id":"not-a-uuid","name":"a","location":"b","interfaces":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).ListDevices(context.Background())
			if !IsDecodeError(err) {
				t.Errorf("error = %v, want decode error", err)
			}
			if IsRetryable(err) {
				t.Error("decode errors should not be retryable")
			}
		})
	}
}

func TestListDevices_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices() error = %v, want success after retry", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestListDevices_NoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, _ = newTestClient(server.URL).ListDevices(context.Background())
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestListDevices_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).ListDevices(ctx)
	if !IsCanceled(err) {
		t.Errorf("error = %v, want canceled", err)
	}
}

func TestListDevices_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.MaxRetries = 0

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListDevices(ctx)
	if err == nil {
		t.Fatal("ListDevices() should time out")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Type != ErrTypeTimeout {
		t.Errorf("Type = %v, want %v", apiErr.Type, ErrTypeTimeout)
	}
}

func TestUpsertDevice(t *testing.T) {
	device := inventory.Device{
		ID:       uuid.MustParse("3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11"),
		Name:     "edge-01",
		Location: "rack A",
		Interfaces: []inventory.Interface{
			{CheckMethod: inventory.CheckSipPing, Address: "10.0.0.9", Status: inventory.StatusDown},
		},
	}

	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent, http.StatusResetContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var received inventory.Device
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Method = %s, want POST", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %s, want application/json", ct)
				}
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &received); err != nil {
					t.Errorf("server could not decode body: %v", err)
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			if err := newTestClient(server.URL).UpsertDevice(context.Background(), device); err != nil {
				t.Fatalf("UpsertDevice() error = %v", err)
			}
			if received.ID != device.ID {
				t.Errorf("received ID = %s, want %s", received.ID, device.ID)
			}
			if len(received.Interfaces) != 1 || received.Interfaces[0].CheckMethod != inventory.CheckSipPing {
				t.Errorf("received interfaces = %+v", received.Interfaces)
			}
		})
	}
}

func TestUpsertDevice_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad device", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpsertDevice(context.Background(), inventory.NewDevice())
	if !IsHTTPError(err) {
		t.Fatalf("error = %v, want HTTP error", err)
	}
	if err.(*APIError).StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", err.(*APIError).StatusCode)
	}
}

func TestUpsertDevice_EncodeError(t *testing.T) {
	device := inventory.NewDevice()
	device.Interfaces = []inventory.Interface{{Address: "10.0.0.1"}}

	err := NewClientWithURL("http://127.0.0.1:1").UpsertDevice(context.Background(), device)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Type != ErrTypeEncode {
		t.Errorf("error = %v, want encode error", err)
	}
}
