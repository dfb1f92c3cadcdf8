package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/muurk/nodeboard/internal/dashboard"
	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/inventory"
)

type fakeService struct {
	mu        sync.Mutex
	devices   []inventory.Device
	listErr   error
	upsertErr error
	upserted  []inventory.Device
}

func (f *fakeService) ListDevices(ctx context.Context) ([]inventory.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]inventory.Device, len(f.devices))
	for i, d := range f.devices {
		out[i] = d.Clone()
	}
	return out, nil
}

func (f *fakeService) UpsertDevice(ctx context.Context, device inventory.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, device.Clone())
	return nil
}

var routerID = uuid.MustParse("6a1f0c6e-2f49-4b8b-a3c7-9b3d55f0e7a2")

func sampleDevice() inventory.Device {
	return inventory.Device{
		ID:       routerID,
		Name:     "core-router",
		Location: "DC1",
		Interfaces: []inventory.Interface{
			{CheckMethod: inventory.CheckPing, Address: "10.0.0.1", Status: inventory.StatusUp},
			{CheckMethod: inventory.CheckHTTP, Address: "http://10.0.0.1", Status: inventory.StatusDown},
		},
	}
}

type testEnv struct {
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, svc *fakeService) *testEnv {
	t.Helper()
	srv, err := New(&Config{}, svc, WithSynchronousCommands())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv.Session().Init()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.hub.Close()
		ts.Close()
	})

	return &testEnv{
		srv: srv,
		ts:  ts,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	resp.Body.Close()
	return resp
}

func (e *testEnv) page(t *testing.T) string {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestSession_Synchronous(t *testing.T) {
	svc := &fakeService{devices: []inventory.Device{sampleDevice()}}
	var changes int32
	s := NewSession(svc, time.Second, WithSynchronousCommands(), WithChangeHook(func() {
		atomic.AddInt32(&changes, 1)
	}))

	s.Init()
	if got := s.Store().Rows(); len(got) != 1 || got[0].State != "1/2" {
		t.Fatalf("Rows() = %v, want one row at 1/2", got)
	}
	if changes == 0 {
		t.Error("change hook not called after load")
	}

	if s.Select(uuid.New()) {
		t.Error("Select() of unknown id = true, want false")
	}
	if !s.Select(routerID) {
		t.Fatal("Select() = false, want true")
	}
	if st := s.Store().Modal.State; st != dashboard.ModalViewing {
		t.Errorf("modal state = %s, want viewing", st)
	}
}

func TestSession_AsyncWait(t *testing.T) {
	svc := &fakeService{devices: []inventory.Device{sampleDevice()}}
	s := NewSession(svc, time.Second)

	s.Init()
	s.Wait()

	if len(s.Devices()) != 1 {
		t.Errorf("Devices() = %d, want 1 after Wait", len(s.Devices()))
	}
	if s.Store().Loading {
		t.Error("Loading still true after Wait")
	}
}

func TestSession_DevicesIsCopy(t *testing.T) {
	svc := &fakeService{devices: []inventory.Device{sampleDevice()}}
	s := NewSession(svc, time.Second, WithSynchronousCommands())
	s.Init()

	devices := s.Devices()
	devices[0].Interfaces[0].Address = "mutated"

	if s.Devices()[0].Interfaces[0].Address != "10.0.0.1" {
		t.Error("Devices() shares memory with the store")
	}
}

func TestServer_IndexListsDevices(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	body := env.page(t)
	for _, want := range []string{"core-router", "DC1", "1/2"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `class="modal"`) {
		t.Error("modal rendered with nothing selected")
	}
}

func TestServer_EditFlow(t *testing.T) {
	svc := &fakeService{devices: []inventory.Device{sampleDevice()}}
	env := newTestEnv(t, svc)

	resp := env.post(t, "/devices/select", url.Values{"id": {routerID.String()}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("select status = %d, want 303", resp.StatusCode)
	}
	body := env.page(t)
	if !strings.Contains(body, `action="/modal/edit"`) {
		t.Error("viewing modal should offer Edit")
	}
	if strings.Contains(body, `name="device-name"`) {
		t.Error("viewing modal should not render inputs")
	}

	env.post(t, "/modal/edit", nil)
	body = env.page(t)
	if !strings.Contains(body, `name="device-name"`) {
		t.Fatal("editing modal should render the name input")
	}
	if !strings.Contains(body, `data-editing="true"`) {
		t.Error("body should be marked as editing")
	}

	form := url.Values{
		inventory.FieldName:        {"core-router-2"},
		inventory.FieldLocation:    {"DC2"},
		inventory.FieldAddress:     {"10.0.0.1"},
		inventory.FieldCheckMethod: {"Ping"},
	}
	env.post(t, "/modal/submit", form)

	if len(svc.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(svc.upserted))
	}
	if got := svc.upserted[0]; got.ID != routerID || got.Name != "core-router-2" {
		t.Errorf("upserted = %v, want core-router-2 with the same id", got)
	}

	body = env.page(t)
	if !strings.Contains(body, dashboard.SavedNotice) {
		t.Error("page should show the saved notice")
	}
	if !strings.Contains(body, "core-router-2") {
		t.Error("list should show the saved name")
	}

	env.post(t, "/modal/close", nil)
	store := env.srv.Session().Store()
	if store.ModalVisible || store.Selected != nil {
		t.Error("close should clear the selection")
	}
}

func TestServer_FinishKeepsLocalValues(t *testing.T) {
	svc := &fakeService{devices: []inventory.Device{sampleDevice()}}
	env := newTestEnv(t, svc)

	env.post(t, "/devices/select", url.Values{"id": {routerID.String()}})
	env.post(t, "/modal/edit", nil)
	env.post(t, "/modal/finish", url.Values{
		inventory.FieldName:        {"draft"},
		inventory.FieldLocation:    {"DC1"},
		inventory.FieldAddress:     {"10.0.0.1"},
		inventory.FieldCheckMethod: {"telnet"},
	})

	if len(svc.upserted) != 0 {
		t.Error("finish must not contact the backend")
	}
	m := env.srv.Session().Store().Modal
	if m.State != dashboard.ModalViewing || m.Device.Name != "draft" {
		t.Errorf("modal = %s/%s, want viewing/draft", m.State, m.Device.Name)
	}
	if !strings.Contains(env.page(t), "unknown check method") {
		t.Error("substitution warning should be shown")
	}
}

func TestServer_SubmitFailureShowsError(t *testing.T) {
	svc := &fakeService{
		devices:   []inventory.Device{sampleDevice()},
		upsertErr: deviceapi.NewHTTPError(http.StatusUnprocessableEntity, "rejected"),
	}
	env := newTestEnv(t, svc)

	env.post(t, "/devices/select", url.Values{"id": {routerID.String()}})
	env.post(t, "/modal/edit", nil)
	env.post(t, "/modal/submit", inventory.EncodeForm(sampleDevice()))

	if !strings.Contains(env.page(t), "HTTP 422") {
		t.Error("page should show the save failure")
	}
}

func TestServer_EditFormCheckMethodIsText(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	env.post(t, "/devices/select", url.Values{"id": {routerID.String()}})
	env.post(t, "/modal/edit", nil)
	page := env.page(t)

	for _, want := range []string{
		`<input name="iface-check-method" value="Ping" list="check-methods">`,
		`<input name="iface-check-method" value="Http" list="check-methods">`,
		`<datalist id="check-methods">`,
		`<option value="SipPing">`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("edit page missing %s", want)
		}
	}
	if strings.Contains(page, "<select") {
		t.Error("check method should be a free-text input, not a select")
	}
}

func TestServer_SelectErrors(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"malformed", "nope", http.StatusBadRequest},
		{"unknown", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.post(t, "/devices/select", url.Values{"id": {tt.id}})
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestServer_LoadErrorAndRetry(t *testing.T) {
	svc := &fakeService{listErr: deviceapi.NewNetworkError("connection refused", errors.New("refused"))}
	env := newTestEnv(t, svc)

	if !strings.Contains(env.page(t), "Retry") {
		t.Error("failed load should show a retry banner")
	}

	svc.mu.Lock()
	svc.listErr = nil
	svc.devices = []inventory.Device{sampleDevice()}
	svc.mu.Unlock()

	env.post(t, "/reload", nil)
	body := env.page(t)
	if strings.Contains(body, "Retry") {
		t.Error("banner should clear after a successful reload")
	}
	if !strings.Contains(body, "core-router") {
		t.Error("reload should show the device")
	}
}

func TestServer_AddNodeIsNoop(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	resp := env.post(t, "/nodes/add", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", resp.StatusCode)
	}
	if n := len(env.srv.Session().Devices()); n != 1 {
		t.Errorf("devices = %d, want 1", n)
	}
}

func TestServer_Export(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	resp, err := env.client.Get(env.ts.URL + "/export.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %s, want text/csv", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "nodeboard-devices.csv") {
		t.Errorf("Content-Disposition = %s", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("csv error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("records = %d, want 3", len(records))
	}

	resp, err = env.client.Get(env.ts.URL + "/export.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("xlsx status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_StaticAssets(t *testing.T) {
	env := newTestEnv(t, &fakeService{})

	for _, path := range []string{"/static/app.js", "/static/styles.css"} {
		resp, err := env.client.Get(env.ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestHub_RefreshOnResult(t *testing.T) {
	env := newTestEnv(t, &fakeService{devices: []inventory.Device{sampleDevice()}})

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.srv.hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	env.post(t, "/reload", nil)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ev != RefreshEvent {
		t.Errorf("event = %v, want %v", ev, RefreshEvent)
	}
}
