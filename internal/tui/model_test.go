package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/muurk/nodeboard/internal/dashboard"
	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/inventory"
)

type fakeService struct {
	mu       sync.Mutex
	devices  []inventory.Device
	listErr  error
	upserted []inventory.Device
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

func (f *fakeService) UpsertDevice(ctx context.Context, d inventory.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, d.Clone())
	return nil
}

func sampleDevices() []inventory.Device {
	return []inventory.Device{
		{
			ID:       uuid.MustParse("0b7f3c1e-8a52-4f0d-9d6e-2c4a1b3e5f70"),
			Name:     "edge-01",
			Location: "rack A",
			Interfaces: []inventory.Interface{
				{CheckMethod: inventory.CheckPing, Address: "10.0.0.1", Status: inventory.StatusUp},
				{CheckMethod: inventory.CheckHTTP, Address: "http://10.0.0.1", Status: inventory.StatusDown},
			},
		},
		{
			ID:         uuid.MustParse("5d2e9a41-7c3b-4e8f-a1d0-6b9c8e7f4a32"),
			Name:       "edge-02",
			Location:   "rack B",
			Interfaces: []inventory.Interface{},
		},
	}
}

// drive runs cmd and feeds its messages back into the model. Spinner ticks
// are dropped so the loop terminates.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, out := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, out)
		}
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	return drive(t, updated.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func started(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := New(svc, 0)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	return drive(t, m, m.Init())
}

func TestInitLoadsDevices(t *testing.T) {
	m := started(t, &fakeService{devices: sampleDevices()})

	if got := len(m.Store().Devices); got != 2 {
		t.Fatalf("len(Devices) = %d, want 2", got)
	}
	if got := len(m.table.Rows()); got != 2 {
		t.Errorf("table rows = %d, want 2", got)
	}
	if got := m.table.Rows()[0][2]; got != "1/2" {
		t.Errorf("Interfaces column = %q, want 1/2", got)
	}
	if !strings.Contains(m.View(), "edge-01") {
		t.Error("View() should list edge-01")
	}
}

func TestEnterOpensSelectedDevice(t *testing.T) {
	m := started(t, &fakeService{devices: sampleDevices()})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	s := m.Store()
	if !s.ModalVisible || s.Selected == nil {
		t.Fatal("enter should open the modal")
	}
	if s.Selected.Name != "edge-02" {
		t.Errorf("Selected = %s, want edge-02", s.Selected.Name)
	}
	if s.Modal.State != dashboard.ModalViewing {
		t.Errorf("Modal.State = %v, want viewing", s.Modal.State)
	}
}

func TestEditSubmitFlow(t *testing.T) {
	svc := &fakeService{devices: sampleDevices()}
	m := started(t, svc)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("e"))
	if m.Store().Modal.State != dashboard.ModalEditing {
		t.Fatalf("Modal.State = %v, want editing", m.Store().Modal.State)
	}
	if len(m.inputs) != 6 {
		t.Fatalf("len(inputs) = %d, want 6", len(m.inputs))
	}

	m = press(t, m, runes("-x"))
	form := m.FormSnapshot()
	if got := form.Get(inventory.FieldName); got != "edge-01-x" {
		t.Errorf("name = %q, want edge-01-x", got)
	}
	if got := form[inventory.FieldCheckMethod]; len(got) != 2 || got[1] != "Http" {
		t.Errorf("check methods = %v", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if len(svc.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(svc.upserted))
	}
	if svc.upserted[0].ID != sampleDevices()[0].ID {
		t.Error("upsert should keep the device id")
	}
	s := m.Store()
	if s.Modal.State != dashboard.ModalViewing {
		t.Errorf("Modal.State = %v, want viewing", s.Modal.State)
	}
	if s.Devices[0].Name != "edge-01-x" {
		t.Errorf("list Name = %q, want edge-01-x", s.Devices[0].Name)
	}
	if m.table.Rows()[0][0] != "edge-01-x" {
		t.Errorf("table not refreshed: %v", m.table.Rows()[0])
	}
}

func TestEscFinishesEditWithoutSaving(t *testing.T) {
	svc := &fakeService{devices: sampleDevices()}
	m := started(t, svc)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("!"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	s := m.Store()
	if s.Modal.State != dashboard.ModalViewing {
		t.Fatalf("Modal.State = %v, want viewing", s.Modal.State)
	}
	if s.Modal.Device.Location != "rack A!" {
		t.Errorf("Location = %q, want local edit retained", s.Modal.Device.Location)
	}
	if len(svc.upserted) != 0 {
		t.Errorf("upserts = %d, want 0", len(svc.upserted))
	}
	if s.Devices[0].Location != "rack A" {
		t.Error("finishing an edit must not change the list")
	}
}

func TestCloseClearsSelection(t *testing.T) {
	m := started(t, &fakeService{devices: sampleDevices()})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	s := m.Store()
	if s.ModalVisible || s.Selected != nil || s.Modal.Visible() {
		t.Error("esc in viewing mode should close the modal and clear the selection")
	}
}

func TestLoadErrorBannerAndRetry(t *testing.T) {
	svc := &fakeService{listErr: deviceapi.NewHTTPError(503, "unavailable")}
	m := started(t, svc)

	if !strings.Contains(m.View(), "Inventory API error (HTTP 503)") {
		t.Error("View() should show the load error")
	}

	svc.mu.Lock()
	svc.listErr = nil
	svc.devices = sampleDevices()
	svc.mu.Unlock()

	m = press(t, m, runes("r"))
	if m.Store().LoadErr != nil {
		t.Errorf("LoadErr = %v after retry", m.Store().LoadErr)
	}
	if len(m.Store().Devices) != 2 {
		t.Errorf("len(Devices) = %d, want 2", len(m.Store().Devices))
	}
}

func TestInputLabel(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "Name"},
		{1, "Location"},
		{2, "IP 1"},
		{3, "Check 1"},
		{4, "IP 2"},
		{5, "Check 2"},
	}
	for _, tt := range tests {
		if got := inputLabel(tt.index); got != tt.want {
			t.Errorf("inputLabel(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
