package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/muurk/nodeboard/internal/inventory"
)

func testDevices() []inventory.Device {
	return []inventory.Device{
		{
			ID:       uuid.MustParse("3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11"),
			Name:     "edge-01",
			Location: "rack A",
			Interfaces: []inventory.Interface{
				{CheckMethod: inventory.CheckPing, Address: "10.0.0.1", Status: inventory.StatusUp},
				{CheckMethod: inventory.CheckHTTP, Address: "http://10.0.0.1", Status: inventory.StatusDown},
			},
		},
		{
			ID:         uuid.MustParse("9b2d4e6f-1a3c-4b5d-8e7f-0a1b2c3d4e5f"),
			Name:       "spare",
			Interfaces: []inventory.Interface{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{".XLSX", FormatXLSX, false},
		{"csv", FormatCSV, false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, testDevices()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	devices, err := f.GetRows(DevicesSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) error = %v", DevicesSheet, err)
	}
	if len(devices) != 3 {
		t.Fatalf("device rows = %d, want 3 (header + 2)", len(devices))
	}
	if devices[0][0] != "ID" {
		t.Errorf("header = %v", devices[0])
	}
	if got := devices[1][5]; got != "1/2" {
		t.Errorf("summary cell = %s, want 1/2", got)
	}

	ifaces, err := f.GetRows(InterfacesSheet)
	if err != nil {
		t.Fatalf("GetRows(%s) error = %v", InterfacesSheet, err)
	}
	if len(ifaces) != 3 {
		t.Fatalf("interface rows = %d, want 3 (header + 2)", len(ifaces))
	}
	if ifaces[2][3] != "Http" || ifaces[2][5] != "Down" {
		t.Errorf("interface row = %v, want Http/Down", ifaces[2])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, testDevices()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	tests := []struct {
		row  int
		want []string
	}{
		{0, csvHeader},
		{1, []string{"3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11", "edge-01", "rack A", "0", "Ping", "10.0.0.1", "Up"}},
		{2, []string{"3f1c2a9e-5b7d-4c1e-9a2f-0d8e6b4c7a11", "edge-01", "rack A", "1", "Http", "http://10.0.0.1", "Down"}},
		{3, []string{"9b2d4e6f-1a3c-4b5d-8e7f-0a1b2c3d4e5f", "spare", "", "", "", "", ""}},
	}

	if len(records) != len(tests) {
		t.Fatalf("records = %d, want %d", len(records), len(tests))
	}
	for _, tt := range tests {
		for i := range tt.want {
			if records[tt.row][i] != tt.want[i] {
				t.Errorf("record %d col %d = %q, want %q", tt.row, i, records[tt.row][i], tt.want[i])
			}
		}
	}
}

func TestWrite_Empty(t *testing.T) {
	for _, format := range []Format{FormatXLSX, FormatCSV} {
		var buf bytes.Buffer
		if err := Write(&buf, format, nil); err != nil {
			t.Errorf("Write(%s, nil) error = %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s, nil) produced no output", format)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("pdf"), nil); err == nil {
		t.Error("Write() with unknown format should fail")
	}
}

func TestContentTypeAndFilename(t *testing.T) {
	if FormatCSV.ContentType() != "text/csv; charset=utf-8" {
		t.Errorf("csv content type = %s", FormatCSV.ContentType())
	}
	if Filename(FormatXLSX) != "nodeboard-devices.xlsx" {
		t.Errorf("Filename() = %s", Filename(FormatXLSX))
	}
}
