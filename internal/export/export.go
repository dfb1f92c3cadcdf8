package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/muurk/nodeboard/internal/inventory"
)

// Format is an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet names in the xlsx workbook
const (
	DevicesSheet    = "Devices"
	InterfacesSheet = "Interfaces"
)

var (
	deviceHeader    = []string{"ID", "Name", "Location", "Up", "Total", "Summary"}
	interfaceHeader = []string{"Device ID", "Device", "Index", "Check Method", "Address", "Status"}
	csvHeader       = []string{"device_id", "name", "location", "index", "check_method", "address", "status"}
)

// ParseFormat accepts "xlsx" or "csv" (case-insensitive, leading dot allowed)
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want xlsx or csv)", s)
	}
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders devices to w in the given format
func Write(w io.Writer, format Format, devices []inventory.Device) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, devices)
	case FormatCSV:
		return WriteCSV(w, devices)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteXLSX writes a workbook with one row per device on the Devices sheet
// and one row per interface on the Interfaces sheet.
func WriteXLSX(w io.Writer, devices []inventory.Device) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DevicesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(InterfacesSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	deviceRows := make([][]any, 0, len(devices))
	var ifaceRows [][]any
	for _, d := range devices {
		up, total := d.InterfaceSummary()
		deviceRows = append(deviceRows, []any{d.ID.String(), d.Name, d.Location, up, total, d.SummaryString()})
		for i, iface := range d.Interfaces {
			ifaceRows = append(ifaceRows, []any{
				d.ID.String(), d.Name, i, iface.CheckMethod.String(), iface.Address, iface.Status.String(),
			})
		}
	}

	if err := writeSheet(f, DevicesSheet, deviceHeader, deviceRows, bold); err != nil {
		return err
	}
	if err := writeSheet(f, InterfacesSheet, interfaceHeader, ifaceRows, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(DevicesSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(InterfacesSheet, "A", "A", 38); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteCSV writes one record per interface. A device without interfaces
// still gets one record with the interface columns empty.
func WriteCSV(w io.Writer, devices []inventory.Device) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, d := range devices {
		if len(d.Interfaces) == 0 {
			if err := cw.Write([]string{d.ID.String(), d.Name, d.Location, "", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for i, iface := range d.Interfaces {
			record := []string{
				d.ID.String(), d.Name, d.Location, strconv.Itoa(i),
				iface.CheckMethod.String(), iface.Address, iface.Status.String(),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns a default file name such as "nodeboard-devices.xlsx"
func Filename(format Format) string {
	return "nodeboard-devices." + string(format)
}
