// Package export writes the device inventory as an xlsx workbook or a csv file.
package export
