// Package ui renders the summary boxes printed by nodeboard's one-shot
// commands (devices list, export, config init).
//
// A Result is drawn as a bordered lipgloss box when stdout is a terminal and
// as plain text otherwise, so output stays readable when piped.
//
// Usage:
//
//	ui.NewSuccessResult("Export complete",
//	    ui.Detail{Key: "File", Value: "devices.xlsx"},
//	    ui.Detail{Key: "Devices", Value: "12"},
//	).Fprint(os.Stdout)
package ui
