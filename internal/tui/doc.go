// Package tui is the terminal front end of the dashboard.
//
// It wraps a dashboard.Store in a bubbletea program: the device list is a
// bubbles table, and the device modal is drawn over it. Key bindings:
//
//	enter      open the selected device
//	r          reload the device list
//	a          add node (not implemented by the backend yet)
//	e          edit the open device
//	tab        next field while editing
//	ctrl+s     submit the edit form
//	esc        finish editing, or close the modal
//	q          quit
//
// While editing, every field is a text input, including the check method,
// which is parsed with the same rules as the browser form.
package tui
