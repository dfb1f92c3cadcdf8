package tui

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/nodeboard/internal/dashboard"
	"github.com/muurk/nodeboard/internal/inventory"
)

// Model is the terminal dashboard. It owns a dashboard.Store and translates
// key presses into store messages.
type Model struct {
	store dashboard.Store

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// Edit form: name, location, then address and check method per interface
	inputs []textinput.Model
	focus  int

	Width  int
	Height int
}

// New creates the terminal dashboard backed by service
func New(service dashboard.DeviceService, timeout time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	t := table.New(
		table.WithColumns(tableColumns(MinTerminalWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(TableStyles()),
	)

	return Model{
		store:   dashboard.NewStore(service, timeout),
		table:   t,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
		Width:   MinTerminalWidth,
		Height:  24,
	}
}

// Run starts the dashboard on the alternate screen and blocks until it exits
func Run(service dashboard.DeviceService, timeout time.Duration) error {
	p := tea.NewProgram(New(service, timeout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Store returns the current dashboard state
func (m Model) Store() dashboard.Store {
	return m.store
}

// Init issues the initial device fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.store.Init(), m.spinner.Tick)
}

// Update handles terminal events and store results
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.table.SetColumns(tableColumns(msg.Width))
		height := msg.Height - 12
		if height < 3 {
			height = 3
		}
		m.table.SetHeight(height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.dispatch(msg)
}

// dispatch feeds msg to the store and keeps the table and edit form in step
// with the result.
func (m Model) dispatch(msg tea.Msg) (Model, tea.Cmd) {
	before := m.store.Modal.State

	var cmd tea.Cmd
	m.store, cmd = m.store.Update(msg)
	m.syncTable()

	after := m.store.Modal.State
	if after == dashboard.ModalEditing && before != dashboard.ModalEditing {
		m.loadInputs(m.store.Modal.Device)
	}
	if after != dashboard.ModalEditing {
		m.inputs = nil
		m.focus = 0
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.store.Modal.State {
	case dashboard.ModalHidden:
		return m.handleListKey(msg)
	case dashboard.ModalViewing:
		switch {
		case key.Matches(msg, m.keys.View.Edit):
			return m.dispatch(dashboard.RequestEditMsg{})
		case key.Matches(msg, m.keys.View.Close):
			return m.dispatch(dashboard.CloseModalMsg{})
		}
	case dashboard.ModalEditing:
		return m.handleEditKey(msg)
	case dashboard.ModalSubmitting:
		if key.Matches(msg, m.keys.View.Close, m.keys.Edit.Close) {
			return m.dispatch(dashboard.CloseModalMsg{})
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.List.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.List.Reload):
		return m.dispatch(dashboard.LoadDevicesMsg{})
	case key.Matches(msg, m.keys.List.Add):
		return m.dispatch(dashboard.AddNodeMsg{})
	case key.Matches(msg, m.keys.List.Open):
		device, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m.dispatch(dashboard.SelectDeviceMsg{Device: device})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit.Submit):
		return m.dispatch(dashboard.SubmitMsg{Form: m.FormSnapshot()})
	case key.Matches(msg, m.keys.Edit.Finish):
		return m.dispatch(dashboard.FinishEditMsg{Form: m.FormSnapshot()})
	case key.Matches(msg, m.keys.Edit.Close):
		return m.dispatch(dashboard.CloseModalMsg{})
	case key.Matches(msg, m.keys.Edit.Next):
		m.setFocus(m.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.Edit.Prev):
		m.setFocus(m.focus - 1)
		return m, nil
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// selectedRow returns the device under the table cursor
func (m Model) selectedRow() (inventory.Device, bool) {
	rows := m.store.Rows()
	i := m.table.Cursor()
	if i < 0 || i >= len(rows) {
		return inventory.Device{}, false
	}
	return m.store.FindByID(rows[i].ID)
}

func (m *Model) syncTable() {
	rows := make([]table.Row, 0, len(m.store.Devices))
	for _, r := range m.store.Rows() {
		rows = append(rows, table.Row{r.Name, r.Location, r.State, r.ID.String()[:8]})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func tableColumns(width int) []table.Column {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	// border, padding and the fixed-width columns
	flexible := width - 8 - 12 - 12 - 8
	name := flexible * 3 / 5
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Location", Width: flexible - name},
		{Title: "Interfaces", Width: 12},
		{Title: "ID", Width: 10},
	}
}

// loadInputs builds one text input per editable field of d
func (m *Model) loadInputs(d inventory.Device) {
	m.inputs = make([]textinput.Model, 0, 2+2*len(d.Interfaces))
	m.inputs = append(m.inputs,
		newInput("Device name", d.Name, 64),
		newInput("Location", d.Location, 64),
	)
	for _, iface := range d.Interfaces {
		m.inputs = append(m.inputs,
			newInput("10.0.0.1", iface.Address, 253),
			newInput("Ping", iface.CheckMethod.String(), 16),
		)
	}
	m.setFocus(0)
}

func newInput(placeholder, value string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = 40
	input.Cursor.SetMode(cursor.CursorStatic)
	input.SetValue(value)
	return input
}

func (m *Model) setFocus(i int) {
	if len(m.inputs) == 0 {
		m.focus = 0
		return
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
			m.inputs[j].PromptStyle = FocusedInputStyle
			m.inputs[j].TextStyle = FocusedInputStyle
		} else {
			m.inputs[j].Blur()
			m.inputs[j].PromptStyle = BlurredInputStyle
			m.inputs[j].TextStyle = BlurredInputStyle
		}
	}
	m.focus = i
}

// FormSnapshot renders the edit inputs as the form the modal decodes
func (m Model) FormSnapshot() url.Values {
	form := url.Values{}
	if len(m.inputs) < 2 {
		return form
	}
	form.Set(inventory.FieldName, m.inputs[0].Value())
	form.Set(inventory.FieldLocation, m.inputs[1].Value())
	for i := 2; i+1 < len(m.inputs); i += 2 {
		form.Add(inventory.FieldAddress, m.inputs[i].Value())
		form.Add(inventory.FieldCheckMethod, m.inputs[i+1].Value())
	}
	return form
}

func inputLabel(i int) string {
	switch i {
	case 0:
		return "Name"
	case 1:
		return "Location"
	}
	row := (i-2)/2 + 1
	if (i-2)%2 == 0 {
		return fmt.Sprintf("IP %d", row)
	}
	return fmt.Sprintf("Check %d", row)
}
