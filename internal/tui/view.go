package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/nodeboard/internal/dashboard"
)

// View renders the device list, or the modal when a device is open
func (m Model) View() string {
	var content string
	var keys help.KeyMap

	if m.store.Modal.Visible() {
		content = m.renderModal(m.store.Modal.View())
		if m.store.Modal.State == dashboard.ModalEditing {
			keys = m.keys.Edit
		} else {
			keys = m.keys.View
		}
	} else {
		content = m.renderList()
		keys = m.keys.List
	}

	return RenderApplicationContainer(content, m.help.View(keys), m.Width, m.Height)
}

func (m Model) renderList() string {
	var sections []string

	title := TitleStyle.Render("Devices")
	if m.store.Loading {
		title += " " + m.spinner.View() + SubtitleStyle.Render(" loading")
	}
	sections = append(sections, title)

	if msg := m.store.LoadError(); msg != "" {
		sections = append(sections, RenderError(msg+"  (press r to retry)"))
	}

	if len(m.store.Devices) == 0 && !m.store.Loading {
		sections = append(sections, SubtitleStyle.Render("No devices."))
	} else {
		sections = append(sections, m.table.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderModal(v dashboard.ModalView) string {
	var lines []string

	heading := v.Name
	if heading == "" {
		heading = "Unnamed device"
	}
	if v.Editable {
		heading = "Edit: " + heading
	}
	lines = append(lines, TitleStyle.Render(heading))

	if v.Editable && len(m.inputs) >= 2 {
		lines = append(lines,
			m.renderInputLine(0),
			m.renderInputLine(1),
			"",
		)
		for i := 2; i+1 < len(m.inputs); i += 2 {
			status := ""
			if r := (i - 2) / 2; r < len(v.Rows) {
				status = RenderStatus(v.Rows[r].Status, v.Rows[r].Up)
			}
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
				m.renderInputLine(i), "  ",
				m.renderInputLine(i+1), "  ",
				status,
			))
		}
	} else {
		lines = append(lines,
			LabelStyle.Render("Name")+ValueStyle.Render(v.Name),
			LabelStyle.Render("Location")+ValueStyle.Render(v.Location),
			LabelStyle.Render("ID")+SubtitleStyle.Render(v.ID),
			"",
		)
		if len(v.Rows) == 0 {
			lines = append(lines, SubtitleStyle.Render("No interfaces."))
		}
		for _, row := range v.Rows {
			lines = append(lines, fmt.Sprintf("%s%-24s %-8s %s",
				LabelStyle.Render(fmt.Sprintf("IP %d", row.Index+1)),
				row.Address, row.CheckMethod, RenderStatus(row.Status, row.Up)))
		}
	}

	lines = append(lines, "", SubtitleStyle.Render("Interfaces up: "+v.Summary))

	if v.Busy {
		lines = append(lines, m.spinner.View()+" Saving...")
	}
	if v.Notice != "" {
		lines = append(lines, RenderSuccess(v.Notice))
	}
	for _, w := range v.Warnings {
		lines = append(lines, WarningStyle.Render("! "+w))
	}
	if v.Error != "" {
		lines = append(lines, RenderError(v.Error))
		if v.Hint != "" {
			lines = append(lines, SubtitleStyle.Render(v.Hint))
		}
	}

	box := ModalStyle.Width(SafeModalWidth(ModalWidth, m.Width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.Width-4, m.Height-6, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderInputLine(i int) string {
	label := inputLabel(i)
	if i == m.focus {
		label = FocusedInputStyle.Render("› ") + label
	} else {
		label = "  " + label
	}
	return LabelStyle.Width(12).Render(label) + m.inputs[i].View()
}
