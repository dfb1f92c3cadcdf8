package tui

import "github.com/charmbracelet/bubbles/key"

// listKeyMap is active while the modal is hidden
type listKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Reload key.Binding
	Add    key.Binding
	Quit   key.Binding
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Reload, k.Add, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// viewKeyMap is active while the modal shows a device read-only
type viewKeyMap struct {
	Edit  key.Binding
	Close key.Binding
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Close}
}

func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// editKeyMap is active while the modal is editable
type editKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Finish key.Binding
	Close  key.Binding
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Finish, k.Close}
}

func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type keyMap struct {
	List      listKeyMap
	View      viewKeyMap
	Edit      editKeyMap
	ForceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		List: listKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "down"),
			),
			Open: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "open"),
			),
			Reload: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "reload"),
			),
			Add: key.NewBinding(
				key.WithKeys("a"),
				key.WithHelp("a", "add node"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q"),
				key.WithHelp("q", "quit"),
			),
		},
		View: viewKeyMap{
			Edit: key.NewBinding(
				key.WithKeys("e"),
				key.WithHelp("e", "edit"),
			),
			Close: key.NewBinding(
				key.WithKeys("esc", "q"),
				key.WithHelp("esc", "close"),
			),
		},
		Edit: editKeyMap{
			Next: key.NewBinding(
				key.WithKeys("tab", "down"),
				key.WithHelp("tab", "next field"),
			),
			Prev: key.NewBinding(
				key.WithKeys("shift+tab", "up"),
				key.WithHelp("shift+tab", "prev field"),
			),
			Submit: key.NewBinding(
				key.WithKeys("ctrl+s"),
				key.WithHelp("ctrl+s", "submit"),
			),
			Finish: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "finish edit"),
			),
			Close: key.NewBinding(
				key.WithKeys("ctrl+w"),
				key.WithHelp("ctrl+w", "close"),
			),
		},
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}
