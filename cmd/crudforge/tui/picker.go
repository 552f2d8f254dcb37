// Package tui holds the interactive table picker shown when generate is
// invoked without a table argument.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TableItem represents one selectable table in the picker list
type TableItem struct {
	Name     string
	Selected bool
}

func (i TableItem) FilterValue() string { return i.Name }

// tableItemDelegate renders a table row with its selection checkbox
type tableItemDelegate struct{}

func (d tableItemDelegate) Height() int                             { return 1 }
func (d tableItemDelegate) Spacing() int                            { return 0 }
func (d tableItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d tableItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(TableItem)
	if !ok {
		return
	}

	checkbox := mutedStyle.Render("[ ]")
	if t.Selected {
		checkbox = checkedStyle.Render("[x]")
	}

	name := itemStyle.Render(t.Name)
	prefix := "  "
	if index == m.Index() {
		prefix = cursorStyle.Render("> ")
		name = cursorStyle.Render(t.Name)
	}

	fmt.Fprint(w, prefix+checkbox+" "+name)
}

// PickerModel is the Bubbletea model for multi-selecting tables
type PickerModel struct {
	list      list.Model
	names     []string
	confirmed bool
	width     int
	height    int
}

// NewPickerModel creates a picker over the given table names
func NewPickerModel(names []string) PickerModel {
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = TableItem{Name: name}
	}

	l := list.New(items, tableItemDelegate{}, 0, 0)
	l.Title = "Select Tables to Generate"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	return PickerModel{list: l, names: names}
}

// Init initializes the model
func (m PickerModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case " ":
			idx := m.list.Index()
			if item, ok := m.list.SelectedItem().(TableItem); ok {
				item.Selected = !item.Selected
				return m, m.list.SetItem(idx, item)
			}
			return m, nil

		case "a":
			// Toggle all: select everything unless everything is selected.
			allSelected := true
			for _, item := range m.list.Items() {
				if t, ok := item.(TableItem); ok && !t.Selected {
					allSelected = false
					break
				}
			}
			var cmds []tea.Cmd
			for i, item := range m.list.Items() {
				if t, ok := item.(TableItem); ok {
					t.Selected = !allSelected
					cmds = append(cmds, m.list.SetItem(i, t))
				}
			}
			return m, tea.Batch(cmds...)

		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker
func (m PickerModel) View() string {
	help := helpStyle.Render(
		FormatKey("↑/↓", "navigate") + " • " +
			FormatKey("space", "toggle") + " • " +
			FormatKey("a", "all") + " • " +
			FormatKey("enter", "generate") + " • " +
			FormatKey("q", "quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		help,
	)
}

// Picked returns the confirmed selection in the original name order.
func (m PickerModel) Picked() []string {
	if !m.confirmed {
		return nil
	}

	selected := make(map[string]bool)
	for _, item := range m.list.Items() {
		if t, ok := item.(TableItem); ok && t.Selected {
			selected[t.Name] = true
		}
	}

	var out []string
	for _, name := range m.names {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out
}

// PickTables runs the interactive picker and returns the chosen tables.
// A cancelled picker returns an empty selection, not an error.
func PickTables(names []string) ([]string, error) {
	p := tea.NewProgram(NewPickerModel(names))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run table picker: %w", err)
	}

	model, ok := final.(PickerModel)
	if !ok {
		return nil, nil
	}
	return model.Picked(), nil
}
