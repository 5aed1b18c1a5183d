package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tempo/internal/models"
)

// Model is the interactive star picker. It presents every album in the
// report and lets the user toggle stars before writing the report back.
type Model struct {
	records   []models.AlbumRecord
	albumList list.Model
	width     int
	height    int
	toggled   int
	saved     bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a star picker over a copy of records. The caller's
// slice is never mutated; read the outcome with [Model.Records] after
// the program exits.
func NewModel(records []models.AlbumRecord) *Model {
	items := make([]list.Item, len(records))
	copied := make([]models.AlbumRecord, len(records))
	copy(copied, records)
	for i, record := range copied {
		items[i] = albumItem{record: record}
	}

	albumList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	albumList.Title = "Watch Albums"
	albumList.SetShowStatusBar(false)

	return &Model{
		records:   copied,
		albumList: albumList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Records returns the album records with any star toggles applied.
func (m *Model) Records() []models.AlbumRecord {
	return m.records
}

// Saved reports whether the user chose to keep their changes.
func (m *Model) Saved() bool {
	return m.saved
}

// Toggled returns the number of toggle actions performed.
func (m *Model) Toggled() int {
	return m.toggled
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.albumList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.albumList.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.saved = false
			return m, tea.Quit
		case "s", "ctrl+s":
			m.saved = true
			return m, tea.Quit
		case "enter", " ":
			return m, m.toggleSelected()
		}
	}

	var cmd tea.Cmd
	m.albumList, cmd = m.albumList.Update(msg)
	return m, cmd
}

// View renders the album list with contextual help.
func (m *Model) View() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	status := ""
	if m.toggled > 0 {
		status = styles.warn.Render(fmt.Sprintf("%d unsaved change(s)", m.toggled))
	}

	return fmt.Sprintf("%s\n%s\n%s", m.albumList.View(), status, helpView)
}

// toggleSelected flips the star on the highlighted album and refreshes
// its list item in place.
func (m *Model) toggleSelected() tea.Cmd {
	selected := m.albumList.SelectedItem()
	item, ok := selected.(albumItem)
	if !ok {
		return nil
	}

	index := m.albumList.GlobalIndex()
	key := item.record.Key()
	for i := range m.records {
		if m.records[i].Key() == key {
			m.records[i].Starred = !m.records[i].Starred
			m.toggled++
			return m.albumList.SetItem(index, albumItem{record: m.records[i]})
		}
	}
	return nil
}
