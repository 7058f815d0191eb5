package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// action identifies a menu entry.
type action int

const (
	actAdd action = iota + 1
	actView
	actSearch
	actUpdate
	actDelete
	actStats
	actSave
	actLoad
	actClear
	actHelp
	actSort
	actExport
	actDiff
	actExit
)

type item struct {
	key         string
	act         action
	title, desc string
}

func (i item) Title() string       { return i.key + ". " + i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

var menuItems = []item{
	{"1", actAdd, "Add New Patient Record", "ID, name, age and diagnosis"},
	{"2", actView, "View All Records", "Browse every record"},
	{"3", actSearch, "Search for a Patient", "Look up by patient ID"},
	{"4", actUpdate, "Update a Patient Record", "Change name, age or diagnosis"},
	{"5", actDelete, "Delete a Patient Record", "Remove by ID after confirmation"},
	{"6", actStats, "Calculate Summary Stats", "Total patients and average age"},
	{"7", actSave, "Save to File", "Write records to the data file"},
	{"8", actLoad, "Load from File", "Replace records with the data file"},
	{"9", actClear, "Clear All Data", "Remove every record after confirmation"},
	{"10", actHelp, "Help", "Show instructions"},
	{"11", actSort, "Sort Records", "By ID, name or age"},
	{"12", actExport, "Export Records", "Write an .xlsx or .yaml file"},
	{"13", actDiff, "Show Unsaved Changes", "Diff memory against the data file"},
	{"0", actExit, "Exit", "Leave the system"},
}

func newMenu(st Styles, p Palette) list.Model {
	items := make([]list.Item, len(menuItems))
	for i, it := range menuItems {
		items[i] = it
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(p.Primary).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(p.Primary).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(p.Dim)

	l := list.New(items, d, 60, 20)
	l.Title = "Main Menu"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = st.Title.MarginLeft(2)
	return l
}
