package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeanpaul/patientrec/internal/export"
	"github.com/jeanpaul/patientrec/internal/record"
	"github.com/jeanpaul/patientrec/internal/store"
)

type viewState int

const (
	stateMenu viewState = iota
	stateForm
	stateConfirm
	stateTable
	stateText
)

// Options configures the TUI.
type Options struct {
	DataFile       string
	AutosaveOnExit bool
	Theme          string
}

type formField struct {
	label    string
	input    textinput.Model
	optional bool
	check    func(string) error
}

type form struct {
	title  string
	fields []formField
	values []string
	idx    int
	submit func(m Model, values []string) (tea.Model, tea.Cmd)
}

type pendingConfirm struct {
	prompt string
	answer func(m Model, yes bool) Model
}

type Model struct {
	width, height int

	store  *store.RecordStore
	opts   Options
	styles Styles
	log    *zap.Logger

	state   viewState
	menu    list.Model
	form    *form
	confirm *pendingConfirm
	table   table.Model
	title   string
	text    string

	status       string
	statusErr    bool
	warnedUnsafe bool
	quitting     bool
}

func NewModel(st *store.RecordStore, opts Options, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DataFile == "" {
		opts.DataFile = "patients.json"
	}
	styles := NewStyles(opts.Theme, nil)
	return Model{
		store:  st,
		opts:   opts,
		styles: styles,
		log:    log,
		menu:   newMenu(styles, paletteFor(opts.Theme)),
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width, max(msg.Height-4, 5))
		if m.state == stateTable {
			m.table.SetHeight(max(msg.Height-8, 3))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit(true)
		}
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateForm:
			return m.updateForm(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		case stateTable, stateText:
			return m.updateView(msg)
		}
	}

	if m.state == stateForm && m.form != nil {
		var cmd tea.Cmd
		f := m.form
		f.fields[f.idx].input, cmd = f.fields[f.idx].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.menu.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "q", "esc":
		return m.quit(false)
	case "enter":
		if it, ok := m.menu.SelectedItem().(item); ok {
			return m.run(it.act)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		return m.toMenu("Cancelled.", false), nil
	case tea.KeyEnter:
		fld := &f.fields[f.idx]
		v := strings.TrimSpace(fld.input.Value())
		if v == "" && !fld.optional {
			m.setStatus("Input cannot be empty. Please try again.", true)
			return m, nil
		}
		if v != "" && fld.check != nil {
			if err := fld.check(v); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
		}
		f.values[f.idx] = v
		m.status = ""
		if f.idx+1 < len(f.fields) {
			fld.input.Blur()
			f.idx++
			return m, f.fields[f.idx].input.Focus()
		}
		return f.submit(m, f.values)
	}

	var cmd tea.Cmd
	f.fields[f.idx].input, cmd = f.fields[f.idx].input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var yes bool
	switch strings.ToLower(msg.String()) {
	case "y":
		yes = true
	case "n", "esc":
		yes = false
	default:
		return m, nil
	}
	p := m.confirm
	m.confirm = nil
	return p.answer(m, yes), nil
}

func (m Model) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		return m.toMenu("", false), nil
	}
	if m.state == stateTable {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// quit leaves the program. Unsaved changes are saved when configured,
// otherwise the first request only warns. A failed autosave also warns
// once; force always quits.
func (m Model) quit(force bool) (tea.Model, tea.Cmd) {
	if m.store.Dirty() {
		if m.opts.AutosaveOnExit {
			if err := m.store.Save(m.opts.DataFile); err != nil {
				m.log.Error("autosave on exit failed", zap.String("path", m.opts.DataFile), zap.Error(err))
				if !force && !m.warnedUnsafe {
					m.warnedUnsafe = true
					m.setStatus(fmt.Sprintf("Error saving records: %v. Press q again to quit without saving.", err), true)
					return m, nil
				}
			}
		} else if !force && !m.warnedUnsafe {
			m.warnedUnsafe = true
			m.setStatus("Unsaved changes. Press q again to quit without saving.", true)
			return m, nil
		}
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) toMenu(status string, isErr bool) Model {
	m.state = stateMenu
	m.form = nil
	m.confirm = nil
	m.setStatus(status, isErr)
	return m
}

func (m Model) startForm(title string, submit func(Model, []string) (tea.Model, tea.Cmd), fields ...formField) (tea.Model, tea.Cmd) {
	f := &form{title: title, fields: fields, values: make([]string, len(fields)), submit: submit}
	m.form = f
	m.state = stateForm
	return m, f.fields[0].input.Focus()
}

func newField(label string, optional bool, check func(string) error) formField {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 40
	return formField{label: label, input: ti, optional: optional, check: check}
}

func (m Model) askConfirm(prompt string, answer func(Model, bool) Model) (tea.Model, tea.Cmd) {
	m.confirm = &pendingConfirm{prompt: prompt, answer: answer}
	m.state = stateConfirm
	return m, nil
}

func (m Model) showTable(title string, recs []record.PatientRecord) Model {
	rows := make([]table.Row, len(recs))
	for i, r := range recs {
		rows[i] = table.Row{r.ID, r.Name, strconv.Itoa(r.Age), r.Diagnosis}
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 20},
			{Title: "Age", Width: 5},
			{Title: "Diagnosis", Width: 30},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(min(len(rows)+1, m.height-8), 3)),
	)
	s := table.DefaultStyles()
	s.Header = m.styles.Header.Padding(0, 1)
	s.Cell = m.styles.Cell.Padding(0, 1)
	s.Selected = m.styles.Title
	t.SetStyles(s)

	m.table = t
	m.title = title
	m.state = stateTable
	return m
}

func (m Model) showText(title, text string) Model {
	m.title = title
	m.text = text
	m.state = stateText
	return m
}

func (m Model) run(act action) (tea.Model, tea.Cmd) {
	m.status = ""
	m.log.Debug("menu action", zap.Int("action", int(act)))

	switch act {
	case actAdd:
		return m.startForm("Add New Patient Record", submitAddID, newField("Patient ID", false, nil))
	case actView:
		if m.store.Len() == 0 {
			return m.toMenu("No patient records available.", false), nil
		}
		return m.showTable("All Patient Records", m.store.All()), nil
	case actSearch:
		return m.startForm("Search for a Patient", submitSearch, newField("Patient ID to search", false, nil))
	case actUpdate:
		return m.startForm("Update a Patient Record", submitUpdateID, newField("Patient ID to update", false, nil))
	case actDelete:
		return m.startForm("Delete a Patient Record", submitDeleteID, newField("Patient ID to delete", false, nil))
	case actStats:
		st, err := m.store.Stats()
		if errors.Is(err, store.ErrEmpty) {
			return m.toMenu("No records to calculate stats.", false), nil
		}
		return m.showText("Summary", FormatStats(st)), nil
	case actSave:
		if err := m.store.Save(m.opts.DataFile); err != nil {
			return m.toMenu(fmt.Sprintf("Error saving records: %v", err), true), nil
		}
		return m.toMenu(fmt.Sprintf("Records saved to %s.", m.opts.DataFile), false), nil
	case actLoad:
		res, err := m.store.Load(m.opts.DataFile)
		switch {
		case err != nil:
			return m.toMenu(fmt.Sprintf("Error loading records: %v", err), true), nil
		case !res.Found:
			return m.toMenu("No saved patient records found.", false), nil
		}
		return m.toMenu(fmt.Sprintf("Records loaded from %s.", m.opts.DataFile), false), nil
	case actClear:
		return m.askConfirm("Are you sure you want to clear ALL patient data?", func(m Model, yes bool) Model {
			if m.store.Clear(store.Always(yes)) {
				return m.toMenu("All patient data cleared.", false)
			}
			return m.toMenu("Clear operation cancelled.", false)
		})
	case actHelp:
		return m.showText("Help", RenderHelp(m.opts.Theme, m.width)), nil
	case actSort:
		if m.store.Len() == 0 {
			return m.toMenu("No records to sort.", false), nil
		}
		return m.startForm("Sort Records", submitSort, newField("Sort by (1 ID, 2 Name, 3 Age)", false, func(s string) error {
			_, err := record.ParseSortField(s)
			return err
		}))
	case actExport:
		return m.startForm("Export Records", submitExport, newField("Export path (.xlsx, .yaml, .yml)", false, nil))
	case actDiff:
		snap, err := m.store.Snapshot()
		if err != nil {
			return m.toMenu(err.Error(), true), nil
		}
		d, err := export.UnsavedDiff(m.opts.DataFile, snap)
		if err != nil {
			return m.toMenu(fmt.Sprintf("Error reading %s: %v", m.opts.DataFile, err), true), nil
		}
		if d == "" {
			return m.toMenu("No unsaved changes.", false), nil
		}
		return m.showText("Unsaved Changes", d), nil
	case actExit:
		return m.quit(false)
	}
	return m, nil
}

func submitAddID(m Model, values []string) (tea.Model, tea.Cmd) {
	id := values[0]
	if m.store.Exists(id) {
		return m.toMenu("ID already exists. Please use a unique ID.", true), nil
	}
	return m.startForm("Add New Patient Record", func(m Model, v []string) (tea.Model, tea.Cmd) {
		age, _ := record.ParseAge(v[1])
		rec, err := record.New(id, v[0], age, v[2])
		if err == nil {
			err = m.store.Add(rec)
		}
		if err != nil {
			return m.toMenu(err.Error(), true), nil
		}
		return m.toMenu("Patient record added successfully.", false), nil
	},
		newField("Name", false, nil),
		newField("Age (0-120)", false, func(s string) error {
			_, err := record.ParseAge(s)
			return err
		}),
		newField("Diagnosis", false, nil),
	)
}

func submitSearch(m Model, values []string) (tea.Model, tea.Cmd) {
	rec, ok := m.store.Find(values[0])
	if !ok {
		return m.toMenu(fmt.Sprintf("No record found with ID %s.", values[0]), true), nil
	}
	return m.showTable("Search Result", []record.PatientRecord{rec}), nil
}

func submitUpdateID(m Model, values []string) (tea.Model, tea.Cmd) {
	id := values[0]
	rec, ok := m.store.Find(id)
	if !ok {
		return m.toMenu("Patient not found.", true), nil
	}
	name := newField("New name (enter keeps current)", true, nil)
	name.input.Placeholder = rec.Name
	age := newField("New age (enter keeps current)", true, nil)
	age.input.Placeholder = strconv.Itoa(rec.Age)
	diagnosis := newField("New diagnosis (enter keeps current)", true, nil)
	diagnosis.input.Placeholder = rec.Diagnosis

	return m.startForm("Update "+id, func(m Model, v []string) (tea.Model, tea.Cmd) {
		res, err := m.store.Update(id, record.Patch{Name: &v[0], Age: &v[1], Diagnosis: &v[2]})
		if err != nil {
			return m.toMenu(err.Error(), true), nil
		}
		if res.AgeRejected {
			return m.toMenu("Invalid age. Keeping current. Patient record updated successfully.", false), nil
		}
		return m.toMenu("Patient record updated successfully.", false), nil
	}, name, age, diagnosis)
}

func submitDeleteID(m Model, values []string) (tea.Model, tea.Cmd) {
	id := values[0]
	if !m.store.Exists(id) {
		return m.toMenu("Patient not found.", true), nil
	}
	return m.askConfirm(fmt.Sprintf("Are you sure you want to delete patient %s?", id), func(m Model, yes bool) Model {
		deleted, err := m.store.Delete(id, store.Always(yes))
		switch {
		case err != nil:
			return m.toMenu(err.Error(), true)
		case deleted:
			return m.toMenu("Patient record deleted.", false)
		}
		return m.toMenu("Delete operation canceled.", false)
	})
}

func submitSort(m Model, values []string) (tea.Model, tea.Cmd) {
	field, _ := record.ParseSortField(values[0])
	if err := m.store.Sort(field); err != nil {
		return m.toMenu(err.Error(), true), nil
	}
	return m.toMenu(fmt.Sprintf("Records sorted by %s.", field), false), nil
}

func submitExport(m Model, values []string) (tea.Model, tea.Cmd) {
	recs := m.store.All()
	if err := export.ToFile(values[0], recs); err != nil {
		return m.toMenu(fmt.Sprintf("Error exporting records: %v", err), true), nil
	}
	return m.toMenu(fmt.Sprintf("Exported %d records to %s.", len(recs), values[0]), false), nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := m.styles.StatusBar.Render("patientrec") + " " +
		m.styles.Help.Render(fmt.Sprintf("%d records  %s", m.store.Len(), m.opts.DataFile))
	if m.store.Dirty() {
		header += " " + m.styles.Warn.Render("(unsaved)")
	}
	b.WriteString(header + "\n\n")

	switch m.state {
	case stateMenu:
		b.WriteString(m.menu.View())
	case stateForm:
		f := m.form
		b.WriteString(m.styles.Title.Render(f.title) + "\n\n")
		for i := 0; i < f.idx; i++ {
			b.WriteString(m.styles.Help.Render(f.fields[i].label+": "+f.values[i]) + "\n")
		}
		b.WriteString(m.styles.Prompt.Render(f.fields[f.idx].label) + "\n")
		b.WriteString(f.fields[f.idx].input.View() + "\n\n")
		b.WriteString(m.styles.Help.Render("enter: next • esc: cancel"))
	case stateConfirm:
		box := m.styles.Confirm.Render(m.confirm.prompt) + "\n" + m.styles.Help.Render("y: yes • n: no")
		b.WriteString(m.styles.ConfirmBox.Render(box))
	case stateTable:
		b.WriteString(m.styles.Title.Render(m.title) + "\n")
		b.WriteString(m.styles.Box.Render(m.table.View()) + "\n")
		b.WriteString(m.styles.Help.Render("↑/↓: scroll • esc: back"))
	case stateText:
		b.WriteString(m.styles.Title.Render(m.title) + "\n\n")
		b.WriteString(m.text + "\n")
		b.WriteString(m.styles.Help.Render("esc: back"))
	}

	if m.status != "" {
		style := m.styles.Success
		if m.statusErr {
			style = m.styles.Error
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 20)).Render(b.String())
}
