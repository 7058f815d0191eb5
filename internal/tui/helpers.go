package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeanpaul/patientrec/internal/record"
	"github.com/jeanpaul/patientrec/internal/store"
)

// HelpMarkdown documents every menu option.
const HelpMarkdown = `# Help / Instructions

- **1** Add New Patient Record: add a patient with ID, name, age and diagnosis.
- **2** View All Records: display all patient records.
- **3** Search for a Patient: search by patient ID.
- **4** Update a Patient Record: update name, age and/or diagnosis.
- **5** Delete a Patient Record: delete by ID after confirmation.
- **6** Calculate Summary Stats: total patients and average age.
- **7** Save to File: save all records to the data file.
- **8** Load from File: load saved records, replacing those in memory.
- **9** Clear All Data: delete all records after confirmation.
- **10** Help: show this help.
- **11** Sort Records: sort by ID, name or age.
- **12** Export Records: write records to an .xlsx or .yaml file.
- **13** Show Unsaved Changes: diff the records in memory against the data file.
- **0** Exit: leave the system.
`

// RenderHelp renders the help text for a terminal of the given width,
// falling back to the raw markdown when rendering fails. The plain theme
// renders without colour.
func RenderHelp(theme string, width int) string {
	if width <= 0 {
		width = 80
	}
	style := "dark"
	if theme == "plain" {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return HelpMarkdown
	}
	out, err := r.Render(HelpMarkdown)
	if err != nil {
		return HelpMarkdown
	}
	return out
}

// RecordTable renders records as a bordered table.
func RecordTable(st Styles, records []record.PatientRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ID, r.Name, strconv.Itoa(r.Age), r.Diagnosis})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.Separator).
		Headers("ID", "Name", "Age", "Diagnosis").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Header.Padding(0, 1)
			}
			return st.Cell.Padding(0, 1)
		})
	return t.String()
}

// FormatStats renders the summary statistics block.
func FormatStats(s store.Stats) string {
	var b strings.Builder
	b.WriteString("Summary Statistics:\n")
	b.WriteString(fmt.Sprintf("Total Patients: %d\n", s.Count))
	b.WriteString(fmt.Sprintf("Average Age: %.2f", s.AverageAge))
	return b.String()
}

// FormatRecord is the one-line view of a record shown before an update.
func FormatRecord(r record.PatientRecord) string {
	return fmt.Sprintf("Current Name: %s, Age: %d, Diagnosis: %s", r.Name, r.Age, r.Diagnosis)
}
