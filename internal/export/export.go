package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/patientrec/internal/record"
)

// ErrUnsupportedFormat is returned for export paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported export format (use .xlsx, .yaml or .yml)")

const sheetName = "Patients"

// ToFile exports records in the format implied by the extension of path.
func ToFile(path string, records []record.PatientRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return XLSX(path, records)
	case ".yaml", ".yml":
		return YAMLFile(path, records)
	}
	return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// XLSX writes records to a single-sheet workbook with a header row and,
// when there are records, a summary footer.
func XLSX(path string, records []record.PatientRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{"ID", "Name", "Age", "Diagnosis"}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", bold); err != nil {
		return err
	}

	total := 0
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{r.ID, r.Name, r.Age, r.Diagnosis}); err != nil {
			return err
		}
		total += r.Age
	}

	if len(records) > 0 {
		footer := len(records) + 3
		avg := float64(total) / float64(len(records))
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", footer), &[]any{"Total Patients", len(records)}); err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", footer+1), &[]any{"Average Age", fmt.Sprintf("%.2f", avg)}); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// YAML encodes records as a YAML list.
func YAML(w io.Writer, records []record.PatientRecord) error {
	if records == nil {
		records = []record.PatientRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

// YAMLFile writes records as YAML to path.
func YAMLFile(path string, records []record.PatientRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := YAML(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
