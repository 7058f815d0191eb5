package record

import (
	"fmt"
	"strings"
)

// SortField selects the key used by the store's sort.
type SortField int

const (
	SortByID SortField = iota + 1
	SortByName
	SortByAge
)

func (f SortField) String() string {
	switch f {
	case SortByID:
		return "ID"
	case SortByName:
		return "Name"
	case SortByAge:
		return "Age"
	}
	return fmt.Sprintf("SortField(%d)", int(f))
}

// ParseSortField accepts the menu number or the field name.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "id":
		return SortByID, nil
	case "2", "name":
		return SortByName, nil
	case "3", "age":
		return SortByAge, nil
	}
	return 0, &ValidationError{Field: "sort field", Msg: fmt.Sprintf("unknown choice %q", s)}
}

// Less orders a before b under field f.
func (f SortField) Less(a, b PatientRecord) bool {
	switch f {
	case SortByName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case SortByAge:
		return a.Age < b.Age
	default:
		return a.ID < b.ID
	}
}
