package record

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinAge = 0
	MaxAge = 120
)

// PatientRecord is a single patient entry as persisted in the data file.
type PatientRecord struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	Age       int    `json:"age" yaml:"age" validate:"min=0,max=120"`
	Diagnosis string `json:"diagnosis" yaml:"diagnosis" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New builds a validated record. Text fields are trimmed first.
func New(id, name string, age int, diagnosis string) (PatientRecord, error) {
	r := PatientRecord{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Age:       age,
		Diagnosis: strings.TrimSpace(diagnosis),
	}
	if err := r.Validate(); err != nil {
		return PatientRecord{}, err
	}
	return r, nil
}

// Validate reports the first invalid field as a *ValidationError.
func (r PatientRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Msg: err.Error()}
	}
	return fromFieldError(errs[0])
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Msg: "cannot be empty"}
	case "min", "max":
		return &ValidationError{Field: field, Msg: "must be between " + strconv.Itoa(MinAge) + " and " + strconv.Itoa(MaxAge)}
	default:
		return &ValidationError{Field: field, Msg: "failed " + fe.Tag() + " check"}
	}
}

// ParseAge converts user text into an age in the accepted range.
func ParseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "age", Msg: "cannot be empty"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "age", Msg: "must be an integer"}
	}
	if n < MinAge || n > MaxAge {
		return 0, &ValidationError{Field: "age", Msg: "must be between " + strconv.Itoa(MinAge) + " and " + strconv.Itoa(MaxAge)}
	}
	return n, nil
}

// Patch carries the fields of a partial update. A nil or blank field keeps
// the current value. Age stays textual so bad input can be reported softly.
type Patch struct {
	Name      *string
	Age       *string
	Diagnosis *string
}

// Apply returns the patched copy of r and whether a supplied age was rejected.
func (p Patch) Apply(r PatientRecord) (PatientRecord, bool) {
	if v, ok := supplied(p.Name); ok {
		r.Name = v
	}
	ageRejected := false
	if v, ok := supplied(p.Age); ok {
		if n, err := ParseAge(v); err == nil {
			r.Age = n
		} else {
			ageRejected = true
		}
	}
	if v, ok := supplied(p.Diagnosis); ok {
		r.Diagnosis = v
	}
	return r, ageRejected
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	_, n := supplied(p.Name)
	_, a := supplied(p.Age)
	_, d := supplied(p.Diagnosis)
	return !n && !a && !d
}

func supplied(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}

// Text is a helper for building patches from literals.
func Text(s string) *string { return &s }
