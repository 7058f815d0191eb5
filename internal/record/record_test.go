package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TrimsAndValidates(t *testing.T) {
	r, err := New("  P1 ", " Ada Lovelace ", 36, " Flu\t")
	require.NoError(t, err)
	assert.Equal(t, PatientRecord{ID: "P1", Name: "Ada Lovelace", Age: 36, Diagnosis: "Flu"}, r)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		id, pname string
		age       int
		diagnosis string
		field     string
	}{
		{"empty id", " ", "Ada", 30, "Flu", "id"},
		{"empty name", "P1", "", 30, "Flu", "name"},
		{"empty diagnosis", "P1", "Ada", 30, "  ", "diagnosis"},
		{"negative age", "P1", "Ada", -1, "Flu", "age"},
		{"age too high", "P1", "Ada", 121, "Flu", "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.pname, tt.age, tt.diagnosis)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNew_AgeBoundsInclusive(t *testing.T) {
	for _, age := range []int{MinAge, MaxAge} {
		_, err := New("P1", "Ada", age, "Flu")
		assert.NoError(t, err, "age %d", age)
	}
}

func TestParseAge(t *testing.T) {
	n, err := ParseAge(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for _, in := range []string{"", "forty", "4.2", "-3", "200"} {
		_, err := ParseAge(in)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, in)
	}
}

func TestPatch_Apply(t *testing.T) {
	base := PatientRecord{ID: "P1", Name: "Ada", Age: 36, Diagnosis: "Flu"}

	got, rejected := Patch{}.Apply(base)
	assert.Equal(t, base, got)
	assert.False(t, rejected)

	got, rejected = Patch{Name: Text(""), Age: Text("50"), Diagnosis: Text("Cold")}.Apply(base)
	assert.Equal(t, PatientRecord{ID: "P1", Name: "Ada", Age: 50, Diagnosis: "Cold"}, got)
	assert.False(t, rejected)

	got, rejected = Patch{Age: Text("old")}.Apply(base)
	assert.Equal(t, 36, got.Age)
	assert.True(t, rejected)
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.True(t, Patch{Name: Text("  ")}.Empty())
	assert.False(t, Patch{Age: Text("3")}.Empty())
}

func TestParseSortField(t *testing.T) {
	cases := map[string]SortField{
		"1": SortByID, "ID": SortByID,
		"2": SortByName, " name ": SortByName,
		"3": SortByAge, "Age": SortByAge,
	}
	for in, want := range cases {
		got, err := ParseSortField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortField("4")
	assert.Error(t, err)
}

func TestSortField_Less(t *testing.T) {
	a := PatientRecord{ID: "b", Name: "alice", Age: 50}
	b := PatientRecord{ID: "a", Name: "Bob", Age: 20}

	assert.True(t, SortByID.Less(b, a))
	assert.True(t, SortByName.Less(a, b))
	assert.True(t, SortByAge.Less(b, a))
	assert.Equal(t, "Name", SortByName.String())
}

func TestErrors(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving: %w", &IOError{Op: "save", Path: "patients.json", Err: cause})

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save patients.json: disk full", ioErr.Error())

	assert.Equal(t, `patient id "P1" already exists`, (&DuplicateIDError{ID: "P1"}).Error())
	assert.Equal(t, `no record found with id "P9"`, (&NotFoundError{ID: "P9"}).Error())
	assert.Equal(t, "invalid age: must be an integer", (&ValidationError{Field: "age", Msg: "must be an integer"}).Error())
}
