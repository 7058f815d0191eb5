package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/patientrec/internal/record"
)

func mustRecord(t *testing.T, id, name string, age int, diagnosis string) record.PatientRecord {
	t.Helper()
	r, err := record.New(id, name, age, diagnosis)
	require.NoError(t, err)
	return r
}

func seeded(t *testing.T) *RecordStore {
	t.Helper()
	s := New(nil)
	require.NoError(t, s.Add(mustRecord(t, "P3", "carol", 52, "Asthma")))
	require.NoError(t, s.Add(mustRecord(t, "P1", "Alice", 30, "Flu")))
	require.NoError(t, s.Add(mustRecord(t, "P2", "bob", 30, "Fracture")))
	return s
}

func ids(recs []record.PatientRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s := seeded(t)
	assert.Equal(t, []string{"P3", "P1", "P2"}, ids(s.All()))
	assert.True(t, s.Dirty())
}

func TestAdd_DuplicateLeavesStoreUnchanged(t *testing.T) {
	s := seeded(t)
	before := s.All()

	err := s.Add(mustRecord(t, "P1", "Someone Else", 44, "Cold"))

	var dup *record.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "P1", dup.ID)
	assert.Empty(t, cmp.Diff(before, s.All()))
}

func TestAdd_RejectsInvalidRecord(t *testing.T) {
	s := New(nil)
	err := s.Add(record.PatientRecord{ID: "P1", Name: "Ann", Age: 121, Diagnosis: "x"})

	var ve *record.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 0, s.Len())
}

func TestFind(t *testing.T) {
	s := seeded(t)

	r, ok := s.Find("P2")
	require.True(t, ok)
	assert.Equal(t, "bob", r.Name)

	_, ok = s.Find("nope")
	assert.False(t, ok)
}

func TestUpdate_OmittedFieldsUnchanged(t *testing.T) {
	s := seeded(t)

	res, err := s.Update("P1", record.Patch{Name: record.Text("Alicia"), Diagnosis: record.Text("  ")})
	require.NoError(t, err)
	assert.False(t, res.AgeRejected)

	r, _ := s.Find("P1")
	assert.Equal(t, record.PatientRecord{ID: "P1", Name: "Alicia", Age: 30, Diagnosis: "Flu"}, r)
}

func TestUpdate_InvalidAgeIsSoftFailure(t *testing.T) {
	s := seeded(t)

	for _, age := range []string{"abc", "121", "-1"} {
		res, err := s.Update("P1", record.Patch{Age: record.Text(age), Diagnosis: record.Text("Cold")})
		require.NoError(t, err)
		assert.True(t, res.AgeRejected, age)
	}

	r, _ := s.Find("P1")
	assert.Equal(t, 30, r.Age)
	assert.Equal(t, "Cold", r.Diagnosis)
}

func TestUpdate_NotFound(t *testing.T) {
	s := seeded(t)
	_, err := s.Update("missing", record.Patch{Name: record.Text("x")})

	var nf *record.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	s := seeded(t)
	before := s.All()

	var asked string
	deleted, err := s.Delete("P1", ConfirmFunc(func(p string) bool { asked = p; return false }))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, asked, "P1")
	assert.Empty(t, cmp.Diff(before, s.All()))

	deleted, err = s.Delete("P1", Always(true))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"P3", "P2"}, ids(s.All()))
}

func TestDelete_NotFoundSkipsConfirmation(t *testing.T) {
	s := seeded(t)
	called := false
	_, err := s.Delete("ghost", ConfirmFunc(func(string) bool { called = true; return true }))

	var nf *record.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.False(t, called)
}

func TestStats(t *testing.T) {
	s := New(nil)
	_, err := s.Stats()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, s.Add(mustRecord(t, "A", "a", 30, "d")))
	require.NoError(t, s.Add(mustRecord(t, "B", "b", 40, "d")))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
	assert.InDelta(t, 35.0, st.AverageAge, 1e-9)
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		field record.SortField
		want  []string
	}{
		{"by id", record.SortByID, []string{"P1", "P2", "P3"}},
		{"by name ignores case", record.SortByName, []string{"P1", "P2", "P3"}},
		{"by age is stable", record.SortByAge, []string{"P1", "P2", "P3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			require.NoError(t, s.Sort(tt.field))
			assert.Equal(t, tt.want, ids(s.All()))
		})
	}
}

func TestSort_StableForEqualAges(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Add(mustRecord(t, "Z", "z", 30, "d")))
	require.NoError(t, s.Add(mustRecord(t, "A", "a", 30, "d")))
	require.NoError(t, s.Add(mustRecord(t, "M", "m", 20, "d")))

	require.NoError(t, s.Sort(record.SortByAge))
	assert.Equal(t, []string{"M", "Z", "A"}, ids(s.All()))
}

func TestSort_Idempotent(t *testing.T) {
	s := seeded(t)
	for _, f := range []record.SortField{record.SortByAge, record.SortByID} {
		require.NoError(t, s.Sort(f))
		once := s.All()
		require.NoError(t, s.Sort(f))
		assert.Empty(t, cmp.Diff(once, s.All()), f.String())
	}
}

func TestSort_Empty(t *testing.T) {
	assert.ErrorIs(t, New(nil).Sort(record.SortByID), ErrEmpty)
}

func TestClear(t *testing.T) {
	s := seeded(t)

	assert.False(t, s.Clear(Always(false)))
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Clear(Always(true)))
	assert.Equal(t, 0, s.Len())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	s := seeded(t)
	require.NoError(t, s.Save(path))
	assert.False(t, s.Dirty())

	other := New(nil)
	res, err := other.Load(path)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 3, res.Count)

	if diff := cmp.Diff(s.All(), other.All()); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSave_EmptyStoreWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, New(nil).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestSave_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := seeded(t).Save(filepath.Join(blocker, "patients.json"))

	var ioErr *record.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "save", ioErr.Op)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	s := seeded(t)
	res, err := s.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 3, s.Len())
}

func TestLoad_ReplacesWholesaleAndKeepsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	doc := `[{"id":"X","name":"One","age":5,"diagnosis":"a"},{"id":"X","name":"Two","age":6,"diagnosis":"b"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := seeded(t)
	_, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "X"}, ids(s.All()))
	assert.False(t, s.Dirty())
}

func TestDelete_RemovesEveryLoadedDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	doc := `[{"id":"X","name":"One","age":5,"diagnosis":"a"},{"id":"X","name":"Two","age":6,"diagnosis":"b"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := New(nil)
	_, err := s.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	asked := 0
	deleted, err := s.Delete("X", ConfirmFunc(func(string) bool { asked++; return true }))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, asked)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Dirty())
}

func TestLoad_BadContentLeavesStoreUntouched(t *testing.T) {
	cases := map[string]string{
		"not json":   `{{{`,
		"wrong type": `[{"id":"P1","name":"n","age":"old","diagnosis":"d"}]`,
		"missing":    `[{"id":"P1","name":"n"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "patients.json")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

			s := seeded(t)
			before := s.All()
			_, err := s.Load(path)

			var ioErr *record.IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, "load", ioErr.Op)
			assert.Empty(t, cmp.Diff(before, s.All()))
		})
	}
}

func TestIOError_Unwraps(t *testing.T) {
	path := t.TempDir() // a directory cannot be read as a file
	_, err := New(nil).Load(path)
	require.Error(t, err)

	var ioErr *record.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.NotNil(t, errors.Unwrap(err))
}
