package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jeanpaul/patientrec/internal/record"
	"github.com/jeanpaul/patientrec/internal/schema"
)

// ErrEmpty is returned by operations that are undefined on an empty store.
var ErrEmpty = errors.New("no patient records")

// Confirmer gates destructive operations.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always answers every confirmation with v.
func Always(v bool) Confirmer {
	return ConfirmFunc(func(string) bool { return v })
}

// Stats summarises the stored records.
type Stats struct {
	Count      int
	AverageAge float64
}

// UpdateResult reports what an update actually changed.
type UpdateResult struct {
	Record      record.PatientRecord
	AgeRejected bool
}

// LoadResult reports whether a data file was present.
type LoadResult struct {
	Found bool
	Count int
}

// RecordStore holds patient records in insertion order. It is owned by a
// single front end and does no locking.
type RecordStore struct {
	records []record.PatientRecord
	dirty   bool
	schema  *schema.Validator
	log     *zap.Logger
}

// New returns an empty store. A nil logger disables logging.
func New(log *zap.Logger) *RecordStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordStore{
		records: []record.PatientRecord{},
		schema:  schema.NewValidator(),
		log:     log,
	}
}

func (s *RecordStore) Len() int { return len(s.records) }

// Dirty reports mutations not yet saved or replaced by a load.
func (s *RecordStore) Dirty() bool { return s.dirty }

// All returns a copy of the records in their current order.
func (s *RecordStore) All() []record.PatientRecord {
	return slices.Clone(s.records)
}

func (s *RecordStore) index(id string) int {
	return slices.IndexFunc(s.records, func(r record.PatientRecord) bool { return r.ID == id })
}

// Exists reports whether a record with id is present.
func (s *RecordStore) Exists(id string) bool {
	return s.index(strings.TrimSpace(id)) >= 0
}

// Add appends rec unless its id is already taken.
func (s *RecordStore) Add(rec record.PatientRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if s.index(rec.ID) >= 0 {
		return &record.DuplicateIDError{ID: rec.ID}
	}
	s.records = append(s.records, rec)
	s.dirty = true
	s.log.Info("record added", zap.String("id", rec.ID), zap.Int("count", len(s.records)))
	return nil
}

// Find returns the first record with id.
func (s *RecordStore) Find(id string) (record.PatientRecord, bool) {
	i := s.index(strings.TrimSpace(id))
	s.log.Debug("record lookup", zap.String("id", id), zap.Bool("found", i >= 0))
	if i < 0 {
		return record.PatientRecord{}, false
	}
	return s.records[i], true
}

// Update applies the supplied fields of p to the record with id. A rejected
// age is reported in the result and leaves the age unchanged.
func (s *RecordStore) Update(id string, p record.Patch) (UpdateResult, error) {
	id = strings.TrimSpace(id)
	i := s.index(id)
	if i < 0 {
		return UpdateResult{}, &record.NotFoundError{ID: id}
	}
	if p.Empty() {
		s.log.Debug("empty update", zap.String("id", id))
		return UpdateResult{Record: s.records[i]}, nil
	}
	updated, ageRejected := p.Apply(s.records[i])
	if updated != s.records[i] {
		s.records[i] = updated
		s.dirty = true
	}
	s.log.Info("record updated", zap.String("id", id), zap.Bool("age_rejected", ageRejected))
	return UpdateResult{Record: updated, AgeRejected: ageRejected}, nil
}

// Delete removes the record with id once confirm agrees. It returns false
// without error when the caller declines.
func (s *RecordStore) Delete(id string, confirm Confirmer) (bool, error) {
	id = strings.TrimSpace(id)
	if s.index(id) < 0 {
		return false, &record.NotFoundError{ID: id}
	}
	if !confirm.Confirm("Are you sure you want to delete patient " + id + "?") {
		s.log.Info("delete declined", zap.String("id", id))
		return false, nil
	}
	s.records = slices.DeleteFunc(s.records, func(r record.PatientRecord) bool { return r.ID == id })
	s.dirty = true
	s.log.Info("record deleted", zap.String("id", id), zap.Int("count", len(s.records)))
	return true, nil
}

// Stats returns the record count and mean age.
func (s *RecordStore) Stats() (Stats, error) {
	if len(s.records) == 0 {
		return Stats{}, ErrEmpty
	}
	total := 0
	for _, r := range s.records {
		total += r.Age
	}
	return Stats{
		Count:      len(s.records),
		AverageAge: float64(total) / float64(len(s.records)),
	}, nil
}

// Sort orders the records in place; equal keys keep their relative order.
func (s *RecordStore) Sort(field record.SortField) error {
	if len(s.records) == 0 {
		return ErrEmpty
	}
	slices.SortStableFunc(s.records, func(a, b record.PatientRecord) int {
		switch {
		case field.Less(a, b):
			return -1
		case field.Less(b, a):
			return 1
		}
		return 0
	})
	s.dirty = true
	s.log.Info("records sorted", zap.Stringer("field", field))
	return nil
}

// Clear empties the store once confirm agrees.
func (s *RecordStore) Clear(confirm Confirmer) bool {
	if !confirm.Confirm("Are you sure you want to clear ALL patient data?") {
		s.log.Info("clear declined")
		return false
	}
	n := len(s.records)
	s.records = []record.PatientRecord{}
	s.dirty = true
	s.log.Info("records cleared", zap.Int("removed", n))
	return true
}

// Snapshot renders the records exactly as Save would write them.
func (s *RecordStore) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes the whole collection to path. The file is replaced
// atomically so a failed save leaves the previous contents in place.
func (s *RecordStore) Save(path string) error {
	data, err := s.Snapshot()
	if err != nil {
		return &record.IOError{Op: "save", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, data); err != nil {
		s.log.Error("save failed", zap.String("path", path), zap.Error(err))
		return &record.IOError{Op: "save", Path: path, Err: err}
	}
	s.dirty = false
	s.log.Info("records saved", zap.String("path", path), zap.Int("count", len(s.records)))
	return nil
}

// Load replaces the collection with the contents of path. A missing file
// is not an error and leaves the collection untouched.
func (s *RecordStore) Load(path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Info("no data file", zap.String("path", path))
			return LoadResult{}, nil
		}
		return LoadResult{}, &record.IOError{Op: "load", Path: path, Err: err}
	}

	if err := s.schema.Validate(schema.Records, data); err != nil {
		s.log.Error("data file rejected", zap.String("path", path), zap.Error(err))
		return LoadResult{}, &record.IOError{Op: "load", Path: path, Err: err}
	}

	var loaded []record.PatientRecord
	if err := json.Unmarshal(data, &loaded); err != nil {
		return LoadResult{}, &record.IOError{Op: "load", Path: path, Err: err}
	}
	if loaded == nil {
		loaded = []record.PatientRecord{}
	}

	s.records = loaded
	s.dirty = false
	s.log.Info("records loaded", zap.String("path", path), zap.Int("count", len(loaded)))
	return LoadResult{Found: true, Count: len(loaded)}, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".patients-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
