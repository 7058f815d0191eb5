package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeanpaul/patientrec/internal/export"
	"github.com/jeanpaul/patientrec/internal/record"
	"github.com/jeanpaul/patientrec/internal/store"
	"github.com/jeanpaul/patientrec/internal/tui"
)

func (s *Shell) add(ctx context.Context) error {
	s.println("\n" + s.styles.Title.Render("Add New Patient Record"))
	id, err := s.askNonEmpty(ctx, "Enter Patient ID: ")
	if err != nil {
		return err
	}
	if s.store.Exists(id) {
		s.println(s.styles.Error.Render("ID already exists. Please use a unique ID."))
		return nil
	}
	name, err := s.askNonEmpty(ctx, "Enter Patient Name: ")
	if err != nil {
		return err
	}
	age, err := s.askInt(ctx, "Enter Patient Age: ", record.MinAge, record.MaxAge)
	if err != nil {
		return err
	}
	diagnosis, err := s.askNonEmpty(ctx, "Enter Diagnosis: ")
	if err != nil {
		return err
	}

	rec, err := record.New(id, name, age, diagnosis)
	if err == nil {
		err = s.store.Add(rec)
	}
	if err != nil {
		s.println(s.styles.Error.Render(err.Error()))
		return nil
	}
	s.println(s.styles.Success.Render("Patient record added successfully."))
	return nil
}

func (s *Shell) view(context.Context) error {
	if s.store.Len() == 0 {
		s.println("\nNo patient records available.")
		return nil
	}
	s.println("\n" + s.styles.Title.Render("All Patient Records:"))
	s.println(tui.RecordTable(s.styles, s.store.All()))
	return nil
}

func (s *Shell) search(ctx context.Context) error {
	id, err := s.askNonEmpty(ctx, "Enter Patient ID to search: ")
	if err != nil {
		return err
	}
	rec, ok := s.store.Find(id)
	if !ok {
		s.println(fmt.Sprintf("No record found with ID %s.", id))
		return nil
	}
	s.println("\n" + s.styles.Title.Render("Search Result:"))
	s.println(tui.RecordTable(s.styles, []record.PatientRecord{rec}))
	return nil
}

func (s *Shell) update(ctx context.Context) error {
	id, err := s.askNonEmpty(ctx, "Enter Patient ID to update: ")
	if err != nil {
		return err
	}
	rec, ok := s.store.Find(id)
	if !ok {
		s.println(s.styles.Error.Render("Patient not found."))
		return nil
	}
	s.println(tui.FormatRecord(rec))

	var p record.Patch
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"Enter new name (press enter to keep current): ", &p.Name},
		{"Enter new age (press enter to keep current): ", &p.Age},
		{"Enter new diagnosis (press enter to keep current): ", &p.Diagnosis},
	}
	for _, f := range fields {
		v, err := s.ask(ctx, f.prompt)
		if err != nil {
			return err
		}
		*f.dst = &v
	}

	res, err := s.store.Update(id, p)
	if err != nil {
		s.println(s.styles.Error.Render(err.Error()))
		return nil
	}
	if res.AgeRejected {
		s.println(s.styles.Warn.Render("Invalid age. Keeping current."))
	}
	s.println(s.styles.Success.Render("Patient record updated successfully."))
	return nil
}

func (s *Shell) delete(ctx context.Context) error {
	id, err := s.askNonEmpty(ctx, "Enter Patient ID to delete: ")
	if err != nil {
		return err
	}
	var askErr error
	deleted, err := s.store.Delete(id, s.confirmer(ctx, "y/n", &askErr))
	if askErr != nil {
		return askErr
	}
	var nf *record.NotFoundError
	switch {
	case errors.As(err, &nf):
		s.println(s.styles.Error.Render("Patient not found."))
	case err != nil:
		s.println(s.styles.Error.Render(err.Error()))
	case deleted:
		s.println(s.styles.Success.Render("Patient record deleted."))
	default:
		s.println("Delete operation canceled.")
	}
	return nil
}

func (s *Shell) stats(context.Context) error {
	st, err := s.store.Stats()
	if errors.Is(err, store.ErrEmpty) {
		s.println("No records to calculate stats.")
		return nil
	}
	s.println("\n" + tui.FormatStats(st))
	return nil
}

func (s *Shell) save(context.Context) error {
	s.saveTo(s.opts.DataFile)
	return nil
}

func (s *Shell) saveTo(path string) {
	if err := s.store.Save(path); err != nil {
		s.println(s.styles.Error.Render(fmt.Sprintf("Error saving records: %v", err)))
		return
	}
	s.println(s.styles.Success.Render(fmt.Sprintf("Records saved to %s.", path)))
}

func (s *Shell) load(context.Context) error {
	s.loadFrom(s.opts.DataFile)
	return nil
}

func (s *Shell) loadFrom(path string) {
	res, err := s.store.Load(path)
	switch {
	case err != nil:
		s.println(s.styles.Error.Render(fmt.Sprintf("Error loading records: %v", err)))
	case !res.Found:
		s.println("No saved patient records found.")
	default:
		s.println(s.styles.Success.Render(fmt.Sprintf("Records loaded from %s.", path)))
	}
}

func (s *Shell) clear(ctx context.Context) error {
	var askErr error
	cleared := s.store.Clear(s.confirmer(ctx, "yes/no", &askErr))
	if askErr != nil {
		return askErr
	}
	if cleared {
		s.println(s.styles.Success.Render("All patient data cleared."))
	} else {
		s.println("Clear operation cancelled.")
	}
	return nil
}

func (s *Shell) help(context.Context) error {
	s.println(tui.RenderHelp(s.opts.Theme, s.opts.Width))
	return nil
}

func (s *Shell) sort(ctx context.Context) error {
	if s.store.Len() == 0 {
		s.println("No records to sort.")
		return nil
	}
	s.println("Sort by field:\n1. ID\n2. Name\n3. Age")
	choice, err := s.ask(ctx, "Choose field to sort by (1-3): ")
	if err != nil {
		return err
	}
	field, err := record.ParseSortField(choice)
	if err != nil {
		s.println(s.styles.Error.Render("Invalid choice."))
		return nil
	}
	if err := s.store.Sort(field); err != nil {
		s.println(s.styles.Error.Render(err.Error()))
		return nil
	}
	s.println(s.styles.Success.Render(fmt.Sprintf("Records sorted by %s.", field)))
	return nil
}

func (s *Shell) export(ctx context.Context) error {
	path, err := s.askNonEmpty(ctx, "Enter export path (.xlsx, .yaml, .yml): ")
	if err != nil {
		return err
	}
	recs := s.store.All()
	if err := export.ToFile(path, recs); err != nil {
		s.println(s.styles.Error.Render(fmt.Sprintf("Error exporting records: %v", err)))
		return nil
	}
	s.println(s.styles.Success.Render(fmt.Sprintf("Exported %d records to %s.", len(recs), path)))
	return nil
}

func (s *Shell) diff(context.Context) error {
	snap, err := s.store.Snapshot()
	if err != nil {
		s.println(s.styles.Error.Render(err.Error()))
		return nil
	}
	d, err := export.UnsavedDiff(s.opts.DataFile, snap)
	if err != nil {
		s.println(s.styles.Error.Render(fmt.Sprintf("Error reading %s: %v", s.opts.DataFile, err)))
		return nil
	}
	if d == "" {
		s.println("No unsaved changes.")
		return nil
	}
	s.println(d)
	return nil
}
