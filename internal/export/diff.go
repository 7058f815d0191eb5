package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// UnsavedDiff returns a unified diff from the data file at path to the
// in-memory snapshot. A missing file diffs as empty. Identical content
// yields "".
func UnsavedDiff(path string, current []byte) (string, error) {
	onDisk, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	before, after := string(onDisk), string(current)
	if before == after {
		return "", nil
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(path+" (saved)", path+" (unsaved)", before, edits)), nil
}
