// Package fix applies targeted text edits to copied native sources. The
// generator uses it to open up the private section of the model header so
// the binding can reach the class members it declares.
package fix

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"spbg/internal/diag"
)

// TextEdit replaces the half-open byte range [Start, End) with NewText.
// When OldText is set the range must currently hold exactly that text.
type TextEdit struct {
	Start   int
	End     int
	OldText string
	NewText string
}

// Fix is a named group of edits against one file.
type Fix struct {
	ID    string
	Title string
	Edits []TextEdit
}

// AppliedFix records a fix written to disk.
type AppliedFix struct {
	ID        string
	Title     string
	Path      string
	EditCount int
}

// Apply returns content with every edit of f applied. Edits are applied from
// the end of the buffer backwards so earlier offsets stay valid; overlapping
// edits and stale OldText are errors.
func Apply(content []byte, f Fix) ([]byte, error) {
	edits := append([]TextEdit(nil), f.Edits...)
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start == edits[j].Start {
			return edits[i].End > edits[j].End
		}
		return edits[i].Start > edits[j].Start
	})
	for i := 1; i < len(edits); i++ {
		if spansConflict(edits[i], edits[i-1]) {
			return nil, fmt.Errorf("fix %s: overlapping edits at %d and %d", f.ID, edits[i].Start, edits[i-1].Start)
		}
	}

	working := append([]byte(nil), content...)
	for _, edit := range edits {
		if edit.Start < 0 || edit.End < edit.Start || edit.End > len(working) {
			return nil, fmt.Errorf("fix %s: edit span [%d,%d) out of range", f.ID, edit.Start, edit.End)
		}
		if edit.OldText != "" && !bytes.Equal(working[edit.Start:edit.End], []byte(edit.OldText)) {
			return nil, fmt.Errorf("fix %s: existing text does not match expected content", f.ID)
		}
		suffix := append([]byte(nil), working[edit.End:]...)
		working = append(append(working[:edit.Start], edit.NewText...), suffix...)
	}
	return working, nil
}

// ApplyFile applies the fix built by build to the file at path in place,
// keeping the file's permissions.
func ApplyFile(path string, build func([]byte) (Fix, error)) (*AppliedFix, error) {
	// #nosec G304 -- path is a file the generator copied into the output directory
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.IOReadFailed, path, err)
	}
	f, err := build(content)
	if err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			return nil, de.WithPath(path)
		}
		return nil, err
	}
	out, err := Apply(content, f)
	if err != nil {
		return nil, diag.Wrap(diag.IOWriteFailed, path, err)
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, out, mode); err != nil {
		return nil, diag.Wrap(diag.IOWriteFailed, path, err)
	}
	return &AppliedFix{ID: f.ID, Title: f.Title, Path: path, EditCount: len(f.Edits)}, nil
}

// spansConflict reports whether two edits overlap. Spans are half-open; two
// insertions never conflict and an insertion conflicts with a span that
// strictly contains its position.
func spansConflict(a, b TextEdit) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}
