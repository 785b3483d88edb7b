package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

type pendingWrite struct {
	path string
	data []byte
	mode os.FileMode
}

type stagedWrite struct {
	pendingWrite
	tmp string
}

// commitWrites stages every write into a temporary file next to its
// destination, then renames them into place in order. If any staging step
// fails no destination is touched.
func commitWrites(writes []pendingWrite) error {
	staged := make([]stagedWrite, 0, len(writes))
	cleanup := func() {
		for _, s := range staged {
			_ = os.Remove(s.tmp)
		}
	}
	for _, w := range writes {
		tmp, err := stage(w)
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		staged = append(staged, stagedWrite{pendingWrite: w, tmp: tmp})
	}

	for i, s := range staged {
		if err := os.Rename(s.tmp, s.path); err != nil {
			staged = staged[i:]
			cleanup()
			return &RenameError{Path: s.path, Committed: i, Err: err}
		}
	}
	return nil
}

func stage(w pendingWrite) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(w.path), ".shieldgen-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	_, err = f.Write(w.data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, w.mode)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// RenameError reports a rename that failed after Committed earlier outputs
// were already in place.
type RenameError struct {
	Path      string
	Committed int
	Err       error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to move %s into place (%d earlier outputs already written): %v", e.Path, e.Committed, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}
