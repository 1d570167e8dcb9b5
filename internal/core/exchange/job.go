package exchange

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	perr "mediarelay/internal/platform/errors"
)

// Job is a staging directory owned by one producer until Publish
type Job struct {
	Name     string
	Dir      string
	outgoing string
}

// Stage creates, or reopens for resume, the staging directory for name
func (l Layout) Stage(name string) (*Job, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(l.Staging, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "create staging dir %s", name)
	}
	return &Job{Name: name, Dir: dir, outgoing: l.Outgoing}, nil
}

// Path returns the staging path for file
func (j *Job) Path(file string) string { return filepath.Join(j.Dir, file) }

// Exists reports whether a completed file is already staged
func (j *Job) Exists(file string) bool {
	st, err := os.Stat(j.Path(file))
	return err == nil && st.Mode().IsRegular()
}

// WriteText stages a text sidecar
func (j *Job) WriteText(file, text string) error {
	return WriteFileAtomic(j.Path(file), []byte(text))
}

// WriteJSON stages an indented JSON sidecar
func (j *Job) WriteJSON(file string, v any) error {
	return WriteJSONAtomic(j.Path(file), v)
}

// Stream copies r into file via a .part file; a failed copy leaves no file under the final name
func (j *Job) Stream(file string, r io.Reader) (int64, error) {
	var n int64
	err := WriteAtomic(j.Path(file), func(w io.Writer) error {
		var err error
		n, err = io.Copy(w, r)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "download %s", file)
		}
		return nil
	})
	return n, err
}

// Entries lists completed files in name order
func (j *Job) Entries() ([]string, error) {
	ents, err := os.ReadDir(j.Dir)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "read staging dir %s", j.Name)
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.Type().IsRegular() && !IsPartial(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Publish renames the staging directory into the outgoing root under the same name.
// If an outgoing job of that name already exists it wins: the staging dir is discarded
// and the error is a conflict, so a later stage of the same name starts clean
func (j *Job) Publish() (string, error) {
	if err := os.MkdirAll(j.outgoing, 0o755); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "create outgoing root")
	}
	target := filepath.Join(j.outgoing, j.Name)
	if _, err := os.Lstat(target); err == nil {
		return "", j.conflict(perr.Conflictf("outgoing job %s already exists", j.Name))
	}
	if err := os.Rename(j.Dir, target); err != nil {
		if errors.Is(err, fs.ErrExist) || errors.Is(err, syscall.ENOTEMPTY) {
			return "", j.conflict(perr.Wrapf(err, perr.ErrorCodeConflict, "outgoing job %s already exists", j.Name))
		}
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "publish %s", j.Name)
	}
	return target, nil
}

// conflict drops the losing staging dir; a failed removal is reported instead of the conflict
func (j *Job) conflict(err error) error {
	if derr := j.Discard(); derr != nil {
		return derr
	}
	return err
}

// Discard removes the staging directory and everything in it
func (j *Job) Discard() error {
	return perr.WrapIf(os.RemoveAll(j.Dir), perr.ErrorCodeIO, "discard staging dir")
}
