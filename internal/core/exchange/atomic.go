package exchange

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	perr "mediarelay/internal/platform/errors"
)

// PartialSuffix marks files still being written; readers skip them
const PartialSuffix = ".part"

// IsPartial reports whether name is an in-progress write
func IsPartial(name string) bool {
	return strings.HasSuffix(name, PartialSuffix) || strings.HasPrefix(name, ".")
}

// WriteAtomic streams write's output to a hidden temp file next to dest, syncs it and renames it over dest
func WriteAtomic(dest string, write func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+"-*"+PartialSuffix)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create temp for %s", dest)
	}
	fail := func(err error, what string) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return perr.Wrapf(err, perr.ErrorCodeIO, "%s %s", what, dest)
	}
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fail(err, "sync")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return perr.Wrapf(err, perr.ErrorCodeIO, "close %s", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return perr.Wrapf(err, perr.ErrorCodeIO, "rename into %s", dest)
	}
	return nil
}

// WriteFileAtomic writes data to dest atomically
func WriteFileAtomic(dest string, data []byte) error {
	return WriteAtomic(dest, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "write %s", dest)
		}
		return nil
	})
}

// WriteJSONAtomic writes v as indented JSON to dest atomically
func WriteJSONAtomic(dest string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s", filepath.Base(dest))
	}
	return WriteFileAtomic(dest, append(b, '\n'))
}
