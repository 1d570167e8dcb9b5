// Package repo persists harvester cursors as a single JSON array file
package repo

import (
	"encoding/json"
	"os"
	"sync"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/postref"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/net/http/bind"

	"mediarelay/internal/services/harvester/domain"

	"github.com/go-playground/validator/v10"
)

var tagsOnce sync.Once

// RegisterTags installs the posthost validation tag used on cursors
func RegisterTags() {
	tagsOnce.Do(func() {
		_ = bind.RegisterValidation("posthost", "must be kemono.cr or coomer.st", func(fl validator.FieldLevel) bool {
			return postref.AllowedHost(fl.Field().String())
		})
	})
}

// Validate checks one cursor
func Validate(c domain.Cursor) error {
	RegisterTags()
	return bind.Struct(c)
}

// File stores cursors at path
type File struct {
	path string
}

// NewFile returns a store for path
func NewFile(path string) *File { return &File{path: path} }

// Path returns the cursor file location
func (f *File) Path() string { return f.path }

// Load reads the cursor list. A missing file is an empty list;
// an unreadable or invalid file is an error and the harvester must not start on it
func (f *File) Load() ([]domain.Cursor, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return []domain.Cursor{}, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "read cursor file %s", f.path)
	}
	var out []domain.Cursor
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "decode cursor file %s", f.path)
	}
	for i, c := range out {
		if err := Validate(c); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "cursor %d in %s", i, f.path)
		}
	}
	if out == nil {
		out = []domain.Cursor{}
	}
	return out, nil
}

// Save rewrites the whole file atomically
func (f *File) Save(cs []domain.Cursor) error {
	if cs == nil {
		cs = []domain.Cursor{}
	}
	return exchange.WriteJSONAtomic(f.path, cs)
}
