// Package bind decodes ops API request bodies and validates them with go-playground/validator.
// Field names in messages are the json tag names, so a client sees "url is a required field"
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// MaxBody caps decoded request bodies
const MaxBody = 1 << 20

type checker struct {
	v  *validator.Validate
	tr ut.Translator
}

var get = sync.OnceValue(func() checker {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	if err := entrans.RegisterDefaultTranslations(v, tr); err != nil {
		logger.Named("bind").Error().Err(err).Msg("validator translations not registered")
	}
	return checker{v: v, tr: tr}
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// RegisterValidation adds tag with fn; a failure reads "<field> <message>"
func RegisterValidation(tag, message string, fn validator.Func) error {
	c := get()
	if err := c.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	return c.v.RegisterTranslation(tag, c.tr,
		func(t ut.Translator) error { return t.Add(tag, "{0} "+message, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// Struct validates v. The error is ErrorCodeValidation naming the first failing field
func Struct(v any) error {
	c := get()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		logger.Named("bind").Error().Err(err).Msg("validator rejected input type")
		return perr.New(perr.ErrorCodeValidation, "validation error")
	}
	fe := fields[0]
	return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(c.tr)), fe.Field())
}

// ParseJSON decodes exactly one JSON object into T, rejecting unknown fields, then runs Struct on it
func ParseJSON[T any](r *http.Request) (T, error) {
	var in, zero T
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	switch err := dec.Decode(&in); {
	case errors.Is(err, io.EOF):
		return zero, perr.JSONErrf("empty body")
	case err != nil:
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	case dec.More():
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Struct(in); err != nil {
		return zero, err
	}
	return in, nil
}
