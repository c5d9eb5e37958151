package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/studytracker/internal/models"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in validation details.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return isDate(fl.Field().String())
	})

	return v
}

// isDate reports whether s is a real calendar date in YYYY-MM-DD form.
func isDate(s string) bool {
	if len(s) != len(models.DateLayout) {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return badRequest("Could not read request body.")
	}
	if len(body) > maxBodyBytes {
		return &Error{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large."}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidFields(map[string]string{typeErr.Field: "type"})
		}
		return badRequest("Invalid JSON in request body.")
	}
	return nil
}

// validateStruct runs the validator and converts failures to a 400 with a
// field to rule map in details.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return badRequest("Invalid input.")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return invalidFields(details)
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid " + strings.ReplaceAll(name, "_", " ") + ".")
	}
	return id, nil
}

// optionalID is an id that clients send as a number, a numeric string, an
// empty string or null. Anything that is not a positive integer means "none".
type optionalID struct {
	Value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Value = nil

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var n int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return nil
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}

	if n > 0 {
		o.Value = &n
	}
	return nil
}

// optionalNumber is an integer sent as a number or numeric string.
// Null and the empty string leave it unset.
type optionalNumber struct {
	Value *int64
}

func (o *optionalNumber) UnmarshalJSON(data []byte) error {
	o.Value = nil

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		if v != float64(int64(v)) {
			return notNumber(data)
		}
		n := int64(v)
		o.Value = &n
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return notNumber(data)
		}
		o.Value = &n
	default:
		return notNumber(data)
	}
	return nil
}

func notNumber(data []byte) error {
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(int64(0))}
}

// looseBool accepts true/false, 0/1 and their string forms. Null is unset.
type looseBool struct {
	Set   bool
	Value bool
}

// notBoolean is reported as a type error so the decoder attaches the field name.
func notBoolean(data []byte) error {
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(true)}
}

func (b *looseBool) UnmarshalJSON(data []byte) error {
	*b = looseBool{}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		b.Value = v
	case float64:
		b.Value = v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			b.Value = true
		case "false", "0", "no", "off", "":
			b.Value = false
		default:
			return notBoolean(data)
		}
	default:
		return notBoolean(data)
	}

	b.Set = true
	return nil
}
