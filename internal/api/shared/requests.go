package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

var validate = newValidator()

// newValidator reports fields by their JSON names. Its uuid tag accepts any
// form uuid.Parse does, in either letter case.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("uuid", isUUID); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// ReadBody reads the whole request body, up to MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := ReadBody(w, r)
	if err != nil {
		return err
	}
	return Unmarshal(body, v)
}

// Unmarshal decodes an already read body into v.
func Unmarshal(body []byte, v interface{}) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// ValidateRequest validates the struct tags of v.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}
