package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs and converts failures to AppErrors
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports JSON field names
func NewValidator() *Validator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("blend_name", validateBlendName)

	return &Validator{validate: validate}
}

// Struct validates s
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return apperrors.NewValidationErrors(out).WithCause(err)
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", field)
	case "blend_name":
		return fmt.Sprintf("%s must be a printable, non-blank name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// validateBlendName accepts non-blank names without control characters
func validateBlendName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// decodeJSON reads a JSON body into dst and validates it
func (v *Validator) decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.NewBadRequestError("Request body is required")
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return apperrors.NewBadRequestError("Request body too large").
				WithMetadata("limit_bytes", maxErr.Limit)
		case stderrors.Is(err, io.EOF):
			return apperrors.NewBadRequestError("Request body is required")
		default:
			return apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err)
		}
	}

	return v.Struct(dst)
}
