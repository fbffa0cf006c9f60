// Package validation validates request DTOs with validator/v10 and classifies
// failures into the API's error codes.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/util"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	//nolint:errcheck // Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return util.IsSlug(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate checks s and returns a coded domain error. Missing fields win over
// format errors: a request lacking a slug reports MISSING_REQUIRED_FIELDS, not
// INVALID_SLUG_FORMAT.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Validation(err.Error())
	}

	var missing, badSlug, badURL []string
	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
		switch e.Tag() {
		case "required":
			missing = append(missing, e.Field())
		case "slug":
			badSlug = append(badSlug, e.Field())
		case "url", "http_url":
			badURL = append(badURL, e.Field())
		}
	}

	switch {
	case len(missing) > 0:
		sort.Strings(missing)
		return domainerrors.MissingRequiredFields(fmt.Sprintf("missing required fields: %v", missing), missing)
	case len(badSlug) > 0:
		return domainerrors.InvalidSlugFormat("slug may only contain lowercase letters, numbers, hyphens and underscores").
			WithDetails(fieldErrors)
	case len(badURL) > 0:
		return domainerrors.InvalidURLFormat("invalid URL format").WithDetails(fieldErrors)
	default:
		return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
	}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "slug":
		return "must match ^[a-z0-9-_]+$"
	case "url", "http_url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
