package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldErrors maps a field name to its validation failure message.
type FieldErrors map[string]string

// Struct validates a request struct against its `validate` tags.
// Returns nil when the struct is valid.
func Struct(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"request": "invalid request body"}
	}

	fields := make(FieldErrors, len(errs))
	for _, fe := range errs {
		fields[strings.ToLower(fe.Field())] = message(fe)
	}
	return fields
}

// Require records an "is required" failure for a field that was
// provided blank. Optional pointer fields use `omitempty` tags, which
// skip a pointer to the empty string, so handlers call this for fields
// that may be omitted but not blanked.
func Require(fields FieldErrors, name string) FieldErrors {
	if fields == nil {
		fields = FieldErrors{}
	}
	fields[name] = "is required"
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "can be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
