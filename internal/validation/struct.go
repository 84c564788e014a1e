package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator validates request bodies bound by Fiber. It plugs into
// fiber.Config.StructValidator.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a validator with the application's custom tags:
// httpurl (http/https URL with a host), slug and title.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		ok, _ := ValidateURL(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return SlugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("title", func(fl validator.FieldLevel) bool {
		ok, _ := ValidateTitle(fl.Field().String())
		return ok
	})

	return &StructValidator{validate: v}
}

// Validate implements fiber.StructValidator.
func (v *StructValidator) Validate(out any) error {
	err := v.validate.Struct(out)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &Error{Fields: msgs}
}

// Error lists the fields of a request body that failed validation.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return strings.Join(e.Fields, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "url", "httpurl":
		return field + " must be a valid http(s) URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "hexcolor":
		return field + " must be a hex color like #1a2b3c"
	case "slug":
		return field + " must be 3-20 lowercase letters, numbers or hyphens"
	case "title":
		return field + " must be 1-100 characters"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
