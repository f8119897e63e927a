package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator interface {
	Validate(payload any) map[string]string
}

type structValidator struct {
	validate *validator.Validate
}

func New() Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &structValidator{validate: v}
}

func (v *structValidator) Validate(payload any) map[string]string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["payload"] = err.Error()
		return errs
	}

	for _, fe := range validationErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("The %s field is required.", field)
		case "email":
			errs[field] = fmt.Sprintf("The %s must be a valid email address.", field)
		case "min":
			errs[field] = fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		case "eqfield":
			errs[field] = fmt.Sprintf("The %s field must be equal to %s field.", field, fe.Param())
		default:
			errs[field] = fmt.Sprintf("The %s field is invalid.", field)
		}
	}

	return errs
}
