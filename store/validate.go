package store

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRE = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{6,19}$`)
	zipRE   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their JSON names so validation errors line up
	// with the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return phoneRE.MatchString(fl.Field().String())
		},
		"zipcode": func(fl validator.FieldLevel) bool {
			return zipRE.MatchString(fl.Field().String())
		},
		"established_year": func(fl validator.FieldLevel) bool {
			year := fl.Field().Int()
			return year >= MinEstablishedYear && year <= int64(time.Now().Year())
		},
		"before_now": func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && t.Before(time.Now())
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	return v
}

// NormalizeEmail canonicalizes an email for storage and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks every client-supplied field, reporting all failures in a
// single ValidationError.
func (s *School) Validate() error { return validateStruct(s) }

// Validate checks every client-supplied field, reporting all failures in a
// single ValidationError.
func (s *Student) Validate() error { return validateStruct(s) }

// Validate checks the supplied fields only; nil fields are skipped.
func (u SchoolUpdate) Validate() error { return validateStruct(u) }

// Validate checks the supplied fields only; nil fields are skipped.
func (u StudentUpdate) Validate() error { return validateStruct(u) }

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath strips the root struct name from a field's namespace, leaving
// the JSON path ("name", "address.zipCode").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "zipcode":
		return "must be a valid ZIP code"
	case "oneof":
		return "must be one of " + fe.Param()
	case "established_year":
		return fmt.Sprintf("must be between %d and %d", MinEstablishedYear, time.Now().Year())
	case "before_now":
		return "must be in the past"
	}
	return "is invalid"
}
