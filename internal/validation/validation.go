// Package validation turns struct tag rules into the field messages the
// console shows next to form inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
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
	})
	return validate
}

// Struct validates v and returns a VALIDATION_FAILED DomainError whose
// message is the first failing field and whose details hold every failure
// keyed by JSON field name.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}

	root := reflect.TypeOf(v)
	details := make(map[string]any, len(verrs))
	first := ""
	for _, fe := range verrs {
		label := labelFor(root, fe.StructNamespace())
		if label == "" {
			label = fe.Field()
		}
		msg := message(label, fe)
		if first == "" {
			first = msg
		}
		key := fieldPath(fe.Namespace())
		if _, exists := details[key]; !exists {
			details[key] = msg
		}
	}
	return apperrors.NewValidationError(first, details)
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return label + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return label + " must be a valid email address"
	case "url", "http_url":
		return label + " must be a valid URL"
	default:
		return label + " is invalid"
	}
}

// fieldPath drops the root type name from a validator namespace, leaving
// e.g. "family[1].relationship".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// labelFor walks a struct namespace such as "Form.Family[0].Name" from root
// and returns the `label` tag of the final field.
func labelFor(root reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	t := root
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if j := strings.IndexByte(part, '['); j >= 0 {
			part = part[:j]
		}
		t = elem(t)
		if t == nil || t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(part)
		if !ok {
			return ""
		}
		if i == len(parts)-1 {
			return f.Tag.Get("label")
		}
		t = f.Type
	}
	return ""
}

func elem(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}
