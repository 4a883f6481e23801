package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var ErrValidatorEngine = errors.New("gin binding engine is not go-playground/validator")

// RegisterBindingTags installs the custom tags used by request DTOs
// (ptphone, nif, iban, ptname, password, notpast) on gin's validator.
func RegisterBindingTags() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return ErrValidatorEngine
	}
	return RegisterTags(v)
}

// RegisterTags also makes field errors report json names instead of Go names.
func RegisterTags(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	tags := map[string]func(string) bool{
		"ptphone":  func(s string) bool { return Phone(s).Valid },
		"nif":      func(s string) bool { return NIF(s).Valid },
		"iban":     func(s string) bool { return IBAN(s).Valid },
		"ptname":   func(s string) bool { return Name(s, DefaultNameMin, DefaultNameMax).Valid },
		"password": func(s string) bool { return Password(s).Valid },
		"notpast":  func(s string) bool { return Date(s, time.Now()).Valid },
	}
	for tag, check := range tags {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}
