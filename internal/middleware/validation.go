package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/avelar/clinic-api/internal/recurrence"
)

// RegisterValidations installs custom binding validations on gin's validator
// engine. It runs once at startup, before any routes are registered.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Validation errors report the json field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return recurrence.Frequency(fl.Field().String()).Valid()
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
