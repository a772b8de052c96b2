package routes

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
)

// RegisterValidators adds the custom binding tags to gin's validator and makes
// field errors report the json (or form) name of the field.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	return v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return enum.PaymentMethod(fl.Field().String()).IsValid()
	})
}
