package controllers

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// usernamePattern matches the characters allowed in a login name
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules to gin's validator and
// makes error paths use JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logrus.Warn("gin validator engine is not go-playground/validator, custom rules disabled")
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		if err := v.RegisterValidation("username", validateUsername); err != nil {
			logrus.WithError(err).Error("Failed to register username validator")
		}
	})
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
