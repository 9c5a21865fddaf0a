package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
)

// ValidationConfig maps validator tags to message formats. Each format gets
// the JSON field name and the tag parameter.
type ValidationConfig struct {
	CustomValidators map[string]validator.Func
	Messages         map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		Messages: map[string]string{
			"required": "%s is required",
			"email":    "%s must be a valid email address",
			"min":      "%s must be at least %s",
			"max":      "%s must be at most %s",
			"oneof":    "%s must be one of: %s",
			"datetime": "%s must match the format %s",
		},
	}
}

var registerOnce sync.Once

// Validation rewrites binding errors into validation errors naming the
// offending JSON field. Handlers attach bind failures with
// c.Error(err).SetType(gin.ErrorTypeBind).
func Validation(config ValidationConfig) gin.HandlerFunc {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range config.CustomValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})

	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			if e.IsType(gin.ErrorTypeBind) {
				e.Err = config.translate(e.Err)
			}
		}
	}
}

func (cfg ValidationConfig) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("invalid request body", err)
	}

	fe := verrs[0]
	field := fe.Field()
	if ns := fe.Namespace(); strings.Contains(ns, ".") {
		field = ns[strings.Index(ns, ".")+1:]
	}

	format, ok := cfg.Messages[fe.Tag()]
	if !ok {
		return apperrors.Validation(fmt.Sprintf("%s is invalid", field), err)
	}
	if strings.Count(format, "%s") > 1 {
		return apperrors.Validation(fmt.Sprintf(format, field, fe.Param()), err)
	}
	return apperrors.Validation(fmt.Sprintf(format, field), err)
}
