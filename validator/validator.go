package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/vortex-fintech/go-mask/errors"
	"github.com/vortex-fintech/go-mask/mask"
)

var v *validator.Validate

func init() {
	v = validator.New()
	if err := v.RegisterValidation("mask", validateMask); err != nil {
		panic(err)
	}
}

func Instance() *validator.Validate {
	return v
}

// Validate returns field path -> reason code, or nil when i is valid.
// Paths omit the root struct name.
func Validate(i any) map[string]string {
	if err := v.Struct(i); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			out := make(map[string]string, len(errs))
			for _, e := range errs {
				out[fieldPath(e)] = mapTagToCode(e.Tag())
			}
			return out
		}
		return map[string]string{"_error": "validation_failed"}
	}
	return nil
}

// Struct validates i and reports failures as an InvalidArgument response.
func Struct(i any) error {
	err := v.Struct(i)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		return apperrors.FromPlayground(errs, tagMap)
	}
	return apperrors.InvalidArgument().WithReason("validation_failed")
}

// validateMask accepts a non-empty UTF-8 mask without a dangling escape.
func validateMask(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	_, ok := mask.Slots(s, nil)
	return ok
}

func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 && i+1 < len(ns) {
		return ns[i+1:]
	}
	return e.Field()
}
