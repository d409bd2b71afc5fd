package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("roomcode", func(fl validator.FieldLevel) bool {
		return isRoomCode(fl.Field().String())
	})
	_ = v.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		return isNickname(fl.Field().String())
	})
	return v
}

// Struct validates the `validate` tags of s.
func Struct(s any) error { return validate.Struct(s) }

// Describe turns a validation error into one line naming the offending fields.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is not a valid "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

func isRoomCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 4 || len(s) > 36 {
		return false
	}
	for _, r := range s {
		if r != '-' && (r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

func isNickname(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 24 {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
