package app

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and reports the first failure
// as a domain.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return &domain.ValidationError{
		Field:   lowerFirst(fe.Field()),
		Message: describe(fe),
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "this field is required"
	case "hexcolor":
		return "must be a hex color such as #1E88E5"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be before %s", lowerFirst(fe.Param()))
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a time in HH:MM format"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// checkImage rejects content that does not sniff as an image. Empty content passes.
func checkImage(field string, content []byte) error {
	if len(content) == 0 {
		return nil
	}
	if mtype := mimetype.Detect(content); !strings.HasPrefix(mtype.String(), "image/") {
		return &domain.ValidationError{Field: field, Message: fmt.Sprintf("expected an image, got %s", mtype.String())}
	}
	return nil
}

// isText reports whether content sniffs as plain text or a subtype of it (csv, tsv).
func isText(content []byte) bool {
	for mtype := mimetype.Detect(content); mtype != nil; mtype = mtype.Parent() {
		if mtype.Is("text/plain") {
			return true
		}
	}
	return false
}
