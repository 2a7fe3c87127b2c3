// Package validate checks structs against their validation tags and turns
// violations into SCHEMA-classified errors whose message names every failing
// field, so the user can see which field was wrong rather than a generic
// sentence.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wlp-app/wlp/internal/notify"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s. On violation it returns a SCHEMA error carrying one
// line per failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		lines := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			lines = append(lines, fieldLine(fe))
		}
		return notify.NewAppError(notify.KindSchema, strings.Join(lines, "\n"), err)
	}
	return notify.NewAppError(notify.KindSchema, err.Error(), err)
}

func fieldLine(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long (max %s)", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email address", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s is not a valid date (%s)", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
