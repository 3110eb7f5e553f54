package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

const msgRequired = "this field is required"

// Field rules. Lengths follow the VARCHAR(255) columns; time_minutes is an
// INTEGER column.
var (
	emailRules       = fmt.Sprintf("required,max=%d,email", common.MaxNameLength)
	passwordRules    = fmt.Sprintf("required,min=%d", common.MinPasswordLength)
	requiredName     = fmt.Sprintf("required,max=%d,nonul", common.MaxNameLength)
	optionalName     = fmt.Sprintf("omitempty,max=%d,nonul", common.MaxNameLength)
	timeMinutesRules = fmt.Sprintf("min=0,max=%d", math.MaxInt32)
)

// validate is shared by every service; validator caches parsed tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// PostgreSQL text columns cannot hold NUL.
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return v
}

// checkVar validates value against rules and records the first failure
// under field.
func checkVar(verr *common.ValidationError, field string, value any, rules string) {
	err := validate.Var(value, rules)
	if err == nil {
		return
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) || len(fes) == 0 {
		verr.Add(field, "invalid value")
		return
	}
	verr.Add(field, fieldMessage(fes[0]))
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "enter a valid email address"
	case "nonul":
		return "null characters are not allowed"
	case "min":
		if isString {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	default:
		return "invalid value"
	}
}

// normalizeEmail trims and lowercases the address so that lookups are
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(verr *common.ValidationError, email string) {
	checkVar(verr, "email", email, emailRules)
}

func validatePassword(verr *common.ValidationError, password string) {
	checkVar(verr, "password", password, passwordRules)
}

// cleanName trims s and checks it is present and fits the column.
func cleanName(verr *common.ValidationError, field, s string, required bool) string {
	s = strings.TrimSpace(s)
	rules := optionalName
	if required {
		rules = requiredName
	}
	checkVar(verr, field, s, rules)
	return s
}

func validateTimeMinutes(verr *common.ValidationError, minutes int) {
	checkVar(verr, "time_minutes", minutes, timeMinutesRules)
}
