// Package validator provides custom validation functions for Gin's
// binding engine plus the CPF helpers shared with the user service.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var nonDigits = regexp.MustCompile(`\D`)

// Register installs the custom validators on the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cpf", validateCPF)
	}
}

func validateCPF(fl validator.FieldLevel) bool {
	return ValidCPF(fl.Field().String())
}

// StripCPF removes everything but digits from a CPF string, so
// "123.456.789-09" and "12345678909" normalize to the same value.
func StripCPF(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ValidCPF reports whether s is a well-formed Brazilian CPF: eleven
// digits, not all identical, with both check digits matching.
func ValidCPF(s string) bool {
	cpf := StripCPF(s)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return false
	}

	return checkDigit(cpf, 9) && checkDigit(cpf, 10)
}

// checkDigit verifies the check digit at position pos (9 or 10) against
// the weighted sum of the preceding digits.
func checkDigit(cpf string, pos int) bool {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(cpf[i]-'0') * (pos + 1 - i)
	}

	expected := 11 - sum%11
	if expected >= 10 {
		expected = 0
	}
	return int(cpf[pos]-'0') == expected
}
