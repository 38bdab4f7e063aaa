package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxText bounds any free-text field typed into the chat.
const MaxText = 255

// Quantities are stored as REAL, so they are kept well inside float64 range.
const (
	MaxAmountDigits = 12 // integer digits
	MaxAmountScale  = 6  // fractional digits
	maxAmountInput  = 32
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Text validates a required free-text field: trimmed, non-empty, bounded.
func Text(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxText {
		return "", false
	}
	return s, true
}

// Amount parses a non-negative quantity such as an available count or a
// low-stock threshold.
func Amount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if len(s) > maxAmountInput {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !Quantity(d) {
		return decimal.Zero, false
	}
	return d, true
}

// Quantity reports whether d is non-negative with at most MaxAmountDigits
// integer digits and MaxAmountScale fractional digits. The exponent is
// checked before anything that would expand the coefficient.
func Quantity(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	exp := int(d.Exponent())
	if exp < -MaxAmountScale || exp > MaxAmountDigits {
		return false
	}
	return d.NumDigits()+exp <= MaxAmountDigits
}

// Q validates a search query: trims and enforces a max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > 50 {
		s = string([]rune(s)[:50])
	}
	return s, true
}

// ID validates a surrogate key taken from a path segment or tag.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// Struct runs the struct tags of an API input.
func Struct(x any) error { return v.Struct(x) }

// Messages turns a Struct error into one message per field.
func Messages(err error) map[string]string {
	out := map[string]string{}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", fe.Field())
		case "min", "gte":
			out[field] = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max", "lte":
			out[field] = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		default:
			out[field] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return out
}
