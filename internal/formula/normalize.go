package formula

import (
	"strconv"
	"strings"
)

// Normalize converts a locale-formatted numeric token to dot-decimal form.
// A comma decimal separator is replaced with a dot; if the result parses as a
// float the dot string is returned (digits and formatting are kept as they
// were), otherwise the token is returned unchanged.
func Normalize(token string) string {
	dot := strings.ReplaceAll(token, ",", ".")
	if _, err := strconv.ParseFloat(dot, 64); err != nil {
		return token
	}
	return dot
}

// IsNumeric reports whether token is a number once normalized.
func IsNumeric(token string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	return err == nil
}
