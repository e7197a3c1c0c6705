package internal

import (
	"strings"
	"unicode"
)

// SnakeCase converts a camelCase or PascalCase name to snake_case.
// Runs of capitals are kept together: "isHTTPSEnabled" becomes "is_https_enabled".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		b.WriteRune(unicode.ToLower(r))
		if i+1 >= len(runes) {
			continue
		}
		next := runes[i+1]
		lowerOrDigit := unicode.IsLower(r) || unicode.IsDigit(r)
		if lowerOrDigit && unicode.IsUpper(next) {
			b.WriteByte('_')
			continue
		}
		if unicode.IsUpper(r) && unicode.IsUpper(next) && i+2 < len(runes) && unicode.IsLower(runes[i+2]) {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SnakeCaseKeys returns a copy of m with its top-level keys converted by SnakeCase.
func SnakeCaseKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[SnakeCase(k)] = v
	}
	return out
}
