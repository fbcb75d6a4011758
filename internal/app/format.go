package app

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey lowercases, trims and strips combining marks so that
// "Área", "area" and "ÁREA " all compare equal.
func foldKey(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

var truthyValues = map[string]struct{}{
	"sim": {}, "s": {}, "true": {}, "1": {}, "y": {}, "yes": {},
	"ativo": {}, "ativa": {}, "on": {}, "ok": {},
}

// parseTruthy implements the tolerant boolean accepted in the Ativa
// column: Sim/Não, True/False, 1/0 and friends, accent/case-insensitive.
func parseTruthy(v string) bool {
	_, ok := truthyValues[foldKey(v)]
	return ok
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone normalizes a raw phone to the local "(92) 98123-1234"
// form. The country code 55 is stripped when present; anything that
// does not leave 11 digits (DDD included) is rejected.
func FormatPhone(raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(strings.TrimSpace(raw), "")
	if digits == "" {
		return "", domain.ErrInvalidPhone
	}
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		digits = digits[2:]
	}
	if len(digits) != 11 {
		return "", domain.ErrInvalidPhone
	}
	local := digits[len(digits)-9:]
	return "(92) " + local[:5] + "-" + local[5:], nil
}

// FormatName upper-cases the registrant name for the sheet and ticket.
func FormatName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// parsePositiveInt extracts a positive integer from free-form cell
// content ("120", "120 senhas"); returns 0 when there is none.
func parsePositiveInt(v string) int {
	digits := nonDigits.ReplaceAllString(v, "")
	if digits == "" || len(digits) > 9 {
		return 0
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
	}
	if n <= 0 {
		return 0
	}
	return n
}
