package utils

import "strings"

const frCountryPrefix = "+33"

// NormalizePhoneFR maps a free-form French phone number to +33XXXXXXXXX.
// It returns false when the input is not a French number with nine national digits.
//
//	"06 76 73 86 61"     -> "+33676738661"
//	"0033 6 76 73 86 61" -> "+33676738661"
//	"+33 (0)6 76 73 86 61" -> "+33676738661"
//	"12345"              -> "", false
func NormalizePhoneFR(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	v := keepDigitsAndPlus(raw)
	if strings.HasPrefix(v, "00") {
		v = "+" + v[2:]
	}

	switch {
	case strings.HasPrefix(v, "+33"):
		return nationalFromCountryForm(v[3:])
	case strings.HasPrefix(v, "33"):
		return nationalFromCountryForm(v[2:])
	}

	digits := onlyDigits(v)
	switch {
	case len(digits) == 10 && digits[0] == '0':
		return frCountryPrefix + digits[1:], true
	case len(digits) == 9:
		return frCountryPrefix + digits, true
	}
	return "", false
}

// nationalFromCountryForm handles what follows the country code. Any trunk zero
// ("+33 0 6...") is dropped before counting the nine national digits.
func nationalFromCountryForm(rest string) (string, bool) {
	rest = strings.TrimLeft(rest, "0")
	if len(rest) != 9 || !isDigits(rest) {
		return "", false
	}
	return frCountryPrefix + rest, true
}

func keepDigitsAndPlus(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if ch := s[i]; (ch >= '0' && ch <= '9') || ch == '+' {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if ch := s[i]; ch >= '0' && ch <= '9' {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
