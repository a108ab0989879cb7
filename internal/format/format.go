// Package format normalizes checkout input as it is typed.
//
// Formatting an already formatted value returns it unchanged, and the output
// never holds more digits than the input.
package format

import "strings"

// Digits strips every non-digit rune and keeps at most max digits.
func Digits(value string, max int) string {
	var b strings.Builder
	for _, r := range value {
		if b.Len() >= max {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PostalCode renders a CEP as 00000-000.
func PostalCode(value string) string {
	d := Digits(value, 8)
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// Phone renders a Brazilian phone progressively as (00) 0000-0000 or (00) 00000-0000.
func Phone(value string) string {
	d := Digits(value, 11)
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// CardNumber groups up to 16 digits in blocks of four.
func CardNumber(value string) string {
	d := Digits(value, 16)
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// Expiry renders MM/YY.
func Expiry(value string) string {
	d := Digits(value, 4)
	if len(d) <= 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

// CVV keeps up to four digits.
func CVV(value string) string {
	return Digits(value, 4)
}
