package ident

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sanitize returns the string form of a cell value reduced to letters,
// numbers, underscores and whitespace.
//
// Empty values (nil, "", false and numeric zero) sanitize to "". Surrounding
// whitespace is trimmed after filtering, so "Acme ." and "Acme" agree. Text is
// NFC-normalized on both sides of the filter: Sanitize is idempotent, and
// precomposed and decomposed accents produce the same token.
func Sanitize(v any) string {
	s, ok := cellString(v)
	if !ok {
		return ""
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(strings.TrimSpace(b.String()))
}

func keepRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r)
}

// cellString renders a cell value as text. ok is false for empty values.
func cellString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false
		}
		return val.String(), val != ""
	case bool:
		// Spelled as the legacy service did, so existing entity files match.
		if val {
			return "True", true
		}
		return "", false
	case int:
		return strconv.Itoa(val), val != 0
	case int64:
		return strconv.FormatInt(val, 10), val != 0
	case int32:
		return strconv.FormatInt(int64(val), 10), val != 0
	case uint64:
		return strconv.FormatUint(val, 10), val != 0
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), val != 0
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), val != 0
	case fmt.Stringer:
		s := val.String()
		return s, s != ""
	default:
		s := fmt.Sprint(val)
		return s, s != ""
	}
}
