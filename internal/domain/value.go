package domain

import (
	"strconv"
	"strings"
)

// ValueKind identifies the shape of a table cell
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a nullable scalar table cell. The kind set is closed: every cell
// in a dataset is exactly one of null, string, number or bool.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// Null returns the null value
func Null() Value {
	return Value{kind: KindNull}
}

// String returns a string value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Kind returns the value's kind
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the string content. Null and non-string values return ""
func (v Value) Str() string {
	return v.str
}

// Num returns the numeric content. Bools count as 0/1; null and strings as 0
func (v Value) Num() float64 {
	return v.num
}

// Equal reports whether two values have the same kind and content
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num
}

// Encode renders the value in its flat-file form. Null encodes as the empty
// field; a string that would otherwise read back as a different kind gets a
// leading apostrophe, so Decode(Encode(v)) always reproduces v.
func (v Value) Encode() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		if ambiguous(v.str) {
			return "'" + v.str
		}
		return v.str
	case KindBool:
		if v.num != 0 {
			return "true"
		}
		return "false"
	default:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
}

// ambiguous reports whether a string field would decode as some other kind
// without an escape
func ambiguous(s string) bool {
	if s == "" || s == "true" || s == "false" || strings.HasPrefix(s, "'") {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Decode parses a flat-file field back into a value. Empty fields decode to
// null, "true"/"false" to bools, numeric-looking fields to numbers and an
// apostrophe-escaped field to the string after the apostrophe; everything
// else stays a string.
func Decode(s string) Value {
	if s == "" {
		return Null()
	}
	if strings.HasPrefix(s, "'") {
		return String(s[1:])
	}
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return String(s)
}
