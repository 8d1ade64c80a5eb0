package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Kind identifies the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON node. Object members keep the order in which
// they appeared in the source document.
type Value struct {
	kind     Kind
	boolean  bool
	text     string
	elements []Value
	members  []Member
}

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// SampleSet is an ordered collection of sample documents.
type SampleSet []Value

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: Null} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// NumberValue returns a JSON number holding its literal text, e.g. "3.95".
func NumberValue(text string) Value { return Value{kind: Number, text: text} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// ArrayValue returns a JSON array. The slice is copied.
func ArrayValue(elements ...Value) Value {
	return Value{kind: Array, elements: append([]Value(nil), elements...)}
}

// ObjectValue returns a JSON object. The slice is copied.
func ObjectValue(members ...Member) Value {
	return Value{kind: Object, members: append([]Member(nil), members...)}
}

// Kind returns the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == Array || v.kind == Object }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.boolean }

// Text returns the string payload, or the literal text of a number.
func (v Value) Text() string { return v.text }

// Float parses the number literal. Non-numbers return 0.
func (v Value) Float() float64 {
	if v.kind != Number {
		return 0
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0
	}
	return f
}

// IsIntegral reports whether a number has no fractional part, so 1.0 counts
// as an integer while 1.5 does not.
func (v Value) IsIntegral() bool {
	if v.kind != Number {
		return false
	}
	f := v.Float()
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// Len returns the number of elements or members, 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elements)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Elements returns the array elements. Callers must not modify the slice.
func (v Value) Elements() []Value { return v.elements }

// Members returns the object members in document order. Callers must not
// modify the slice.
func (v Value) Members() []Member { return v.members }

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the first member with the given key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the object has a member with the given key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Literal renders v as compact JSON text. Strings are written verbatim in
// UTF-8: only quotes, backslashes and control characters are escaped.
func (v Value) Literal() string {
	var sb strings.Builder
	v.writeLiteral(&sb)
	return sb.String()
}

func (v Value) writeLiteral(sb *strings.Builder) {
	switch v.kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		sb.WriteString(v.text)
	case String:
		sb.WriteString(Quote(v.text))
	case Array:
		sb.WriteByte('[')
		for i, e := range v.elements {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeLiteral(sb)
		}
		sb.WriteByte(']')
	case Object:
		sb.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(Quote(m.Key))
			sb.WriteByte(':')
			m.Value.writeLiteral(sb)
		}
		sb.WriteByte('}')
	}
}

// Quote returns s as a JSON string literal without HTML escaping, so "°C"
// stays "°C" and "<b>" stays "<b>". U+2028 and U+2029 are written raw like
// any other character; invalid UTF-8 bytes become U+FFFD.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	start := 0
	for i, r := range s {
		switch {
		case r == '\u2028' || r == '\u2029':
			sb.WriteString(quoteBody(s[start:i]))
			sb.WriteRune(r)
			start = i + utf8.RuneLen(r)
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				sb.WriteString(quoteBody(s[start:i]))
				sb.WriteRune(utf8.RuneError)
				start = i + 1
			}
		}
	}
	sb.WriteString(quoteBody(s[start:]))
	sb.WriteByte('"')
	return sb.String()
}

// quoteBody returns the escaped contents of s, without the quotes.
func quoteBody(s string) string {
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	q := strconv.Quote(s)
	if err := enc.Encode(s); err == nil {
		q = strings.TrimSuffix(buf.String(), "\n")
	}
	return q[1 : len(q)-1]
}
