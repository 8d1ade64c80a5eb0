// Package filter evaluates ArduinoJson filter documents: it computes the part
// of a document that deserializeJson keeps when given
// DeserializationOption::Filter.
package filter

import "github.com/mcncl/jsonassist/internal/models"

// Mode is what a filter node lets through.
type Mode int

const (
	// Reject drops the value. Any filter value other than true, an object or
	// an array rejects.
	Reject Mode = iota
	// Accept keeps the value and everything below it.
	Accept
	// Object keeps the listed members of an object; "*" matches any key.
	Object
	// Array keeps array elements, filtered by the first filter element.
	Array
)

func (m Mode) String() string {
	switch m {
	case Accept:
		return "accept"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "reject"
	}
}

// Wildcard is the member key matching every key not listed explicitly.
const Wildcard = "*"

// Filter is one node of a filter document.
type Filter struct {
	value models.Value
	mode  Mode
}

// New wraps a filter document.
func New(v models.Value) Filter {
	f := Filter{value: v}
	switch {
	case v.Kind() == models.Array:
		f.mode = Array
	case v.Kind() == models.Object:
		f.mode = Object
	case v.Kind() == models.Bool && v.Bool():
		f.mode = Accept
	default:
		f.mode = Reject
	}
	return f
}

func (f Filter) Mode() Mode { return f.mode }

func (f Filter) AllowsArray() bool     { return f.mode == Array || f.mode == Accept }
func (f Filter) AllowsObject() bool    { return f.mode == Object || f.mode == Accept }
func (f Filter) AllowsValue() bool     { return f.mode == Accept }
func (f Filter) AllowsSomething() bool { return f.mode != Reject }

// Member returns the filter applied to the member called key.
func (f Filter) Member(key string) Filter {
	switch f.mode {
	case Accept:
		return f
	case Object:
		if v, ok := f.value.Get(key); ok {
			return New(v)
		}
		if v, ok := f.value.Get(Wildcard); ok {
			return New(v)
		}
	}
	return Filter{mode: Reject}
}

// Element returns the filter applied to every array element. Only the first
// element of an array filter counts.
func (f Filter) Element() Filter {
	switch f.mode {
	case Accept:
		return f
	case Array:
		if elements := f.value.Elements(); len(elements) > 0 {
			return New(elements[0])
		}
	}
	return Filter{mode: Reject}
}

// Document returns what remains of v after filtering. The boolean is false
// when nothing remains.
func (f Filter) Document(v models.Value) (models.Value, bool) {
	switch f.mode {
	case Accept:
		return v, true
	case Array:
		if v.Kind() != models.Array {
			return models.Value{}, false
		}
		element := f.Element()
		if element.mode == Reject {
			return models.ArrayValue(), true
		}
		out := make([]models.Value, len(v.Elements()))
		for i, e := range v.Elements() {
			if kept, ok := element.Document(e); ok {
				out[i] = kept
			} else {
				out[i] = models.NullValue()
			}
		}
		return models.ArrayValue(out...), true
	case Object:
		if v.Kind() != models.Object {
			return models.Value{}, false
		}
		var out []models.Member
		for _, m := range v.Members() {
			if kept, ok := f.Member(m.Key).Document(m.Value); ok {
				out = append(out, models.Member{Key: m.Key, Value: kept})
			}
		}
		return models.ObjectValue(out...), true
	default:
		return models.Value{}, false
	}
}

// Apply filters doc with the filter document filter. A fully rejected
// document becomes null.
func Apply(doc, filter models.Value) models.Value {
	if kept, ok := New(filter).Document(doc); ok {
		return kept
	}
	return models.NullValue()
}

// ApplyAll filters every sample.
func ApplyAll(samples models.SampleSet, filter models.Value) models.SampleSet {
	out := make(models.SampleSet, len(samples))
	for i, s := range samples {
		out[i] = Apply(s, filter)
	}
	return out
}
