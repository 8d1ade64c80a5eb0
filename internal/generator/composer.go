package generator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/jsonassist/internal/analyzer"
	"github.com/mcncl/jsonassist/internal/models"
)

var nonIdentifierRun = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Compose writes the statements that build value inside the JsonDocument
// or JsonVariant called name, e.g. `doc["answer"] = 42;`. Objects and
// arrays with several children get their own JsonObject/JsonArray variable;
// single children are assigned through chained subscripts.
func Compose(w *Writer, value models.Value, name string) {
	c := composer{w: w}
	c.assign(value, name, slot{})
}

// slot is where a composed value goes: parent[key], or the named variable
// itself when parent is empty.
type slot struct {
	parent string
	key    string
	member bool
}

func (s slot) subscript() string {
	return s.parent + "[" + s.key + "]"
}

type composer struct {
	w *Writer
}

func (c composer) assign(v models.Value, name string, s slot) {
	switch {
	case v.Kind() == models.Array:
		c.array(v, name, s)
	case v.Kind() == models.Object:
		c.object(v, name, s)
	case s.parent != "":
		c.w.AddLine(s.subscript(), " = ", composedLiteral(v), ";")
	case !v.IsNull():
		c.w.AddLine(name, ".set(", composedLiteral(v), ");")
	}
}

func (c composer) array(v models.Value, name string, s slot) {
	elements := v.Elements()
	switch {
	case s.parent == "" && len(elements) == 0:
		c.w.AddLine(name, ".to<JsonArray>();")
		return
	case s.parent == "" && len(elements) == 1:
		c.assign(elements[0], name+"_0", slot{parent: name, key: "0"})
		return
	case s.parent == "":
	case len(elements) == 1:
		c.assign(elements[0], name+"_0", slot{parent: s.subscript(), key: "0"})
		return
	default:
		c.w.AddEmptyLine()
		if s.member {
			c.w.AddLine("JsonArray ", name, " = ", s.subscript(), ".to<JsonArray>();")
		} else {
			c.w.AddLine("JsonArray ", name, " = ", s.parent, ".add<JsonArray>();")
		}
	}

	for i, e := range elements {
		index := strconv.Itoa(i)
		child := name + "_" + index
		switch e.Kind() {
		case models.Array:
			c.array(e, child, slot{parent: name, key: index})
		case models.Object:
			c.object(e, child, slot{parent: name, key: index})
		default:
			c.w.AddLine(name, ".add(", composedLiteral(e), ");")
		}
	}
}

func (c composer) object(v models.Value, name string, s slot) {
	members := v.Members()
	target := name
	switch {
	case s.parent == "":
		if len(members) == 0 {
			c.w.AddLine(name, ".to<JsonObject>();")
			return
		}
	case len(members) == 1:
		target = s.subscript()
	default:
		c.w.AddEmptyLine()
		if s.member {
			c.w.AddLine("JsonObject ", name, " = ", s.subscript(), ".to<JsonObject>();")
		} else {
			c.w.AddLine("JsonObject ", name, " = ", s.parent, ".add<JsonObject>();")
		}
	}

	for _, m := range members {
		key := models.Quote(m.Key)
		child := memberVariable(name, m.Key)
		switch m.Value.Kind() {
		case models.Array:
			c.array(m.Value, child, slot{parent: target, key: key, member: true})
		case models.Object:
			c.object(m.Value, child, slot{parent: target, key: key, member: true})
		default:
			c.w.AddLine(target, "[", key, "] = ", composedLiteral(m.Value), ";")
		}
	}
}

// memberVariable names the variable holding member key of the value called
// parent. Names built under "doc" drop that prefix.
func memberVariable(parent, key string) string {
	name := nonIdentifierRun.ReplaceAllString(parent+"_"+key, "_")
	switch {
	case strings.HasPrefix(name, "doc_") && startsWithDigit(name[len("doc_"):]):
		name = "root_" + name[len("doc_"):]
	case strings.HasPrefix(name, "doc_"):
		name = name[len("doc_"):]
	}
	if analyzer.IsReserved(name) {
		name += "_"
	}
	return name
}

func composedLiteral(v models.Value) string {
	if v.IsNull() {
		return "nullptr"
	}
	return v.Literal()
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
