package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/jsonassist/internal/pathtree"
)

// Naming turns paths into C++ identifiers. It is pure: the same path and
// loop scope always give the same name.
type Naming struct {
	// SnakeCase converts keys such as "tempMax" to "temp_max" before use.
	SnakeCase bool
	// FieldMappings maps a path ("list[].dt") to a fixed identifier.
	FieldMappings map[string]string
}

// LoopScope describes the nearest loop enclosing a path.
type LoopScope struct {
	// Binding is the loop variable; empty outside any loop.
	Binding string
	// Depth is the length of the loop body's root path. Only segments past
	// it contribute to names.
	Depth int
	// Elided drops the binding as leading token. Used for the loop over a
	// root array, whose binding is the generic "item".
	Elided bool
}

// Top is the scope of code that is not inside any loop.
var Top = LoopScope{}

// reservedWords are the C++ keywords.
var reservedWords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "and_eq": true, "asm": true,
	"atomic_cancel": true, "atomic_commit": true, "atomic_noexcept": true, "auto": true,
	"bitand": true, "bitor": true, "bool": true, "break": true, "case": true,
	"catch": true, "char": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"class": true, "compl": true, "concept": true, "const": true, "consteval": true,
	"constexpr": true, "constinit": true, "const_cast": true, "continue": true,
	"co_await": true, "co_return": true, "co_yield": true, "decltype": true,
	"default": true, "delete": true, "do": true, "double": true, "dynamic_cast": true,
	"else": true, "enum": true, "explicit": true, "export": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "mutable": true, "namespace": true,
	"new": true, "noexcept": true, "not": true, "not_eq": true, "nullptr": true,
	"operator": true, "or": true, "or_eq": true, "private": true, "protected": true,
	"public": true, "reflexpr": true, "register": true, "reinterpret_cast": true,
	"requires": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "static_assert": true, "static_cast": true, "struct": true,
	"switch": true, "synchronized": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true, "typedef": true,
	"typeid": true, "typename": true, "union": true, "unsigned": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "wchar_t": true, "while": true,
	"xor": true, "xor_eq": true,
}

// IsReserved reports whether name is a C++ keyword.
func IsReserved(name string) bool {
	return reservedWords[name]
}

// programIdentifiers are declared by every generated parsing program.
var programIdentifiers = []string{"doc", "error", "filter", "input"}

// Name returns the declaration name of the node at path: the underscore
// joined field names between the loop boundary and the node, led by the loop
// binding. Element and member markers contribute nothing.
func (nm Naming) Name(path pathtree.Path, loop LoopScope) string {
	if mapped, ok := nm.FieldMappings[path.String()]; ok {
		return mapped
	}

	base := strings.Join(nm.tokens(path, loop), "_")
	var name string
	switch {
	case loop.Binding == "":
		switch {
		case base == "":
			name = "root"
		case startsWithDigit(base):
			name = "root_" + base
		default:
			name = base
		}
	case base == "":
		if loop.Elided {
			name = "value"
		} else {
			name = loop.Binding + "_value"
		}
	case loop.Elided && !startsWithDigit(base):
		name = base
	default:
		name = loop.Binding + "_" + base
	}

	if reservedWords[name] {
		name += "_"
	}
	return name
}

// Binding returns the loop variable for the collection at path: the
// collection's own name followed by "_item", or "item" for the root.
func (nm Naming) Binding(path pathtree.Path, loop LoopScope) string {
	if mapped, ok := nm.FieldMappings[path.String()]; ok {
		return mapped
	}

	base := strings.Join(nm.tokens(path, loop), "_")
	switch {
	case loop.Binding == "":
		switch {
		case base == "":
			return "item"
		case startsWithDigit(base):
			return "root_" + base + "_item"
		default:
			return base + "_item"
		}
	case base == "":
		return loop.Binding + "_item"
	case loop.Elided && !startsWithDigit(base):
		return base + "_item"
	default:
		return loop.Binding + "_" + base + "_item"
	}
}

// KeyName returns the name of the key declaration of a dictionary loop.
func (nm Naming) KeyName(binding string) string {
	return binding + "_key"
}

func (nm Naming) tokens(path pathtree.Path, loop LoopScope) []string {
	if loop.Depth > len(path) {
		return nil
	}
	var tokens []string
	for _, seg := range path[loop.Depth:] {
		if seg.Kind != pathtree.SegmentField {
			continue
		}
		if token := nm.sanitize(seg.Name); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// sanitize keeps ASCII letters and digits; every other run becomes a single
// underscore, trimmed at both ends.
func (nm Naming) sanitize(key string) string {
	if nm.SnakeCase {
		key = strcase.ToSnake(key)
	}
	var sb strings.Builder
	pending := false
	for _, r := range key {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// scope tracks the names visible in one lexical block. Lookups walk the
// enclosing blocks so an inner name never repeats an outer one.
type scope struct {
	parent *scope
	names  []string
	used   map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, used: make(map[string]bool)}
}

func (s *scope) taken(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.used[name] {
			return true
		}
	}
	return false
}

// claim registers name, appending _2, _3, ... until it is free.
func (s *scope) claim(name string) string {
	candidate := name
	for i := 2; s.taken(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	s.used[candidate] = true
	s.names = append(s.names, candidate)
	return candidate
}
