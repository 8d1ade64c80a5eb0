package generator

import (
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/pathtree"
)

// C++ types used in declarations.
const (
	TypeBool     = "bool"
	TypeString   = "const char*"
	TypeInt      = "int"
	TypeLong     = "long"
	TypeLongLong = "long long"
	TypeFloat    = "float"
	TypeDouble   = "double"
)

// CppType picks the declaration type for a leaf from its inferred type and
// every example seen. It returns "" for a node that only held nulls.
func CppType(n *pathtree.PathNode) string {
	switch n.Type {
	case pathtree.TypeBoolean:
		return TypeBool
	case pathtree.TypeString:
		return TypeString
	case pathtree.TypeInteger, pathtree.TypeFloat:
		return numericType(n.Examples)
	default:
		return ""
	}
}

// numericType returns the narrowest type holding every numeric example.
// Integers fit int below 32000, long below 2e9 and long long below 9e18;
// anything else is a float when it has at most seven significant digits.
func numericType(values []models.Value) string {
	fractional := false
	short := true
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v.Kind() != models.Number {
			continue
		}
		f := v.Float()
		if !v.IsIntegral() {
			fractional = true
		}
		if !hasShortMantissa(f) {
			short = false
		}
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}
	if math.IsInf(lo, 1) {
		return TypeInt
	}

	if !fractional {
		switch {
		case hi < 32000 && lo > -32000:
			return TypeInt
		case hi < 2e9 && lo > -2e9:
			return TypeLong
		case hi < 9e18 && lo > -9e18:
			return TypeLongLong
		}
	}
	if hi < 2e38 && lo > -2e38 && short {
		return TypeFloat
	}
	return TypeDouble
}

func hasShortMantissa(f float64) bool {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		s = s[:i]
	}
	return len(s) < 9
}

// Stringify renders an example for a comment next to a declaration of
// type cppType. Nulls show the value the declaration would receive.
func Stringify(cppType string, v models.Value) string {
	if !v.IsNull() {
		return v.Literal()
	}
	switch {
	case isNumeric(cppType):
		return "0"
	case strings.HasSuffix(cppType, "*"):
		return "nullptr"
	default:
		return "null"
	}
}

func isNumeric(cppType string) bool {
	switch cppType {
	case TypeInt, TypeLong, TypeLongLong, TypeFloat, TypeDouble:
		return true
	}
	return false
}
