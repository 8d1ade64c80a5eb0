// Package pathtree merges one or more sample documents into a single tree
// keyed by structural path. Every node records the kind seen at its path, the
// inferred scalar type of leaves and every example value, in the order the
// samples were supplied.
package pathtree

import (
	"strings"
	"sync"

	"github.com/mcncl/jsonassist/internal/models"
)

// Kind is the structural kind of a PathNode.
type Kind int

const (
	// KindUnset marks a path where only nulls have been seen.
	KindUnset Kind = iota
	KindScalar
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// ScalarType is the inferred type of a leaf.
type ScalarType int

const (
	TypeNone ScalarType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeString
)

func (t ScalarType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	default:
		return "none"
	}
}

// numeric reports whether t belongs to the number family. Integer and float
// widen into each other instead of conflicting.
func (t ScalarType) numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// SegmentKind tells how a path segment is reached from its parent.
type SegmentKind int

const (
	// SegmentField is a named object member.
	SegmentField SegmentKind = iota
	// SegmentElement is "any element" of an array.
	SegmentElement
	// SegmentMember is "any member value" of an object used as a dictionary.
	SegmentMember
)

// Segment is one step of a Path.
type Segment struct {
	Kind SegmentKind
	Name string
}

// Field returns a named member segment.
func Field(name string) Segment { return Segment{Kind: SegmentField, Name: name} }

// Element returns the synthetic array element segment.
func Element() Segment { return Segment{Kind: SegmentElement} }

// Member returns the synthetic dictionary member segment.
func Member() Segment { return Segment{Kind: SegmentMember} }

// Path locates a node from the document root.
type Path []Segment

// Append returns a new path with seg added; p is left untouched.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path as "list[].main.temp" or "properties.*.unit".
// The root path renders as the empty string.
func (p Path) String() string {
	var sb strings.Builder
	for _, seg := range p {
		switch seg.Kind {
		case SegmentElement:
			sb.WriteString("[]")
		case SegmentMember:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteByte('*')
		default:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(seg.Name)
		}
	}
	return sb.String()
}

// Discard records a sample value whose kind conflicted with the kind already
// fixed for its path. The value's subtree was not merged.
type Discard struct {
	Kind    Kind
	Literal string
}

// Stats summarises the member values of an object node across every
// instance. The analyzer uses it to tell records from dictionaries.
type Stats struct {
	// MinMembers is the smallest member count of any instance.
	MinMembers int
	// ObjectMembers is true when every member value was an object.
	ObjectMembers bool
	// SimilarMembers is true when every member value was structurally
	// similar to the first member value seen, whatever its key.
	SimilarMembers bool
}

// PathNode is one structural position reachable from the sample roots.
// A tree returned by Build is never modified afterwards and may be shared
// between goroutines.
type PathNode struct {
	Path Path
	Kind Kind
	// Type is set for scalar nodes only.
	Type ScalarType
	// Examples holds every scalar value seen here, nulls included, in
	// first-seen order. Duplicates are kept.
	Examples []models.Value
	// Mixed is set when scalars of different families were seen. Type keeps
	// the first family, Examples keeps them all.
	Mixed bool
	// Discarded lists values dropped because of a kind conflict.
	Discarded []Discard
	// Nulls counts nulls seen at an array or object path.
	Nulls int

	// Children is the record view of an object, ordered by first-seen key.
	Children []*PathNode
	// Presence is the number of parent instances that carried this key.
	Presence int
	// Element unifies every element of every array seen at this path.
	Element *PathNode
	// Keys lists every member key seen, in order, duplicates kept.
	Keys []string
	// Instances counts the arrays or objects merged into this node.
	Instances int
	Stats     Stats

	index        map[string]*PathNode
	memberRef    *models.Value
	memberValues []models.Value
	membersOnce  sync.Once
	members      *PathNode
	builder      *Builder
}

func newNode(path Path, b *Builder) *PathNode {
	return &PathNode{Path: path, builder: b}
}

// Child returns the record child for key.
func (n *PathNode) Child(key string) (*PathNode, bool) {
	c, ok := n.index[key]
	return c, ok
}

// Key returns the member name of a field node.
func (n *PathNode) Key() string {
	if len(n.Path) == 0 {
		return ""
	}
	return n.Path[len(n.Path)-1].Name
}

// Depth is the number of segments between the root and n.
func (n *PathNode) Depth() int { return len(n.Path) }

// IsLeaf reports whether n holds scalars or only nulls.
func (n *PathNode) IsLeaf() bool {
	return n.Kind == KindScalar || n.Kind == KindUnset
}

// CommonKeys counts the keys present in every instance of an object.
func (n *PathNode) CommonKeys() int {
	count := 0
	for _, c := range n.Children {
		if c.Presence == n.Instances {
			count++
		}
	}
	return count
}

// KeyStability is |keys in every instance| / |keys in any instance|. A fixed
// record scores 1, a dictionary whose keys never repeat scores 0.
func (n *PathNode) KeyStability() float64 {
	if len(n.Children) == 0 {
		return 1
	}
	return float64(n.CommonKeys()) / float64(len(n.Children))
}

// Members returns the dictionary view of an object: one node unifying every
// member value of every instance, irrespective of key. It is nil when no
// member was ever seen. The view is computed on first use.
func (n *PathNode) Members() *PathNode {
	if n.Kind != KindObject || len(n.memberValues) == 0 {
		return nil
	}
	n.membersOnce.Do(func() {
		m := newNode(n.Path.Append(Member()), n.builder)
		for _, v := range n.memberValues {
			n.builder.merge(m, v)
		}
		n.members = m
	})
	return n.members
}

// Walk visits n and its record children and array elements in pre-order.
func (n *PathNode) Walk(fn func(*PathNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
	if n.Element != nil {
		n.Element.Walk(fn)
	}
}

// Similar reports whether two values have the same structure: null is
// similar to anything, objects need identical key sets with similar values,
// arrays need equal lengths with element-wise similar values.
func Similar(a, b models.Value) bool {
	if a.IsNull() || b.IsNull() {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case models.Object:
		if a.Len() != b.Len() {
			return false
		}
		for _, m := range a.Members() {
			if !b.Has(m.Key) {
				return false
			}
		}
		for _, m := range b.Members() {
			av, ok := a.Get(m.Key)
			if !ok || !Similar(av, m.Value) {
				return false
			}
		}
	case models.Array:
		if a.Len() != b.Len() {
			return false
		}
		ae, be := a.Elements(), b.Elements()
		for i := range ae {
			if !Similar(ae[i], be[i]) {
				return false
			}
		}
	}
	return true
}

func kindOf(v models.Value) Kind {
	switch v.Kind() {
	case models.Null:
		return KindUnset
	case models.Array:
		return KindArray
	case models.Object:
		return KindObject
	default:
		return KindScalar
	}
}

func scalarTypeOf(v models.Value) ScalarType {
	switch v.Kind() {
	case models.Bool:
		return TypeBoolean
	case models.String:
		return TypeString
	case models.Number:
		if v.IsIntegral() {
			return TypeInteger
		}
		return TypeFloat
	default:
		return TypeNone
	}
}
