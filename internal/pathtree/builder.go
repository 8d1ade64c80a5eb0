package pathtree

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcncl/jsonassist/internal/errors"
	"github.com/mcncl/jsonassist/internal/models"
)

// ShapeMismatchError reports a sample whose root kind differs from the root
// kind of the first non-null sample.
type ShapeMismatchError struct {
	// First is the sample that fixed the expected root kind.
	First    int
	Index    int
	Expected Kind
	Found    Kind
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("sample %d has a root %s but sample %d has a root %s", e.Index, e.Found, e.First, e.Expected)
}

// Is makes errors.Is(err, errors.ErrShapeMismatch) true.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == errors.ErrShapeMismatch
}

// Builder merges sample sets into path trees. It holds no per-build state,
// so one Builder may serve concurrent Build calls.
type Builder struct {
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report kind and type conflicts.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build merges samples, in order, into one tree and returns its root.
func Build(samples models.SampleSet) (*PathNode, error) {
	return NewBuilder().Build(samples)
}

// Build merges samples, in order, into one tree and returns its root. The
// first sample decides the root kind; a sample with another root kind fails
// the whole build. Null roots are merged without taking part in that check.
func (b *Builder) Build(samples models.SampleSet) (*PathNode, error) {
	if len(samples) == 0 {
		return nil, errors.ErrEmptySampleSet
	}

	expected, first := KindUnset, -1
	for i, s := range samples {
		k := kindOf(s)
		if k == KindUnset {
			continue
		}
		if first < 0 {
			expected, first = k, i
			continue
		}
		if k != expected {
			return nil, &ShapeMismatchError{First: first, Index: i, Expected: expected, Found: k}
		}
	}

	root := newNode(Path{}, b)
	for _, s := range samples {
		b.merge(root, s)
	}

	b.logger.Debug("path tree built",
		zap.Int("samples", len(samples)),
		zap.Stringer("root", root.Kind),
		zap.Int("nodes", countNodes(root)))
	return root, nil
}

func (b *Builder) merge(n *PathNode, v models.Value) {
	k := kindOf(v)
	if k == KindUnset {
		if n.IsLeaf() {
			n.Examples = append(n.Examples, v)
		} else {
			n.Nulls++
		}
		return
	}

	switch {
	case n.Kind == KindUnset:
		n.Kind = k
	case n.Kind != k:
		n.Discarded = append(n.Discarded, Discard{Kind: k, Literal: v.Literal()})
		b.logger.Warn("kind conflict, keeping first kind",
			zap.String("path", n.Path.String()),
			zap.Stringer("kept", n.Kind),
			zap.Stringer("found", k))
		return
	}

	switch k {
	case KindScalar:
		b.mergeScalar(n, v)
	case KindArray:
		b.mergeArray(n, v)
	case KindObject:
		b.mergeObject(n, v)
	}
}

func (b *Builder) mergeScalar(n *PathNode, v models.Value) {
	t := scalarTypeOf(v)
	switch {
	case n.Type == TypeNone:
		n.Type = t
	case n.Type == t:
	case n.Type.numeric() && t.numeric():
		n.Type = TypeFloat
	default:
		if !n.Mixed {
			b.logger.Debug("scalar type conflict, keeping first type",
				zap.String("path", n.Path.String()),
				zap.Stringer("kept", n.Type),
				zap.Stringer("found", t))
		}
		n.Mixed = true
	}
	n.Examples = append(n.Examples, v)
}

func (b *Builder) mergeArray(n *PathNode, v models.Value) {
	n.Instances++
	for _, e := range v.Elements() {
		if n.Element == nil {
			n.Element = newNode(n.Path.Append(Element()), b)
		}
		b.merge(n.Element, e)
	}
}

func (b *Builder) mergeObject(n *PathNode, v models.Value) {
	n.Instances++
	members := v.Members()
	if n.Instances == 1 {
		n.Stats = Stats{MinMembers: len(members), ObjectMembers: true, SimilarMembers: true}
		n.index = make(map[string]*PathNode)
	} else if len(members) < n.Stats.MinMembers {
		n.Stats.MinMembers = len(members)
	}

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		n.Keys = append(n.Keys, m.Key)

		child, ok := n.index[m.Key]
		if !ok {
			child = newNode(n.Path.Append(Field(m.Key)), b)
			n.index[m.Key] = child
			n.Children = append(n.Children, child)
		}
		if !seen[m.Key] {
			seen[m.Key] = true
			child.Presence++
		}
		b.merge(child, m.Value)

		n.memberValues = append(n.memberValues, m.Value)
		if m.Value.Kind() != models.Object {
			n.Stats.ObjectMembers = false
		}
		if n.memberRef == nil || n.memberRef.IsNull() {
			ref := m.Value
			n.memberRef = &ref
		} else if !Similar(*n.memberRef, m.Value) {
			n.Stats.SimilarMembers = false
		}
	}
}

func countNodes(n *PathNode) int {
	count := 0
	n.Walk(func(*PathNode) bool {
		count++
		return true
	})
	return count
}
