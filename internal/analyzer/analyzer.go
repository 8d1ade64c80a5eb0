// Package analyzer collapses a path tree into records and loops and names
// every declaration the generated access code will introduce.
package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcncl/jsonassist/internal/errors"
	"github.com/mcncl/jsonassist/internal/pathtree"
)

// Shape is the access strategy chosen for a node.
type Shape int

const (
	// ShapeLeaf is a scalar read into a typed declaration.
	ShapeLeaf Shape = iota
	// ShapeNull is a position where only nulls were seen.
	ShapeNull
	// ShapeRecord is an object with a fixed set of named fields.
	ShapeRecord
	// ShapeArrayLoop is an array iterated element by element.
	ShapeArrayLoop
	// ShapeMapLoop is an object iterated as key/value pairs.
	ShapeMapLoop
	// ShapeEmpty is an array or object that never held anything.
	ShapeEmpty
)

func (s Shape) String() string {
	switch s {
	case ShapeLeaf:
		return "leaf"
	case ShapeNull:
		return "null"
	case ShapeRecord:
		return "record"
	case ShapeArrayLoop:
		return "array"
	case ShapeMapLoop:
		return "map"
	case ShapeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// ParseShape reads the override names accepted in configuration.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "record":
		return ShapeRecord, nil
	case "map":
		return ShapeMapLoop, nil
	default:
		return ShapeLeaf, fmt.Errorf("unknown object shape %q: expected \"record\" or \"map\"", s)
	}
}

// Policy holds the thresholds of the record-versus-map heuristic.
type Policy struct {
	// MinMapKeys is the member count from which an object whose members are
	// all similar objects is read as a map. Zero disables the rule.
	MinMapKeys int
	// KeyStability is the |common keys| / |all keys| ratio below which an
	// object seen several times is read as a map.
	KeyStability float64
	// AliasMinFields is the field count from which a nested record is bound
	// to its own JsonObject. Zero disables aliasing.
	AliasMinFields int
	// Overrides forces the shape of objects by path, e.g. "properties".
	Overrides map[string]Shape
}

// DefaultPolicy returns the thresholds used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinMapKeys:     2,
		KeyStability:   0.5,
		AliasMinFields: 3,
	}
}

// Validate rejects thresholds outside their meaningful range.
func (p Policy) Validate() error {
	if p.MinMapKeys < 0 {
		return errors.NewAnalysisError(fmt.Sprintf("min_map_keys must not be negative, got %d", p.MinMapKeys), nil)
	}
	if p.KeyStability < 0 || p.KeyStability > 1 {
		return errors.NewAnalysisError(fmt.Sprintf("key_stability must be between 0 and 1, got %g", p.KeyStability), nil)
	}
	if p.AliasMinFields < 0 {
		return errors.NewAnalysisError(fmt.Sprintf("alias_min_fields must not be negative, got %d", p.AliasMinFields), nil)
	}
	for path, shape := range p.Overrides {
		if shape != ShapeRecord && shape != ShapeMapLoop {
			return errors.NewAnalysisError(fmt.Sprintf("override for %q must be record or map, got %s", path, shape), nil)
		}
	}
	return nil
}

// Node is one position of the collapsed tree.
type Node struct {
	Source *pathtree.PathNode
	Shape  Shape
	// Key is the member name under the parent record; empty for the root,
	// loop bodies and map values.
	Key string
	// Name is the declaration name of a leaf, or the alias of a record
	// when Alias is set.
	Name  string
	Alias bool
	// Fields are the record children in first-seen key order.
	Fields []*Node
	// Loop is set for ShapeArrayLoop and ShapeMapLoop.
	Loop *LoopBinding
	// InLoop is false for nodes read straight from the document.
	InLoop bool
}

// LoopBinding describes one loop of the generated code.
type LoopBinding struct {
	// Variable is the element (or pair) variable.
	Variable string
	// KeyVariable names the key declaration of a map loop.
	KeyVariable string
	// Root is the array or object iterated.
	Root *pathtree.PathNode
	// Body is the node read through Variable on every iteration.
	Body *Node
	// Declarations lists the names introduced directly inside the loop
	// body, in order.
	Declarations []string
}

// Analyzer turns path trees into collapsed trees. It keeps no state between
// calls.
type Analyzer struct {
	policy Policy
	naming Naming
	logger *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger receiving record/map decisions.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithNaming sets the identifier rules.
func WithNaming(naming Naming) Option {
	return func(a *Analyzer) {
		a.naming = naming
	}
}

// New creates an Analyzer applying policy.
func New(policy Policy, opts ...Option) *Analyzer {
	a := &Analyzer{policy: policy, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze collapses the tree rooted at root.
func (a *Analyzer) Analyze(root *pathtree.PathNode) (*Node, error) {
	if root == nil {
		return nil, errors.NewAnalysisError("nothing to analyze", errors.ErrEmptySampleSet)
	}
	if err := a.policy.Validate(); err != nil {
		return nil, err
	}

	top := newScope(nil)
	for _, id := range programIdentifiers {
		top.claim(id)
	}

	w := &walk{Analyzer: a}
	return w.node(root, frame{scope: top, loop: Top}), nil
}

// frame is the naming context of one position.
type frame struct {
	scope *scope
	loop  LoopScope
	key   string
	// field is set for record members, whose key may be empty.
	field bool
}

type walk struct {
	*Analyzer
}

func (w *walk) node(pn *pathtree.PathNode, f frame) *Node {
	n := &Node{Source: pn, Key: f.key, InLoop: f.loop.Binding != ""}

	switch pn.Kind {
	case pathtree.KindUnset:
		n.Shape = ShapeNull
	case pathtree.KindScalar:
		n.Shape = ShapeLeaf
		n.Name = f.scope.claim(w.naming.Name(pn.Path, f.loop))
	case pathtree.KindArray:
		if pn.Element == nil {
			n.Shape = ShapeEmpty
			break
		}
		n.Shape = ShapeArrayLoop
		n.Loop = w.loop(pn, pn.Element, f, len(pn.Path) == 0)
	case pathtree.KindObject:
		w.object(n, pn, f)
	}
	return n
}

func (w *walk) object(n *Node, pn *pathtree.PathNode, f frame) {
	shape := w.classify(pn)
	if shape == ShapeMapLoop {
		members := pn.Members()
		if members == nil {
			n.Shape = ShapeEmpty
			return
		}
		n.Shape = ShapeMapLoop
		n.Loop = w.loop(pn, members, f, false)
		return
	}

	if len(pn.Children) == 0 {
		n.Shape = ShapeEmpty
		return
	}
	n.Shape = ShapeRecord
	if f.field && w.policy.AliasMinFields > 0 && len(pn.Children) >= w.policy.AliasMinFields {
		n.Alias = true
		n.Name = f.scope.claim(w.naming.Name(pn.Path, f.loop))
	}
	for _, child := range pn.Children {
		n.Fields = append(n.Fields, w.node(child, frame{scope: f.scope, loop: f.loop, key: child.Key(), field: true}))
	}
}

// loop binds the iteration over coll whose body reads body.
func (w *walk) loop(coll, body *pathtree.PathNode, f frame, elide bool) *LoopBinding {
	inner := newScope(f.scope)
	binding := &LoopBinding{
		Variable: inner.claim(w.naming.Binding(coll.Path, f.loop)),
		Root:     coll,
	}
	if coll.Kind == pathtree.KindObject {
		binding.KeyVariable = inner.claim(w.naming.KeyName(binding.Variable))
	}

	scope := LoopScope{Binding: binding.Variable, Depth: len(body.Path), Elided: elide}
	binding.Body = w.node(body, frame{scope: inner, loop: scope})
	binding.Declarations = append([]string(nil), inner.names[1:]...)
	return binding
}

// classify decides between record and map for an object node.
func (w *walk) classify(pn *pathtree.PathNode) Shape {
	path := pn.Path.String()
	if shape, ok := w.policy.Overrides[path]; ok {
		w.logger.Debug("object shape overridden", zap.String("path", path), zap.Stringer("shape", shape))
		return shape
	}
	if len(pn.Children) == 0 {
		return ShapeRecord
	}

	stats := pn.Stats
	shape := ShapeRecord
	reason := "stable keys"
	switch {
	case w.policy.MinMapKeys > 0 && stats.MinMembers >= w.policy.MinMapKeys && stats.ObjectMembers && stats.SimilarMembers:
		shape, reason = ShapeMapLoop, "uniform object members"
	case pn.Instances >= 2 && pn.KeyStability() < w.policy.KeyStability && stats.SimilarMembers:
		shape, reason = ShapeMapLoop, "unstable keys"
	}

	w.logger.Debug("object classified",
		zap.String("path", path),
		zap.Stringer("shape", shape),
		zap.String("reason", reason),
		zap.Int("instances", pn.Instances),
		zap.Float64("key_stability", pn.KeyStability()))
	return shape
}

// Walk visits n and every node below it, loop bodies included, in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, f := range n.Fields {
		f.Walk(fn)
	}
	if n.Loop != nil {
		n.Loop.Body.Walk(fn)
	}
}
