// Package generator turns a collapsed tree into ArduinoJson access
// statements and renders them as C++ text.
package generator

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mcncl/jsonassist/internal/analyzer"
	"github.com/mcncl/jsonassist/internal/models"
)

// DefaultMaxWidth is the line width past which example comments are cut.
const DefaultMaxWidth = 100

// Statement is one element of the emitted access code.
type Statement interface {
	statement()
}

// Declaration reads one value into a typed variable.
type Declaration struct {
	Name string
	Expr string
	Type string
	// Examples are rendered literals in first-seen order.
	Examples []string
	Mixed    bool
	// Null marks a position where only nulls were seen. It renders as a
	// comment since there is no type to declare.
	Null bool
}

// Record groups the fields of a fixed-key object, optionally bound to a
// named JsonObject first.
type Record struct {
	Alias string
	Expr  string
	Body  []Statement
}

// LoopBlock iterates an array or the pairs of an object.
type LoopBlock struct {
	Variable     string
	VariableType string
	Collection   string
	// Key declares the pair key of a map loop.
	Key  *Declaration
	Body []Statement
}

// Note is a comment reporting sample values that were left out.
type Note struct {
	Text string
}

func (*Declaration) statement() {}
func (*Record) statement()      {}
func (*LoopBlock) statement()   {}
func (*Note) statement()        {}

// Options controls comment rendering.
type Options struct {
	Comments bool
	// MaxWidth bounds statement plus comment; zero disables truncation.
	MaxWidth int
}

// DefaultOptions enables comments at DefaultMaxWidth.
func DefaultOptions() Options {
	return Options{Comments: true, MaxWidth: DefaultMaxWidth}
}

// Emitter produces and renders access statements. It is stateless.
type Emitter struct {
	opts Options
}

// NewEmitter creates an Emitter.
func NewEmitter(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// access is an expression together with its static ArduinoJson type when
// known ("JsonArray", "JsonObject"); proxies and variants leave it empty.
type access struct {
	expr string
	typ  string
}

// Emit walks root in pre-order and returns the statements reading every
// leaf from the document variable "doc".
func (e *Emitter) Emit(root *analyzer.Node) []Statement {
	if root == nil {
		return nil
	}
	return e.node(root, access{expr: "doc"})
}

// Fragment is Render(Emit(root)).
func (e *Emitter) Fragment(root *analyzer.Node) string {
	return e.Render(e.Emit(root))
}

func (e *Emitter) node(n *analyzer.Node, at access) []Statement {
	var out []Statement
	switch n.Shape {
	case analyzer.ShapeLeaf:
		out = append(out, e.declaration(n, at))
	case analyzer.ShapeNull:
		out = append(out, &Declaration{Expr: at.expr, Null: true})
	case analyzer.ShapeRecord:
		out = append(out, e.record(n, at))
	case analyzer.ShapeArrayLoop:
		out = append(out, e.arrayLoop(n, at))
	case analyzer.ShapeMapLoop:
		out = append(out, e.mapLoop(n, at))
	}
	if note := discardNote(n, at); note != nil {
		out = append(out, note)
	}
	return out
}

func (e *Emitter) declaration(n *analyzer.Node, at access) *Declaration {
	typ := CppType(n.Source)
	expr := at.expr
	if len(n.Source.Path) == 0 {
		expr = "doc.as<" + typ + ">()"
	}

	examples := make([]string, len(n.Source.Examples))
	for i, v := range n.Source.Examples {
		examples[i] = Stringify(typ, v)
	}
	return &Declaration{
		Name:     n.Name,
		Expr:     expr,
		Type:     typ,
		Examples: examples,
		Mixed:    n.Source.Mixed,
	}
}

func (e *Emitter) record(n *analyzer.Node, at access) *Record {
	r := &Record{}
	parent := at
	if n.Alias {
		r.Alias, r.Expr = n.Name, at.expr
		parent = access{expr: n.Name, typ: "JsonObject"}
	}
	for _, f := range n.Fields {
		child := access{expr: parent.expr + "[" + models.Quote(f.Key) + "]"}
		r.Body = append(r.Body, e.node(f, child)...)
	}
	return r
}

func (e *Emitter) arrayLoop(n *analyzer.Node, at access) *LoopBlock {
	b := n.Loop
	lb := &LoopBlock{
		Variable:     b.Variable,
		VariableType: elementType(b.Body),
		Collection:   as(at, "JsonArray"),
	}
	lb.Body = e.node(b.Body, access{expr: b.Variable, typ: lb.VariableType})
	return lb
}

func (e *Emitter) mapLoop(n *analyzer.Node, at access) *LoopBlock {
	b := n.Loop
	keys := make([]string, len(b.Root.Keys))
	for i, k := range b.Root.Keys {
		keys[i] = models.Quote(k)
	}
	lb := &LoopBlock{
		Variable:     b.Variable,
		VariableType: "JsonPair",
		Collection:   as(at, "JsonObject"),
		Key: &Declaration{
			Name:     b.KeyVariable,
			Expr:     b.Variable + ".key().c_str()",
			Type:     TypeString,
			Examples: keys,
		},
	}
	lb.Body = e.node(b.Body, access{expr: b.Variable + ".value()"})
	return lb
}

// as converts at to typ unless it already has that type.
func as(at access, typ string) string {
	if at.typ == typ {
		return at.expr
	}
	return at.expr + ".as<" + typ + ">()"
}

func elementType(body *analyzer.Node) string {
	switch body.Shape {
	case analyzer.ShapeRecord, analyzer.ShapeMapLoop:
		return "JsonObject"
	case analyzer.ShapeArrayLoop:
		return "JsonArray"
	default:
		return "JsonVariant"
	}
}

func discardNote(n *analyzer.Node, at access) *Note {
	if len(n.Source.Discarded) == 0 {
		return nil
	}
	var kinds []string
	seen := make(map[string]bool)
	for _, d := range n.Source.Discarded {
		k := d.Kind.String()
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return &Note{Text: fmt.Sprintf("%s also observed as %s (ignored)", at.expr, strings.Join(kinds, ", "))}
}

// Render writes statements as C++ text. Records and loops are surrounded by
// blank lines.
func (e *Emitter) Render(statements []Statement) string {
	w := NewWriter()
	e.Write(w, statements)
	return w.String()
}

// Write renders statements into w at its current indentation.
func (e *Emitter) Write(w *Writer, statements []Statement) {
	for _, s := range statements {
		switch s := s.(type) {
		case *Declaration:
			if s.Null {
				w.AddLine("// ", s.Expr, " is null")
				continue
			}
			w.AddLine(e.declarationLine(s))
		case *Record:
			w.AddEmptyLine()
			if s.Alias != "" {
				w.AddLine("JsonObject ", s.Alias, " = ", s.Expr, ";")
			}
			e.Write(w, s.Body)
			w.AddEmptyLine()
		case *LoopBlock:
			w.AddEmptyLine()
			w.AddLine("for (", s.VariableType, " ", s.Variable, " : ", s.Collection, ") {")
			w.Indent()
			if s.Key != nil {
				w.AddLine(e.declarationLine(s.Key))
			}
			e.Write(w, s.Body)
			w.Unindent()
			w.AddLine("}")
			w.AddEmptyLine()
		case *Note:
			w.AddLine("// ", s.Text)
		}
	}
}

func (e *Emitter) declarationLine(d *Declaration) string {
	statement := d.Type + " " + d.Name + " = " + d.Expr + ";"
	if !e.opts.Comments || len(d.Examples) == 0 {
		return statement
	}

	comment := strings.Join(d.Examples, ", ")
	suffix := ""
	if d.Mixed {
		suffix = " (mixed types)"
	}
	if e.opts.MaxWidth > 0 {
		budget := e.opts.MaxWidth - runewidth.StringWidth(statement) - runewidth.StringWidth(suffix)
		var ok bool
		if comment, ok = truncate(comment, budget); !ok {
			if d.Mixed {
				return statement + " // (mixed types)"
			}
			return statement
		}
	}
	return statement + " // " + comment + suffix
}

// truncate cuts comment at the last space that starts within budget
// columns and appends "...". It reports false when no such space exists.
func truncate(comment string, budget int) (string, bool) {
	if runewidth.StringWidth(comment) <= budget {
		return comment, true
	}
	cut, col := -1, 0
	for i, r := range comment {
		if col > budget {
			break
		}
		if r == ' ' {
			cut = i
		}
		col += runewidth.RuneWidth(r)
	}
	if cut <= 0 {
		return "", false
	}
	return comment[:cut+1] + "...", true
}
