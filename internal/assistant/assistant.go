// Package assistant runs the whole pipeline: sample documents in, ArduinoJson
// access code or complete programs out.
package assistant

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcncl/jsonassist/internal/analyzer"
	"github.com/mcncl/jsonassist/internal/config"
	"github.com/mcncl/jsonassist/internal/errors"
	"github.com/mcncl/jsonassist/internal/filter"
	"github.com/mcncl/jsonassist/internal/generator"
	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/pathtree"
	"github.com/mcncl/jsonassist/internal/program"
)

// Warning identifiers.
const (
	WarnJSONInJSON = "json-in-json"
	WarnLongLong   = "long-long"
	WarnDouble     = "double"
	WarnTooDeep    = "too-deep"
)

// Warning is advice about the generated code that does not stop generation.
type Warning struct {
	ID      string
	Message string
}

func (w Warning) String() string { return w.Message }

// Result is generated code plus the warnings raised while producing it.
type Result struct {
	Code     string
	Warnings []Warning
}

// ProgramRequest holds the deserialization options of a parsing program.
type ProgramRequest struct {
	// Filter is applied to the samples before decomposition and declared in
	// the program.
	Filter *models.Value
	// NestingLimit, when set, must be positive.
	NestingLimit *int
	// AutoNestingLimit sets the limit from the samples when they are deeper
	// than the deserializer default and NestingLimit is nil.
	AutoNestingLimit bool
}

// Assistant is stateless between calls and safe for concurrent use.
type Assistant struct {
	cfg    *config.Config
	logger *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the logger handed to every pipeline stage.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Assistant. A nil cfg means the defaults.
func New(cfg *config.Config, opts ...Option) *Assistant {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	a := &Assistant{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// collapse builds and analyzes the path tree of samples.
func (a *Assistant) collapse(samples models.SampleSet) (*analyzer.Node, error) {
	tree, err := pathtree.NewBuilder(pathtree.WithLogger(a.logger)).Build(samples)
	if err != nil {
		return nil, errors.NewShapeError("cannot merge the samples", err)
	}

	root, err := analyzer.New(a.cfg.Policy(),
		analyzer.WithLogger(a.logger),
		analyzer.WithNaming(a.cfg.NamingRules()),
	).Analyze(tree)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// Decompose returns the access code reading every value of samples.
func (a *Assistant) Decompose(samples models.SampleSet) (Result, error) {
	root, err := a.collapse(samples)
	if err != nil {
		return Result{}, err
	}

	code := generator.NewEmitter(a.cfg.EmitterOptions()).Fragment(root)
	a.logger.Debug("access code generated",
		zap.Int("samples", len(samples)),
		zap.Int("bytes", len(code)))

	return Result{Code: code, Warnings: typeWarnings(root)}, nil
}

// ParsingProgram returns a complete program deserializing the input and
// reading every value of samples.
func (a *Assistant) ParsingProgram(samples models.SampleSet, req ProgramRequest) (Result, error) {
	if req.NestingLimit != nil && *req.NestingLimit <= 0 {
		return Result{}, errors.NewGenerateError(
			fmt.Sprintf("invalid nesting limit %d", *req.NestingLimit), errors.ErrInvalidNestingLimit)
	}

	decomposed := samples
	if req.Filter != nil {
		decomposed = filter.ApplyAll(samples, *req.Filter)
	}

	fragment, err := a.Decompose(decomposed)
	if err != nil {
		return Result{}, err
	}

	defaultLimit := a.cfg.Deserialization.DefaultNestingLimit
	limit := 0
	switch {
	case req.NestingLimit != nil:
		limit = *req.NestingLimit
	case req.AutoNestingLimit:
		limit = program.AutoNestingLimit(samples, defaultLimit)
	}

	warnings := fragment.Warnings
	if limit == 0 {
		if depth := program.AutoNestingLimit(samples, defaultLimit); depth > 0 {
			warnings = append(warnings, Warning{
				ID:      WarnTooDeep,
				Message: fmt.Sprintf("the samples are nested %d levels deep; pass DeserializationOption::NestingLimit(%d)", depth, depth),
			})
		}
	}

	code := program.Assemble(fragment.Code, program.Options{
		InputType:    a.cfg.InputType(),
		Filter:       req.Filter,
		NestingLimit: limit,
		Serial:       a.cfg.Target.Serial,
		Progmem:      a.cfg.Target.Progmem,
	})
	return Result{Code: code, Warnings: warnings}, nil
}

// SerializingProgram returns a program building sample in a JsonDocument
// and serializing it.
func (a *Assistant) SerializingProgram(sample models.Value) (Result, error) {
	code := program.Serializing(sample, a.cfg.OutputType())
	return Result{Code: code}, nil
}

// typeWarnings reports embedded JSON documents and numbers needing the
// wider ArduinoJson number types.
func typeWarnings(root *analyzer.Node) []Warning {
	var warnings []Warning
	for _, path := range analyzer.EmbeddedJSON(root) {
		warnings = append(warnings, Warning{
			ID:      WarnJSONInJSON,
			Message: fmt.Sprintf("the string at %q contains a JSON document; it needs its own deserializeJson() call", displayPath(path)),
		})
	}

	var longLong, double bool
	root.Walk(func(n *analyzer.Node) {
		if n.Shape != analyzer.ShapeLeaf {
			return
		}
		switch generator.CppType(n.Source) {
		case generator.TypeLongLong:
			longLong = true
		case generator.TypeDouble:
			double = true
		}
	})
	if longLong {
		warnings = append(warnings, Warning{
			ID:      WarnLongLong,
			Message: "the samples contain long long values; define ARDUINOJSON_USE_LONG_LONG to 1 on boards where it is off by default",
		})
	}
	if double {
		warnings = append(warnings, Warning{
			ID:      WarnDouble,
			Message: "the samples contain double values; define ARDUINOJSON_USE_DOUBLE to 1 on boards where it is off by default",
		})
	}
	return warnings
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
