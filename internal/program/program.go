// Package program wraps access code in a complete ArduinoJson parsing
// program, and writes serializing programs from a sample document.
package program

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonassist/internal/generator"
	"github.com/mcncl/jsonassist/internal/models"
)

// DefaultNestingLimit is the depth deserializeJson accepts without a
// NestingLimit option.
const DefaultNestingLimit = 10

// InputType is the C++ type of the JSON input the program reads.
type InputType string

const (
	InputUnspecified   InputType = ""
	InputCharPtr       InputType = "charPtr"
	InputConstCharPtr  InputType = "constCharPtr"
	InputCharArray     InputType = "charArray"
	InputArduinoString InputType = "arduinoString"
	InputArduinoStream InputType = "arduinoStream"
	InputStdString     InputType = "stdString"
	InputStdStream     InputType = "stdStream"
)

// InputTypes lists the accepted input types in display order.
var InputTypes = []InputType{
	InputCharPtr, InputConstCharPtr, InputCharArray,
	InputArduinoString, InputArduinoStream, InputStdString, InputStdStream,
}

// ParseInputType validates an input type name.
func ParseInputType(s string) (InputType, error) {
	if s == "" {
		return InputUnspecified, nil
	}
	for _, t := range InputTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return InputUnspecified, fmt.Errorf("unknown input type %q", s)
}

// OutputType is the C++ type the serializing program writes to.
type OutputType string

const (
	OutputUnspecified   OutputType = ""
	OutputCharPtr       OutputType = "charPtr"
	OutputCharArray     OutputType = "charArray"
	OutputArduinoString OutputType = "arduinoString"
	OutputArduinoStream OutputType = "arduinoStream"
	OutputStdString     OutputType = "stdString"
	OutputStdStream     OutputType = "stdStream"
)

// OutputTypes lists the accepted output types in display order.
var OutputTypes = []OutputType{
	OutputCharPtr, OutputCharArray, OutputArduinoString,
	OutputArduinoStream, OutputStdString, OutputStdStream,
}

// ParseOutputType validates an output type name.
func ParseOutputType(s string) (OutputType, error) {
	if s == "" {
		return OutputUnspecified, nil
	}
	for _, t := range OutputTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return OutputUnspecified, fmt.Errorf("unknown output type %q", s)
}

// Options shape the parsing program.
type Options struct {
	InputType InputType
	// Filter, when set, is declared as a filter document and passed to
	// deserializeJson.
	Filter *models.Value
	// NestingLimit is passed to deserializeJson when positive.
	NestingLimit int
	// Serial reports errors on the Arduino serial port instead of std::cerr.
	Serial bool
	// Progmem stores the error message in flash. It only applies with Serial.
	Progmem bool
}

// Assemble returns the program that deserializes the input, returns early
// on failure and then runs fragment.
func Assemble(fragment string, opts Options) string {
	w := generator.NewWriter()

	writeInputComment(w, opts.InputType)
	w.AddEmptyLine()

	if opts.Filter != nil {
		w.AddLine("JsonDocument filter;")
		generator.Compose(w, *opts.Filter, "filter")
		w.AddEmptyLine()
	}

	w.AddLine("JsonDocument doc;")
	w.AddEmptyLine()
	w.AddLine("DeserializationError error = deserializeJson(", strings.Join(deserializeArgs(opts), ", "), ");")
	w.AddEmptyLine()

	writeErrorCheck(w, opts)
	w.AddEmptyLine()

	w.AddText(fragment)
	return w.String()
}

func writeInputComment(w *generator.Writer, t InputType) {
	switch t {
	case InputCharPtr:
		w.AddLine("// char* input;")
		w.AddLine("// size_t inputLength; (optional)")
	case InputConstCharPtr:
		w.AddLine("// const char* input;")
		w.AddLine("// size_t inputLength; (optional)")
	case InputCharArray:
		w.AddLine("// char input[MAX_INPUT_LENGTH];")
	case InputArduinoString:
		w.AddLine("// String input;")
	case InputArduinoStream:
		w.AddLine("// Stream& input;")
	case InputStdStream:
		w.AddLine("// std::istream& input;")
	case InputStdString:
		w.AddLine("// std::string input;")
	}
}

// deserializeArgs lists the deserializeJson arguments. The filter option
// always precedes the nesting limit.
func deserializeArgs(opts Options) []string {
	args := []string{"doc", "input"}
	switch opts.InputType {
	case InputCharPtr, InputConstCharPtr:
		args = append(args, "inputLength")
	case InputCharArray:
		args = append(args, "MAX_INPUT_LENGTH")
	}
	if opts.Filter != nil {
		args = append(args, "DeserializationOption::Filter(filter)")
	}
	if opts.NestingLimit > 0 {
		args = append(args, "DeserializationOption::NestingLimit("+strconv.Itoa(opts.NestingLimit)+")")
	}
	return args
}

func writeErrorCheck(w *generator.Writer, opts Options) {
	w.AddLine("if (error) {")
	w.Indent()
	switch {
	case opts.Serial && opts.Progmem:
		w.AddLine(`Serial.print(F("deserializeJson() failed: "));`)
		w.AddLine("Serial.println(error.f_str());")
	case opts.Serial:
		w.AddLine(`Serial.print("deserializeJson() failed: ");`)
		w.AddLine("Serial.println(error.c_str());")
	default:
		w.AddLine(`std::cerr << "deserializeJson() failed: " << error.c_str() << std::endl;`)
	}
	w.AddLine("return;")
	w.Unindent()
	w.AddLine("}")
}

// MeasureNesting returns the container depth of v: 0 for a scalar, 1 plus
// the deepest member or element for an array or object.
func MeasureNesting(v models.Value) int {
	if !v.IsContainer() {
		return 0
	}
	inner := 0
	for _, e := range v.Elements() {
		inner = max(inner, MeasureNesting(e))
	}
	for _, m := range v.Members() {
		inner = max(inner, MeasureNesting(m.Value))
	}
	return 1 + inner
}

// AutoNestingLimit returns the depth of the deepest sample when it exceeds
// defaultLimit, and 0 when the deserializer default already suffices.
func AutoNestingLimit(samples models.SampleSet, defaultLimit int) int {
	deepest := 0
	for _, s := range samples {
		deepest = max(deepest, MeasureNesting(s))
	}
	if deepest > defaultLimit {
		return deepest
	}
	return 0
}

// Serializing returns the program that builds value in a JsonDocument and
// serializes it to an output of type t.
func Serializing(value models.Value, t OutputType) string {
	w := generator.NewWriter()

	switch t {
	case OutputCharPtr:
		w.AddLine("// char* output;")
		w.AddLine("// size_t outputCapacity;")
	case OutputArduinoStream:
		w.AddLine("// Stream& output;")
	case OutputStdStream:
		w.AddLine("// std::ostream& output;")
	}
	w.AddEmptyLine()

	w.AddLine("JsonDocument doc;")
	w.AddEmptyLine()
	generator.Compose(w, value, "doc")
	w.AddEmptyLine()

	args := []string{"doc", "output"}
	switch t {
	case OutputCharPtr:
		args = append(args, "outputCapacity")
	case OutputCharArray:
		w.AddLine("char output[MAX_OUTPUT_SIZE];")
	case OutputArduinoString:
		w.AddLine("String output;")
	case OutputStdString:
		w.AddLine("std::string output;")
	}

	if !value.IsNull() {
		w.AddEmptyLine()
		w.AddLine("doc.shrinkToFit();  // optional")
		w.AddEmptyLine()
	}

	w.AddLine("serializeJson(", strings.Join(args, ", "), ");")
	return w.String()
}
