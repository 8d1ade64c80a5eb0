package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/mcncl/jsonassist/internal/assistant"
	"github.com/mcncl/jsonassist/internal/config"
	"github.com/mcncl/jsonassist/internal/errors"
	"github.com/mcncl/jsonassist/internal/formatter"
	"github.com/mcncl/jsonassist/internal/models"
	"github.com/mcncl/jsonassist/internal/parser"
)

// CLI defines the command-line interface
var CLI struct {
	Files            []string `arg:"" optional:"" help:"Sample JSON files. Each file may hold several documents. If none are given, reads from stdin." type:"path"`
	Input            []string `help:"Additional sample JSON file (repeatable)." short:"i" type:"path"`
	Output           string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Mode             string   `help:"What to generate: access, parse or serialize." short:"m"`
	Filter           string   `help:"Filter document for parse mode: a file path or inline JSON."`
	NestingLimit     int      `help:"Nesting limit passed to deserializeJson in parse mode."`
	AutoNestingLimit bool     `help:"Pass the sample depth as nesting limit when it exceeds the deserializer default."`
	InputType        string   `help:"Type of the program input: charPtr, constCharPtr, charArray, arduinoString, arduinoStream, stdString or stdStream."`
	OutputType       string   `help:"Type of the program output: charPtr, charArray, arduinoString, arduinoStream, stdString or stdStream."`
	Serial           bool     `help:"Report deserialization errors on the Arduino serial port."`
	Progmem          bool     `help:"Store the error message in flash (with --serial)."`
	Config           string   `help:"Path to config file. Defaults to the nearest .jsonassist.yml." short:"c" type:"path"`
	Format           bool     `help:"Format the output code." short:"f" default:"true" negatable:""`
	Wrap             string   `help:"Wrap the code in a function with this name, with the includes it needs."`
	Debug            bool     `help:"Enable debug logging." short:"d"`
	Version          bool     `help:"Show version information." short:"v"`
	Interactive      bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *zap.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonassist"),
		kong.Description("Generates ArduinoJson code from sample JSON documents"),
		kong.UsageOnError(),
	)

	// No arguments at all: read interactively
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsonassist version %s\n", Version)
		return
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides(kctx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Dev.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	err = run(&Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonassist --help\n")
		_ = logger.Sync()
		os.Exit(1)
	}
}

// overrides collects the settings given on the command line.
func overrides(kctx *kong.Context) config.Overrides {
	o := config.Overrides{
		Mode:             CLI.Mode,
		InputType:        CLI.InputType,
		OutputType:       CLI.OutputType,
		Serial:           CLI.Serial,
		Progmem:          CLI.Progmem,
		AutoNestingLimit: CLI.AutoNestingLimit,
		NoFormat:         !CLI.Format,
		Wrap:             CLI.Wrap,
		Debug:            CLI.Debug,
	}
	if flagSet(kctx, "nesting-limit") {
		limit := CLI.NestingLimit
		o.NestingLimit = &limit
	}
	return o
}

func flagSet(kctx *kong.Context, name string) bool {
	for _, f := range kctx.Flags() {
		if f.Name == name {
			return f.Set
		}
	}
	return false
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// 1. Load the samples
	samples, err := loadSamples(context.Background())
	if err != nil {
		return err
	}
	logger.Debug("samples loaded", zap.Int("count", len(samples)), zap.String("mode", cfg.Mode))

	// 2. Generate the code
	a := assistant.New(cfg, assistant.WithLogger(logger))
	var res assistant.Result
	switch cfg.Mode {
	case config.ModeParse:
		filterDoc, err := loadFilter(CLI.Filter)
		if err != nil {
			return err
		}
		res, err = a.ParsingProgram(samples, assistant.ProgramRequest{
			Filter:           filterDoc,
			NestingLimit:     cfg.Deserialization.NestingLimit,
			AutoNestingLimit: cfg.Deserialization.AutoNestingLimit,
		})
		if err != nil {
			return err
		}
	case config.ModeSerialize:
		if len(samples) > 1 {
			fmt.Fprintf(os.Stderr, "Warning: serialize mode uses the first of %d samples\n", len(samples))
		}
		res, err = a.SerializingProgram(samples[0])
		if err != nil {
			return err
		}
	default:
		res, err = a.Decompose(samples)
		if err != nil {
			return err
		}
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// 3. Wrap and format the code if requested
	code := res.Code
	f := formatter.NewFormatter(
		formatter.WithIndent(cfg.Formatting.Indent),
		formatter.WithTabs(cfg.Formatting.UseTabs),
	)
	if cfg.Formatting.WrapFunction != "" {
		code = f.Wrap(code, cfg.Formatting.WrapFunction)
	}
	if cfg.Formatting.Enabled {
		code, err = f.Format(code)
		if err != nil {
			return errors.NewFormatError("failed to format C++ code", err)
		}
	}

	// 4. Output the result
	return writeOutput(code)
}

// loadSamples reads the samples from the given files, or from stdin
func loadSamples(ctx context.Context) (models.SampleSet, error) {
	files := append(append([]string{}, CLI.Files...), CLI.Input...)
	if len(files) > 0 {
		return parser.ParseFiles(ctx, files)
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Piped input may hold several documents
	return parser.ParseAll(os.Stdin)
}

// loadFilter reads the filter document from inline JSON or from a file
func loadFilter(source string) (*models.Value, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	if isInlineJSON(source) {
		v, err := parser.ParseString(source)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		return &v, nil
	}

	docs, err := parser.ParseFile(source)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if len(docs) != 1 {
		return nil, errors.NewParsingError(
			fmt.Sprintf("filter file '%s' holds %d documents", source, len(docs)),
			errors.ErrMultipleJSON,
		)
	}
	return &docs[0], nil
}

func isInlineJSON(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// writeOutput writes code to file or stdout
func writeOutput(code string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(code), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Generated code written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Println(strings.TrimSpace(code))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (models.SampleSet, error) {
	fmt.Fprintln(os.Stderr, "jsonassist Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste one or more sample JSON documents below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return parser.ParseAll(strings.NewReader(jsonData))
}
