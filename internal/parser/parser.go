package parser

import (
	"context"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsonassist/internal/errors" // Custom errors package
	"github.com/mcncl/jsonassist/internal/models"
)

// maxConcurrentFiles bounds ParseFiles fan-out.
const maxConcurrentFiles = 8

// Parse reads exactly one JSON document from reader. Whitespace after the
// document is allowed, a second document is not.
func Parse(reader io.Reader) (models.Value, error) {
	dec := newDecoder(reader)

	root, err := decodeValue(dec)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Value{}, wrapDecodeError(err)
	}

	if _, err := dec.Token(); err == nil {
		return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	return root, nil
}

// ParseAll reads a stream of one or more concatenated JSON documents
// (NDJSON or whitespace separated). Each document becomes one sample, in
// stream order.
func ParseAll(reader io.Reader) (models.SampleSet, error) {
	dec := newDecoder(reader)

	var samples models.SampleSet
	for {
		v, err := decodeValue(dec)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapDecodeError(err)
		}
		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	return samples, nil
}

// ParseString parses a single JSON document from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses every JSON document found in the file at filePath.
func ParseFile(filePath string) (models.SampleSet, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	samples, err := ParseAll(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return samples, nil
}

// ParseFiles parses several sample files concurrently. The returned sample
// set lists the documents of the first file first, then the second file, and
// so on, regardless of which file finished reading first.
func ParseFiles(ctx context.Context, paths []string) (models.SampleSet, error) {
	if len(paths) == 0 {
		return nil, errors.NewInputError("no input files", errors.ErrNoInput)
	}

	results := make([]models.SampleSet, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			samples, err := ParseFile(path)
			if err != nil {
				return err
			}
			results[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all models.SampleSet
	for _, samples := range results {
		all = append(all, samples...)
	}
	return all, nil
}

func newDecoder(reader io.Reader) *json.Decoder {
	dec := json.NewDecoder(reader)
	dec.UseNumber() // keep number literals verbatim
	return dec
}

// decodeValue walks the token stream so object members keep their order.
func decodeValue(dec *json.Decoder) (models.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return models.Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (models.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return models.Value{}, fmt.Errorf("%w: unexpected delimiter %q", errors.ErrInvalidJSON, rune(t))
		}
	case string:
		return models.StringValue(t), nil
	case json.Number:
		return models.NumberValue(string(t)), nil
	case float64:
		return models.NumberValue(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return models.BoolValue(t), nil
	case nil:
		return models.NullValue(), nil
	default:
		return models.Value{}, fmt.Errorf("%w: unexpected token %v", errors.ErrInvalidJSON, t)
	}
}

func decodeObject(dec *json.Decoder) (models.Value, error) {
	var members []models.Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("%w: object key must be a string, got %v", errors.ErrInvalidJSON, keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		members = append(members, models.Member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return models.Value{}, unexpectedEOF(err)
	}
	return models.ObjectValue(members...), nil
}

func decodeArray(dec *json.Decoder) (models.Value, error) {
	var elements []models.Value
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		elements = append(elements, value)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return models.Value{}, unexpectedEOF(err)
	}
	return models.ArrayValue(elements...), nil
}

// unexpectedEOF turns an EOF inside a container into a syntax problem rather
// than the clean end of the stream.
func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input", errors.ErrInvalidJSON)
	}
	return err
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, errors.ErrInvalidJSON) {
		return errors.NewParsingError(err.Error(), errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}
