package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/jsonshaper/internal/errors" // Custom errors package
	"github.com/mcncl/jsonshaper/internal/models"
)

// Parse reads a single JSON document from reader. Object key order is kept
// and numbers are read as json.Number.
func Parse(reader io.Reader) (models.Document, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	rootValue, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Document{}, classifyDecodeError(err)
	}

	// Anything other than whitespace after the first value is an error.
	if _, err := decoder.Token(); err == nil {
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.Document{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	doc := models.Document{Root: rootValue}
	_, doc.RootIsArray = rootValue.(models.JSONArray)
	return doc, nil
}

func classifyDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue walks the token stream and rebuilds the value with ordered objects.
func decodeValue(dec *json.Decoder) (models.JSONValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (models.JSONValue, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		// Primitives (string, json.Number, bool, nil) are returned as is
		return tok, nil
	}

	switch delim {
	case '{':
		obj := models.NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("json: object key is %T, want string", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return obj, nil

	case '[':
		arr := models.JSONArray{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("json: unexpected delimiter %q", delim)
	}
}

// A bare EOF inside a container means the document was truncated.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseBytes parses JSON from raw bytes, as received from an upload or a tool call.
func ParseBytes(data []byte) (models.Document, error) {
	return ParseString(string(data))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}

// MustParseString parses s and panics on error. Intended for tests and fixtures.
func MustParseString(s string) models.JSONValue {
	doc, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return doc.Root
}
