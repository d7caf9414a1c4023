// Package schemas validates decomposition envelopes against the JSON Schema
// files shipped in the repository's schemas/ directory.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DecomposeResultSchema is the repo-relative path of the envelope schema.
const DecomposeResultSchema = "schemas/decompose_result.schema.json"

// ResolveSchemaPath finds a schema file by trying the path relative to the
// working directory and then one and two levels up, so commands and tests work
// from different directory contexts. Returns "" when nothing exists.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}
	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}
	return ""
}

// FieldError is a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates schema validation failures.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError reports a problem loading or parsing the schema itself.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateJSONBytes validates a JSON document against the schema at schemaPath.
// Returns *ValidationError on document failures, *SchemaLoadError when the
// schema itself cannot be used.
func ValidateJSONBytes(schemaPath string, document []byte) error {
	resolved := ResolveSchemaPath(schemaPath)
	if resolved == "" {
		return &SchemaLoadError{Path: schemaPath, Message: "schema file not found"}
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + resolved)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Path: resolved, Message: "validation could not run", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
