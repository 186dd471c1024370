package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL names the embedded document schema inside the compiler.
const schemaURL = "task-cli://tasks.schema.json"

// DocumentSchema is the JSON Schema every task document must satisfy.
// Status values are deliberately unconstrained: the store accepts any string.
const DocumentSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "description", "status", "createdAt", "updatedAt"],
    "properties": {
      "id": {"type": "integer"},
      "description": {"type": "string"},
      "status": {"type": "string"},
      "createdAt": {"type": "string"},
      "updatedAt": {"type": "string"}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(DocumentSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// checkSchema validates raw document bytes against DocumentSchema.
// Syntax errors are reported as-is; schema violations are joined.
func checkSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		var errs []error
		collectSchemaErrors(&errs, ve)
		return errors.Join(errs...)
	}
	return nil
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// jsonPointerToPath converts a JSON Pointer such as "/0/id" to "[0].id".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// Validate checks document invariants that the schema cannot express:
// positive and unique ids, known statuses, and updatedAt >= createdAt.
func Validate(tasks []Task) []error {
	var errs []error
	seen := make(map[int]int, len(tasks))
	for i, t := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if t.ID <= 0 {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("must be positive, got %d", t.ID),
			})
		}
		if first, ok := seen[t.ID]; ok {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (first at [%d])", t.ID, first),
			})
		} else {
			seen[t.ID] = i
		}
		if !t.Status.Valid() {
			errs = append(errs, &ValidationError{
				Path: path + ".status",
				Err:  fmt.Errorf("invalid status %q, must be one of: todo, in-progress, done", t.Status),
			})
		}
		if t.UpdatedAt.Before(t.CreatedAt.Time) {
			errs = append(errs, &ValidationError{
				Path: path + ".updatedAt",
				Err:  fmt.Errorf("%s is before createdAt %s", t.UpdatedAt, t.CreatedAt),
			})
		}
	}
	return errs
}
