package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

const schemaURL = "manifest.schema.json"

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Path    string // instance location, e.g. "/scripts/0"; empty for the document
	Message string
	Keyword string // failing keyword, e.g. "required"
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// manifestSchema compiles the embedded schema on first use.
var manifestSchema = &schemaLoader{printer: message.NewPrinter(language.English)}

type schemaLoader struct {
	once    sync.Once
	schema  *jsonschema.Schema
	err     error
	printer *message.Printer
}

func (l *schemaLoader) load() (*jsonschema.Schema, error) {
	l.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			l.err = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			l.err = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		if l.schema, err = c.Compile(schemaURL); err != nil {
			l.err = fmt.Errorf("compiling schema: %w", err)
		}
	})
	return l.schema, l.err
}

// Validate checks a raw manifest document against the manifest schema. The
// error return is for undecodable input or a broken schema; violations are
// reported in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := manifestSchema.load()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := decodeInstance(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return &ValidationResult{Issues: manifestSchema.issues(ve)}, nil
}

// decodeInstance turns a JSON or YAML document into the value model the
// schema validator expects, with numbers as json.Number.
func decodeInstance(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decoding document: empty document")
	}

	jsonData, err := json.Marshal(jsonCompatible(raw))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}
	return inst, nil
}

// issues flattens the error tree into its distinct leaf violations, in
// document order. A tree with no informative leaf yields one issue carrying
// the top-level message.
func (l *schemaLoader) issues(root *jsonschema.ValidationError) []ValidationIssue {
	var out []ValidationIssue
	seen := make(map[ValidationIssue]bool)

	stack := []*jsonschema.ValidationError{root}
	for len(stack) > 0 {
		ve := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(ve.Causes) > 0 {
			for i := len(ve.Causes) - 1; i >= 0; i-- {
				stack = append(stack, ve.Causes[i])
			}
			continue
		}

		issue, ok := l.leaf(ve)
		if !ok || seen[issue] {
			continue
		}
		seen[issue] = true
		out = append(out, issue)
	}

	if len(out) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	return out
}

// leaf converts a leaf error. Container keywords carry no property-level
// detail and are dropped.
func (l *schemaLoader) leaf(ve *jsonschema.ValidationError) (ValidationIssue, bool) {
	if ve.ErrorKind == nil {
		return ValidationIssue{}, false
	}
	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 {
		return ValidationIssue{}, false
	}
	keyword := kw[len(kw)-1]
	if keyword == "allOf" || keyword == "$ref" {
		return ValidationIssue{}, false
	}

	var path string
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	return ValidationIssue{
		Path:    path,
		Message: ve.ErrorKind.LocalizedString(l.printer),
		Keyword: keyword,
	}, true
}

// jsonCompatible rewrites YAML-decoded values so encoding/json accepts them;
// yaml.v3 decodes mappings with non-string keys as map[any]any.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = jsonCompatible(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = jsonCompatible(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = jsonCompatible(v)
		}
		return a
	default:
		return val
	}
}
