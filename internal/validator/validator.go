package validator

// =============================================================================
// CRASH EARLY, CRASH LOUD
// =============================================================================
//
// The CUE schemas are the contract between the fact exporter and the policy
// engine. When a row field is renamed or carries the wrong type the rego
// rules see `undefined` and simply stop firing, so facts are validated before
// they are evaluated or written out.
//
// When validation fails, fix the producer (extractor, registry, BuildTables)
// rather than widening the schema.
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed facts_schema.cue
var factsSchemaFS embed.FS

//go:embed output_schema.cue
var outputSchemaFS embed.FS

// schemaValidator checks JSON-encodable values against one definition of a
// compiled CUE schema.
type schemaValidator struct {
	ctx        *cue.Context
	schema     cue.Value
	definition string
	label      string
}

func newSchemaValidator(fs embed.FS, file, definition, label string) (*schemaValidator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s schema: %w", label, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", label, schema.Err())
	}

	return &schemaValidator{
		ctx:        ctx,
		schema:     schema,
		definition: definition,
		label:      label,
	}, nil
}

func (v *schemaValidator) unify(jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling %s as CUE: %w", v.label, dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(v.definition))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", v.definition, def.Err())
	}

	return def.Unify(dataValue), nil
}

func (v *schemaValidator) validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s to JSON: %w", v.label, err)
	}
	return v.validateJSON(jsonBytes)
}

func (v *schemaValidator) validateJSON(jsonBytes []byte) error {
	unified, err := v.unify(jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", v.label, err)
	}
	return nil
}

// validationErrors lists every failure rather than the first one.
func (v *schemaValidator) validationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	unified, err := v.unify(jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate()
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

// FactsValidator validates relational fact tables against the facts schema.
type FactsValidator struct {
	v *schemaValidator
}

// NewFactsValidator creates a validator for relational fact tables.
func NewFactsValidator() (*FactsValidator, error) {
	v, err := newSchemaValidator(factsSchemaFS, "facts_schema.cue", "#FactTables", "facts")
	if err != nil {
		return nil, err
	}
	return &FactsValidator{v: v}, nil
}

// Validate checks that the fact tables conform to the facts schema.
func (f *FactsValidator) Validate(data interface{}) error {
	return f.v.validate(data)
}

// ValidateJSON validates encoded fact tables, e.g. a file given to --delta-from.
func (f *FactsValidator) ValidateJSON(jsonBytes []byte) error {
	return f.v.validateJSON(jsonBytes)
}

// ValidationErrors returns detailed information about all validation errors.
func (f *FactsValidator) ValidationErrors(data interface{}) []string {
	return f.v.validationErrors(data)
}

// OutputValidator validates check results against the output schema.
type OutputValidator struct {
	v *schemaValidator
}

// NewOutputValidator creates a validator for check output.
func NewOutputValidator() (*OutputValidator, error) {
	v, err := newSchemaValidator(outputSchemaFS, "output_schema.cue", "#CheckOutput", "output")
	if err != nil {
		return nil, err
	}
	return &OutputValidator{v: v}, nil
}

// Validate checks that the output data conforms to the output schema.
func (o *OutputValidator) Validate(data interface{}) error {
	return o.v.validate(data)
}
