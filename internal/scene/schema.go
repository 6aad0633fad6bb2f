package scene

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// sceneSchema compiles the embedded schema once and returns #Scene.
func sceneSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scene schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Scene"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Scene: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// SchemaError reports every violation of the scene schema.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 1 {
		return "scene schema: " + e.Problems[0]
	}
	return fmt.Sprintf("scene schema: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// applySchema unifies raw decoded YAML with #Scene, fills defaults, and
// decodes the result into doc.
func applySchema(raw any, doc *Document) error {
	ctx, def, err := sceneSchema()
	if err != nil {
		return err
	}
	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	v := def.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err)
	}
	if err := v.Decode(doc); err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}
	return nil
}

func schemaError(err error) *SchemaError {
	se := &SchemaError{}
	for _, e := range errors.Errors(err) {
		se.Problems = append(se.Problems, errors.Details(e, nil))
	}
	if len(se.Problems) == 0 {
		se.Problems = []string{err.Error()}
	}
	return se
}
