package experiment

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// ConfigError is an invalid experiment, with the CUE position when known.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a CUE experiment file. NetworkFile is resolved relative to the
// file's directory.
func Load(path string) (*Experiment, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment: %w", err)
	}
	e, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	e.SetDir(filepath.Dir(path))
	return e, nil
}

// Parse compiles src, unifies it with the #Experiment schema and decodes the
// result. filename is used in error positions only.
func Parse(src []byte, filename string) (*Experiment, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("experiment schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Experiment"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var e Experiment
	if err := v.Decode(&e); err != nil {
		return nil, formatCUEError(err)
	}
	if err := e.Validate(); err != nil {
		if ce, ok := err.(*ConfigError); ok {
			ce.Pos = v.LookupPath(cue.ParsePath(ce.Field)).Pos()
		}
		return nil, err
	}
	return &e, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	msg, args := first.Msg()
	ce := &ConfigError{Field: field, Message: fmt.Sprintf(msg, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
