// Package artifact loads the pre-built model artifacts (classifier, scaler and
// feature schema) once at startup and holds them read-only for the lifetime of
// the process.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrStartupLoad marks every failure to assemble a Store.
var ErrStartupLoad = errors.New("artifact load failed")

// Paths locates the three artifact files.
type Paths struct {
	Model   string
	Scaler  string
	Columns string
}

// LoadError names the artifact that could not be loaded.
type LoadError struct {
	Artifact string // "model", "scaler", "columns" or "store"
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrStartupLoad, e.Err} }

// Info describes what was loaded.
type Info struct {
	ModelKind   string    `json:"kind"`
	ScalerKind  string    `json:"scaler"`
	Fingerprint string    `json:"fingerprint"`
	Features    int       `json:"features"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Store holds the loaded artifacts. It is never mutated after construction
// and is safe to share across goroutines.
type Store struct {
	classifier Classifier
	scaler     Scaler
	schema     Schema
	info       Info
}

// New assembles a Store from already-decoded artifacts and cross-checks that
// the scaler and classifier were fit on the schema's width.
func New(schema Schema, scaler Scaler, classifier Classifier, info Info) (*Store, error) {
	if err := schema.Validate(); err != nil {
		return nil, &LoadError{Artifact: "columns", Err: err}
	}
	if scaler == nil || classifier == nil {
		return nil, &LoadError{Artifact: "store", Err: errors.New("scaler and classifier are required")}
	}
	if scaler.NumFeatures() != schema.Len() {
		return nil, &LoadError{Artifact: "scaler", Err: fmt.Errorf("%w: scaler expects %d features, schema has %d",
			ErrSchemaInconsistent, scaler.NumFeatures(), schema.Len())}
	}
	if classifier.NumFeatures() != schema.Len() {
		return nil, &LoadError{Artifact: "model", Err: fmt.Errorf("%w: model expects %d features, schema has %d",
			ErrSchemaInconsistent, classifier.NumFeatures(), schema.Len())}
	}

	cols := make(Schema, len(schema))
	copy(cols, schema)
	info.Features = len(cols)
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now().UTC()
	}
	return &Store{classifier: classifier, scaler: scaler, schema: cols, info: info}, nil
}

// Load reads and decodes all three artifacts. Any failure is fatal for the
// caller: the process must not serve without a complete Store.
func Load(ctx context.Context, paths Paths) (*Store, error) {
	digest := xxhash.New()

	read := func(name, path string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, &LoadError{Artifact: name, Path: path, Err: err}
		}
		if path == "" {
			return nil, &LoadError{Artifact: name, Err: errors.New("path not configured")}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Artifact: name, Path: path, Err: err}
		}
		_, _ = digest.Write(data)
		return data, nil
	}

	colData, err := read("columns", paths.Columns)
	if err != nil {
		return nil, err
	}
	schema, err := ParseSchema(colData)
	if err != nil {
		return nil, &LoadError{Artifact: "columns", Path: paths.Columns, Err: err}
	}

	scalerData, err := read("scaler", paths.Scaler)
	if err != nil {
		return nil, err
	}
	scaler, scalerKind, err := ParseScaler(scalerData)
	if err != nil {
		return nil, &LoadError{Artifact: "scaler", Path: paths.Scaler, Err: err}
	}

	modelData, err := read("model", paths.Model)
	if err != nil {
		return nil, err
	}
	classifier, modelKind, err := ParseClassifier(modelData)
	if err != nil {
		return nil, &LoadError{Artifact: "model", Path: paths.Model, Err: err}
	}

	return New(schema, scaler, classifier, Info{
		ModelKind:   modelKind,
		ScalerKind:  scalerKind,
		Fingerprint: strconv.FormatUint(digest.Sum64(), 16),
	})
}

func (s *Store) Classifier() Classifier { return s.classifier }
func (s *Store) Scaler() Scaler         { return s.scaler }
func (s *Store) Info() Info             { return s.info }

// Schema returns a copy of the feature order.
func (s *Store) Schema() Schema {
	cols := make(Schema, len(s.schema))
	copy(cols, s.schema)
	return cols
}
