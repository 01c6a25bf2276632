// Package inference runs a typed record through encode, scale, predict and
// shape, returning an explicit error from whichever stage fails.
package inference

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/features"
)

const tracerName = "github.com/TimurManjosov/heartcheck/internal/inference"

// Pipeline is immutable once built and safe for concurrent use.
type Pipeline struct {
	store   *artifact.Store
	encoder *features.Encoder
	tracer  trace.Tracer
}

// NewPipeline binds the encoder to the store's schema. An error here is a
// deployment problem and must prevent serving.
func NewPipeline(store *artifact.Store) (*Pipeline, error) {
	enc, err := features.NewEncoder(store.Schema())
	if err != nil {
		return nil, fmt.Errorf("bind encoder to schema: %w", err)
	}
	if enc.Len() != store.Scaler().NumFeatures() {
		return nil, fmt.Errorf("%w: encoder produces %d values, scaler expects %d",
			artifact.ErrSchemaInconsistent, enc.Len(), store.Scaler().NumFeatures())
	}
	return &Pipeline{
		store:   store,
		encoder: enc,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Store returns the artifacts the pipeline serves.
func (p *Pipeline) Store() *artifact.Store { return p.store }

// Run predicts for one record.
func (p *Pipeline) Run(ctx context.Context, rec features.Record) (Response, error) {
	ctx, span := p.tracer.Start(ctx, "inference.Run")
	defer span.End()

	res, err := p.run(ctx, rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		return Response{}, err
	}

	span.SetAttributes(
		attribute.Int("prediction.label", res.Label),
		attribute.Float64("prediction.heart_disease", res.Probabilities[1]),
	)
	return Shape(res), nil
}

func (p *Pipeline) run(ctx context.Context, rec features.Record) (Result, error) {
	var (
		vec    features.Vector
		scaled features.Vector
		res    Result
	)

	err := p.stage(ctx, "encode", func() (err error) {
		vec, err = p.encoder.Encode(rec)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	err = p.stage(ctx, "scale", func() (err error) {
		scaled, err = Scale(vec, p.store.Scaler())
		return err
	})
	if err != nil {
		return Result{}, err
	}

	err = p.stage(ctx, "predict", func() (err error) {
		res, err = Predict(scaled, p.store.Classifier())
		return err
	})
	return res, err
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	_, span := p.tracer.Start(ctx, "inference."+name)
	defer span.End()
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
