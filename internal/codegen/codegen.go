// Package codegen renders a flattened, type-resolved simulation plan into
// standalone C99: a <name>.h/<name>.c pair implementing spec.md §4.8's
// model_init/model_evaluate_algebraic/model_derivatives/model_step
// contract, plus an optional main.c harness. It deliberately imports
// internal/flatten and internal/propagator but never internal/blocks:
// SPEC_FULL.md §4.4 sketches a per-module EmitC method instead, but
// wiring that would make internal/blocks import codegen's Writer type
// (or vice versa) for no benefit blocks' own runtime semantics need, so
// each block kind's C form lives here as an independent switch, grounded
// block-by-block on the corresponding internal/blocks/*.go Algebraic
// implementation instead of sharing its code.
package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
	"github.com/smilemakc/blockflow/internal/propagator"
)

// Options configures one Generate call. ModelName seeds every generated
// identifier (file names, include guard, struct/function prefixes);
// domain.Model carries no name of its own, so the caller supplies one.
type Options struct {
	ModelName     string
	IncludeHarness bool
}

// Artifact holds one generation's rendered files, keyed by their
// suggested file name.
type Artifact struct {
	Header string // <ModelName>.h
	Source string // <ModelName>.c
	Main   string // main.c, only set when Options.IncludeHarness is true
}

// Generate renders plan (already flattened and type-resolved by types)
// into a C99 Artifact. Returns an error only for a structural problem in
// the plan itself (an unrecognized block kind, an invalid transfer
// function, a malformed params record) — the kind of failure Validate
// should have already caught upstream.
func Generate(plan *flatten.Plan, model domain.Model, types propagator.Result, opts Options) (Artifact, error) {
	if opts.ModelName == "" {
		return Artifact{}, fmt.Errorf("codegen: ModelName is required")
	}

	ctx, err := buildContext(plan, types)
	if err != nil {
		return Artifact{}, fmt.Errorf("codegen: %w", err)
	}

	header := writeHeader(ctx, opts.ModelName)
	source, err := writeSource(ctx, opts.ModelName, model.GlobalSettings.IntegrationMethod)
	if err != nil {
		return Artifact{}, fmt.Errorf("codegen: %w", err)
	}

	art := Artifact{Header: header, Source: source}
	if opts.IncludeHarness {
		art.Main = writeHarness(ctx, opts.ModelName, model.GlobalSettings.SimulationDuration, model.GlobalSettings.SimulationTimeStep)
	}
	return art, nil
}
