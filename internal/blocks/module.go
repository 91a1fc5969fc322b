// Package blocks is the block catalog: one module per BlockKind, each
// contributing port counts, output-type inference, algebraic evaluation,
// and (for transfer_function) derivative computation. Grounded on the
// teacher's one-executor-per-node-type registry (internal/node/registry.go,
// internal/application/executor/node_executors.go), generalized from a
// string-keyed node dispatch table to a closed BlockKind -> Module map.
package blocks

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// Module is the uniform capability set every block kind implements.
type Module interface {
	// PortCounts returns the number of input and output ports a block of
	// this kind exposes, given its parameters (some kinds, e.g. mux/demux,
	// have parameter-dependent arity).
	PortCounts(params domain.BlockParams) (in, out int)

	// InferOutputTypes computes this block's output types from its
	// resolved input types and parameters. Returns an error describing
	// the mismatch when inputs don't satisfy the kind's type rule.
	InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error)

	// RequiresState reports whether blocks of this kind own integrator
	// state (true only for transfer_function).
	RequiresState(params domain.BlockParams) bool

	// Algebraic computes this block's outputs from its current inputs and
	// state, writing the result into st.Outputs. Pure with respect to
	// state: it never advances integrator state, only reads it.
	Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error
}

// StatefulModule is implemented additionally by kinds with
// RequiresState == true, currently only transfer_function.
type StatefulModule interface {
	Module
	// Derivatives returns the state derivative vector (row-major across
	// element instances) given the block's current state and inputs.
	Derivatives(st *domain.BlockState, inputs []domain.SignalValue, t float64, params domain.BlockParams) ([]float64, error)
	// InitState allocates the block's integrator state for the given
	// input types.
	InitState(inTypes []domain.Type, params domain.BlockParams) (*domain.TransferFunctionState, error)
}
