package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// canonicalForm mirrors internal/blocks/transfer_function.go's
// controllable-canonical-form coefficients. It is independently derived
// here (rather than imported as a value) because codegen needs the
// coefficients as compile-time C literals baked into the generated
// source, not as a runtime Go value.
type canonicalForm struct {
	order int
	a     []float64
	c     []float64
	d     float64
}

func buildCanonicalForm(p domain.TransferFunctionParams) (*canonicalForm, error) {
	if len(p.Denominator) == 0 {
		return nil, fmt.Errorf("codegen: transfer_function denominator must be non-empty")
	}
	if len(p.Numerator) == 0 {
		return nil, fmt.Errorf("codegen: transfer_function numerator must be non-empty")
	}
	a0 := p.Denominator[0]
	if a0 == 0 {
		return nil, fmt.Errorf("codegen: transfer_function leading denominator coefficient must be non-zero")
	}
	order := len(p.Denominator) - 1
	if len(p.Numerator) > len(p.Denominator) {
		return nil, fmt.Errorf("codegen: transfer_function numerator order must not exceed denominator order")
	}

	num := make([]float64, order+1)
	offset := (order + 1) - len(p.Numerator)
	for i, v := range p.Numerator {
		num[offset+i] = v
	}
	den := make([]float64, order+1)
	for i, v := range p.Denominator {
		den[i] = v / a0
	}
	for i := range num {
		num[i] /= a0
	}

	cf := &canonicalForm{order: order, a: make([]float64, order), c: make([]float64, order), d: num[0]}
	for i := 1; i <= order; i++ {
		cf.a[i-1] = den[i]
		cf.c[i-1] = num[i] - den[i]*cf.d
	}
	return cf, nil
}

// stateElementCount resolves a transfer_function block's per-element
// state vector count from its single input's resolved type.
func (ctx *emitContext) stateElementCount(id domain.BlockId) int {
	in := ctx.inputsOf(id)
	if len(in) != 1 {
		return 1
	}
	t := ctx.outputType(in[0].SourceBlock, in[0].SourcePort)
	n := t.ElementCount()
	if n == 0 {
		return 1
	}
	return n
}

// stateField is the name of a stateful block's state array field in
// model_states_t.
func stateField(blockVar string) string { return "st_" + blockVar }

func (ctx *emitContext) emitStateFieldDecl(w *Writer, id domain.BlockId) {
	cf := ctx.stateInfo[id]
	n := ctx.stateElementCount(id)
	w.Line("double %s[%d][%d];", stateField(ctx.blockVar[id]), n, maxInt(cf.order, 1))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// emitTransferFunctionAlgebraic writes, for every element instance, the
// canonical-form output y = C x + D u, reading/writing flat arrays.
func emitTransferFunctionAlgebraic(w *Writer, ctx *emitContext, id domain.BlockId, fb flatten.FlatBlock) {
	cf := ctx.stateInfo[id]
	n := ctx.stateElementCount(id)
	bv := ctx.blockVar[id]
	st := stateField(bv)
	inExpr := ctx.inputExpr(id, 0)
	outType := ctx.outputType(id, 0)

	if outType.Shape == domain.ShapeScalar {
		w.Line("{")
		w.Indent()
		w.Line("double u = %s;", inExpr)
		w.Line("double y = %s;", fmt.Sprintf("%g * u", cf.d))
		for i := 0; i < cf.order; i++ {
			w.Line("y += %g * m->states.%s[0][%d];", cf.c[i], st, i)
		}
		w.Line("%s = y;", ctx.sig(id, 0))
		w.Dedent()
		w.Line("}")
		return
	}

	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line("double *u = (double *)%s;", inExpr)
	w.Line("double *y = (double *)%s;", ctx.sig(id, 0))
	w.Line("for (i = 0; i < %d; i++) {", n)
	w.Indent()
	w.Line("double yy = %g * u[i];", cf.d)
	for i := 0; i < cf.order; i++ {
		w.Line("yy += %g * m->states.%s[i][%d];", cf.c[i], st, i)
	}
	w.Line("y[i] = yy;")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
}

// emitTransferFunctionDerivative writes dx/dt for every element instance
// of id into the flat derivative buffer deriv[], at id's precomputed
// stacked offset (ctx.tfOffset), mirroring internal/runtime/integrator.go's
// flattenState/unflattenInto convention but resolved at generation time
// instead of walked at runtime.
func emitTransferFunctionDerivative(w *Writer, ctx *emitContext, id domain.BlockId, deriv string) {
	cf := ctx.stateInfo[id]
	if cf.order == 0 {
		return
	}
	n := ctx.stateElementCount(id)
	st := stateField(ctx.blockVar[id])
	inExpr := ctx.inputExpr(id, 0)
	offset := ctx.tfOffset[id]
	scalar := ctx.outputType(id, 0).Shape == domain.ShapeScalar

	w.Line("{")
	w.Indent()
	w.Line("int i;")
	if scalar {
		w.Line("double u0 = %s;", inExpr)
	} else {
		w.Line("double *u0 = (double *)%s;", inExpr)
	}
	w.Line("for (i = 0; i < %d; i++) {", n)
	w.Indent()
	if scalar {
		w.Line("double u = u0;")
	} else {
		w.Line("double u = u0[i];")
	}
	w.Line("double dx0 = u;")
	for i := 0; i < cf.order; i++ {
		w.Line("dx0 -= %g * m->states.%s[i][%d];", cf.a[i], st, i)
	}
	w.Line("%s[%d + i*%d + 0] = dx0;", deriv, offset, cf.order)
	for i := 1; i < cf.order; i++ {
		w.Line("%s[%d + i*%d + %d] = m->states.%s[i][%d];", deriv, offset, cf.order, i, st, i-1)
	}
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
}

// emitStateSnapshot/emitStateRestore move every transfer_function block's
// 2-D state array to and from a flat buffer of size ctx.tfSize, at each
// block's precomputed offset — the C equivalent of internal/runtime's
// snapshotStates/commitStates, used to save/restore/trial-update state
// across RK4's stages.
func emitStateSnapshot(w *Writer, ctx *emitContext, buf string) {
	for _, id := range ctx.tfOrder {
		cf := ctx.stateInfo[id]
		n := ctx.stateElementCount(id)
		st := stateField(ctx.blockVar[id])
		offset := ctx.tfOffset[id]
		w.Line("{")
		w.Indent()
		w.Line("int i, j;")
		w.Line("for (i = 0; i < %d; i++) for (j = 0; j < %d; j++) %s[%d + i*%d + j] = m->states.%s[i][j];", n, cf.order, buf, offset, cf.order, st)
		w.Dedent()
		w.Line("}")
	}
}

func emitStateRestore(w *Writer, ctx *emitContext, buf string) {
	for _, id := range ctx.tfOrder {
		cf := ctx.stateInfo[id]
		n := ctx.stateElementCount(id)
		st := stateField(ctx.blockVar[id])
		offset := ctx.tfOffset[id]
		w.Line("{")
		w.Indent()
		w.Line("int i, j;")
		w.Line("for (i = 0; i < %d; i++) for (j = 0; j < %d; j++) m->states.%s[i][j] = %s[%d + i*%d + j];", n, cf.order, st, buf, offset, cf.order)
		w.Dedent()
		w.Line("}")
	}
}

func emitDerivativesAll(w *Writer, ctx *emitContext, deriv string) {
	for _, id := range ctx.tfOrder {
		emitTransferFunctionDerivative(w, ctx, id, deriv)
	}
}
