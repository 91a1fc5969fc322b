package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// emitBlockStatement writes one block's per-step statement into w, gated
// by its enable guard. KindSubsystem never reaches here: the flattener
// never places a subsystem block itself into plan.Order (its body is
// spliced into the surrounding scope), so it has no per-kind emitter.
func emitBlockStatement(w *Writer, ctx *emitContext, id domain.BlockId) error {
	fb := ctx.plan.Blocks[id]
	guard := ctx.enableGuard(fb.Scope)
	guarded := guard != "1"
	if guarded {
		w.Line("if (%s) {", guard)
		w.Indent()
	}

	if err := emitBlockBody(w, ctx, id, fb); err != nil {
		return err
	}

	if guarded {
		w.Dedent()
		w.Line("}")
	}
	return nil
}

func emitBlockBody(w *Writer, ctx *emitContext, id domain.BlockId, fb flatten.FlatBlock) error {
	switch fb.Block.Kind {
	case domain.KindSource:
		p, err := domain.ParamsAs[domain.SourceParams](fb.Block.Params)
		if err != nil {
			return err
		}
		return emitSource(w, ctx, id, *p)
	case domain.KindInputPort:
		p, err := domain.ParamsAs[domain.InputPortParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitInputPort(w, ctx, id, *p)
	case domain.KindOutputPort:
		emitOutputPort(w, ctx, id)
	case domain.KindSum, domain.KindMultiply, domain.KindScale:
		return emitArithmetic(w, ctx, id, fb)
	case domain.KindAbs, domain.KindUMinus:
		emitUnary(w, ctx, id, fb.Block.Kind)
	case domain.KindTrig:
		p, err := domain.ParamsAs[domain.TrigParams](fb.Block.Params)
		if err != nil {
			return err
		}
		return emitTrig(w, ctx, id, *p)
	case domain.KindEvaluate:
		p, err := domain.ParamsAs[domain.EvaluateParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitEvaluate(w, ctx, id, *p)
	case domain.KindCondition:
		p, err := domain.ParamsAs[domain.ConditionParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitCondition(w, ctx, id, *p)
	case domain.KindTransferFunction:
		emitTransferFunctionAlgebraic(w, ctx, id, fb)
	case domain.KindLookup1D:
		p, err := domain.ParamsAs[domain.Lookup1DParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitLookup1D(w, ctx, id, *p)
	case domain.KindLookup2D:
		p, err := domain.ParamsAs[domain.Lookup2DParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitLookup2D(w, ctx, id, *p)
	case domain.KindMatrixMultiply:
		return emitMatrixMultiply(w, ctx, id)
	case domain.KindTranspose:
		emitTranspose(w, ctx, id)
	case domain.KindMux:
		emitMux(w, ctx, id)
	case domain.KindDemux:
		emitDemux(w, ctx, id)
	case domain.KindMag:
		emitMag(w, ctx, id)
	case domain.KindDot:
		emitDot(w, ctx, id)
	case domain.KindCross:
		emitCross(w, ctx, id)
	case domain.KindIf:
		emitIf(w, ctx, id)
	case domain.KindSignalDisplay:
		p, err := domain.ParamsAs[domain.SignalDisplayParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitDisplay(w, ctx, id, false, *p)
	case domain.KindSignalLogger:
		p, err := domain.ParamsAs[domain.SignalDisplayParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitDisplay(w, ctx, id, true, *p)
	case domain.KindSheetLabelSink:
		p, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitSheetLabelSink(w, ctx, id, fb.Scope, *p)
	case domain.KindSheetLabelSource:
		p, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitSheetLabelSource(w, ctx, id, fb.Scope, *p)
	default:
		return fmt.Errorf("codegen: no emitter for block kind %q", fb.Block.Kind)
	}
	return nil
}
