package blocks

import (
	"fmt"
	"sync"

	"github.com/smilemakc/blockflow/internal/domain"
)

// Registry is the BlockKind -> Module catalog. It is built once at
// package init via Default and is safe for concurrent reads afterward;
// the mutex exists so hosts embedding the core can still register test
// doubles without a data race, mirroring the teacher's node Registry.
type Registry struct {
	mu      sync.RWMutex
	modules map[domain.BlockKind]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[domain.BlockKind]Module)}
}

// Register adds or replaces the module for kind.
func (r *Registry) Register(kind domain.BlockKind, m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[kind] = m
}

// Get returns the module for kind, or an error if none is registered.
func (r *Registry) Get(kind domain.BlockKind) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[kind]
	if !ok {
		return nil, fmt.Errorf("blocks: no module registered for kind %q", kind)
	}
	return m, nil
}

// MustGet is like Get but panics if the kind is unregistered; used only
// where the caller has already validated the kind via BlockKind.IsValid.
func (r *Registry) MustGet(kind domain.BlockKind) Module {
	m, err := r.Get(kind)
	if err != nil {
		panic(err)
	}
	return m
}

var defaultRegistry = buildDefaultRegistry()

// Default returns the package-wide catalog covering every recognized
// BlockKind.
func Default() *Registry {
	return defaultRegistry
}

func buildDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.KindSource, sourceModule{})
	r.Register(domain.KindInputPort, inputPortModule{})
	r.Register(domain.KindOutputPort, outputPortModule{})
	r.Register(domain.KindSum, sumModule{})
	r.Register(domain.KindMultiply, multiplyModule{})
	r.Register(domain.KindScale, scaleModule{})
	r.Register(domain.KindAbs, absModule{})
	r.Register(domain.KindUMinus, uminusModule{})
	r.Register(domain.KindTrig, trigModule{})
	r.Register(domain.KindEvaluate, evaluateModule{})
	r.Register(domain.KindTransferFunction, transferFunctionModule{})
	r.Register(domain.KindLookup1D, lookup1DModule{})
	r.Register(domain.KindLookup2D, lookup2DModule{})
	r.Register(domain.KindMatrixMultiply, matrixMultiplyModule{})
	r.Register(domain.KindTranspose, transposeModule{})
	r.Register(domain.KindMux, muxModule{})
	r.Register(domain.KindDemux, demuxModule{})
	r.Register(domain.KindMag, magModule{})
	r.Register(domain.KindDot, dotModule{})
	r.Register(domain.KindCross, crossModule{})
	r.Register(domain.KindIf, ifModule{})
	r.Register(domain.KindCondition, conditionModule{})
	r.Register(domain.KindSignalDisplay, signalDisplayModule{logger: false})
	r.Register(domain.KindSignalLogger, signalDisplayModule{logger: true})
	r.Register(domain.KindSheetLabelSink, sheetLabelSinkModule{})
	r.Register(domain.KindSheetLabelSource, sheetLabelSourceModule{})
	r.Register(domain.KindSubsystem, subsystemModule{})
	return r
}
