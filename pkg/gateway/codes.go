package gateway

import (
	"errors"

	"github.com/wasmbed-project/wasmbed/pkg/engine"
)

// Result codes returned across the execution boundary. Values >= 0 are the
// guest program's own exit status; negative values are host-side failures.
//
// The original embedding library reported every host failure as -1 and
// never published a finer mapping, so the taxonomy below is defined here
// and is a stable compatibility surface: the numeric values must not
// change between releases. -1 is kept as the unclassified catch-all so
// existing callers that only test for it keep working.
const (
	// CodeInternal is an unclassified host-side failure.
	CodeInternal int32 = -1

	// CodeBadRequest means the request was rejected before execution:
	// an empty module buffer or an otherwise unusable input.
	CodeBadRequest int32 = -2

	// CodeInvalidModule means the buffer is not a well-formed
	// WebAssembly binary or its entry point has the wrong shape.
	CodeInvalidModule int32 = -10

	// CodeUnsupportedFeature means the module requires a capability the
	// embedded engine does not provide, such as an unknown import
	// namespace.
	CodeUnsupportedFeature int32 = -11

	// CodeNoEntryPoint means the module exports neither _start nor main.
	CodeNoEntryPoint int32 = -12

	// CodeSandboxSetup means an isolated execution context could not be
	// allocated or the module could not be instantiated into it.
	CodeSandboxSetup int32 = -20

	// CodeStreamBinding means a caller-supplied descriptor could not be
	// duplicated or bound into the sandbox.
	CodeStreamBinding int32 = -21

	// CodeGuestTrap means the guest raised an unrecoverable runtime
	// fault. The trap is contained; the host process is unaffected.
	CodeGuestTrap int32 = -30
)

// Gateway-level failure sentinels; engine-level ones live in pkg/engine.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrStreamBinding = errors.New("stream binding failed")
)

// CodeForError translates a host-side failure into its result code.
func CodeForError(err error) int32 {
	var trap *engine.TrapError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	case errors.Is(err, ErrStreamBinding):
		return CodeStreamBinding
	case errors.Is(err, engine.ErrInvalidModule):
		return CodeInvalidModule
	case errors.Is(err, engine.ErrUnsupportedFeature):
		return CodeUnsupportedFeature
	case errors.Is(err, engine.ErrNoEntryPoint):
		return CodeNoEntryPoint
	case errors.Is(err, engine.ErrSandboxSetup):
		return CodeSandboxSetup
	case errors.As(err, &trap):
		return CodeGuestTrap
	default:
		return CodeInternal
	}
}
