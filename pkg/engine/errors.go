package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for host-side failure classification. The gateway maps
// each of these to a distinct negative result code.
var (
	// ErrInvalidModule means the buffer is not a well-formed WebAssembly
	// binary, or its entry point has the wrong shape.
	ErrInvalidModule = errors.New("invalid wasm module")

	// ErrUnsupportedFeature means the module imports a namespace this
	// engine provides no host module for.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrNoEntryPoint means the module exports neither _start nor main.
	ErrNoEntryPoint = errors.New("no entry point")

	// ErrSandboxSetup means an isolated execution context could not be
	// allocated or the module could not be instantiated into it.
	ErrSandboxSetup = errors.New("sandbox setup failed")
)

// TrapError reports an unrecoverable runtime fault raised by the guest,
// such as an out-of-bounds access or an unreachable instruction. The trap
// is fully contained; the host process is unaffected.
type TrapError struct {
	Cause error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("guest trap: %s", e.Cause)
}

func (e *TrapError) Unwrap() error {
	return e.Cause
}
