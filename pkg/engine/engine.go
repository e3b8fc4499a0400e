// Package engine abstracts the embedded WebAssembly engine behind a small
// capability interface so the gateway can run against a real engine or a
// test double. The default implementation is backed by wazero.
package engine

import (
	"context"
	"io"
	"sync"
)

// SandboxConfig describes the I/O surface and argument vector bound into a
// single sandboxed execution. Streams left nil use the process defaults.
type SandboxConfig struct {
	// Name identifies the execution in logs and traces only; it has no
	// effect on guest behavior.
	Name string

	// Args is the guest argument vector, passed through verbatim. It may
	// be empty; callers wanting a conventional argv[0] must supply one.
	Args []string

	// Env is the guest environment. Entries are bound in sorted key order
	// so instantiation is deterministic.
	Env map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimit caps guest linear memory, in bytes. Zero means the
	// engine default. Rounded up to the wasm page size.
	MemoryLimit uint64
}

// Engine creates isolated sandboxes. Implementations must be safe for
// concurrent use; sandboxes must not share mutable state with each other.
type Engine interface {
	NewSandbox(ctx context.Context, cfg SandboxConfig) (Sandbox, error)
}

// Sandbox is a single-use, isolated execution context. Run blocks until
// the guest terminates and reports the guest's own exit status; host-side
// failures are returned as errors for the caller to classify.
type Sandbox interface {
	Run(ctx context.Context, module []byte) (uint32, error)
	Close(ctx context.Context) error
}

var (
	defaultEngine     Engine
	defaultEngineOnce sync.Once
)

// Default returns the process-wide engine, initializing it on first use.
func Default() Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewWazeroEngine()
	})
	return defaultEngine
}
