// Package gateway exposes the host-execution boundary of the embedded
// WebAssembly runtime: hand in a module image, an argument vector and
// three optional stream bindings, get back a single signed result code.
//
// Calls are synchronous and blocking. Every invocation runs in its own
// sandbox; no state leaks between calls, and the gateway never retains
// the module buffer or the supplied streams past the call.
package gateway

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/atomic"

	"github.com/wasmbed-project/wasmbed/pkg/engine"
	"github.com/wasmbed-project/wasmbed/pkg/telemetry"
	"github.com/wasmbed-project/wasmbed/pkg/util/closer"
	"github.com/wasmbed-project/wasmbed/pkg/version"
)

// Request carries everything bound into one execution. The module buffer
// and any supplied streams are borrowed for the duration of the call only.
type Request struct {
	// Module is the binary-encoded guest program. Read-only; never
	// mutated or retained.
	Module []byte

	// Args is the guest argument vector, passed through verbatim. It may
	// be empty; callers wanting a conventional argv[0] must prepend one
	// themselves.
	Args []string

	// Env is the guest environment.
	Env map[string]string

	// Stream bindings; zero values inherit the process streams. Supplied
	// handles stay open and caller-owned after the call returns.
	Stdin  Stream
	Stdout Stream
	Stderr Stream

	// MemoryLimit caps guest linear memory in bytes; zero means the
	// engine default.
	MemoryLimit uint64

	// Name identifies the execution in logs and traces. Defaults to a
	// fresh UUID.
	Name string
}

// Gateway executes guest modules against an injected engine. Safe for
// concurrent use; concurrent calls are fully independent.
type Gateway struct {
	engine engine.Engine
	active *atomic.Int64
}

type Option func(*Gateway)

// WithEngine swaps the backing engine, typically for a test double.
func WithEngine(e engine.Engine) Option {
	return func(g *Gateway) {
		g.engine = e
	}
}

func New(opts ...Option) *Gateway {
	g := &Gateway{active: atomic.NewInt64(0)}
	for _, opt := range opts {
		opt(g)
	}
	if g.engine == nil {
		g.engine = engine.Default()
	}
	return g
}

var (
	defaultGateway     *Gateway
	defaultGatewayOnce sync.Once
)

// Default returns the shared process-wide gateway.
func Default() *Gateway {
	defaultGatewayOnce.Do(func() {
		defaultGateway = New()
	})
	return defaultGateway
}

// Execute runs the guest module and blocks until it terminates. The
// result is the guest's own exit status when non-negative, or one of the
// negative codes documented in codes.go on host-side failure. Failures
// are always recovered locally; Execute never panics across the boundary.
func (g *Gateway) Execute(ctx context.Context, request Request) int32 {
	name := request.Name
	if name == "" {
		name = uuid.NewString()
	}
	logger := log.With().Str("execution", name).Logger()
	ctx = logger.WithContext(ctx)

	ctx, span := telemetry.NewSpan(ctx, telemetry.GetTracer(), "pkg/gateway.Gateway.Execute")
	span.SetAttributes(attribute.Int("ModuleBytes", len(request.Module)))
	defer span.End()

	status, err := telemetry.RecordErrorOnSpanTwo[uint32](span)(g.execute(ctx, name, request))
	if err != nil {
		code := CodeForError(err)
		logger.Warn().Err(err).Int32("code", code).Msg("execution failed")
		return code
	}

	return clampExitStatus(logger, status)
}

// PythonExecute runs an interpreter guest image. It is sugar over Execute
// with identical validation, sandboxing and result semantics, kept as a
// distinct entry point for boundary compatibility. By convention the
// guest inspects argv[0], so callers should prepend a program-name
// argument themselves; the argument vector is never rewritten here.
func (g *Gateway) PythonExecute(ctx context.Context, request Request) int32 {
	return g.Execute(ctx, request)
}

// Active reports how many executions are currently in flight.
func (g *Gateway) Active() int64 {
	return g.active.Load()
}

func (g *Gateway) execute(ctx context.Context, name string, request Request) (uint32, error) {
	if len(request.Module) == 0 {
		return 0, fmt.Errorf("%w: empty module buffer", ErrBadRequest)
	}

	sandbox, err := g.engine.NewSandbox(ctx, engine.SandboxConfig{
		Name:        name,
		Args:        request.Args,
		Env:         request.Env,
		Stdin:       request.Stdin.input(os.Stdin),
		Stdout:      request.Stdout.output(os.Stdout),
		Stderr:      request.Stderr.output(os.Stderr),
		MemoryLimit: request.MemoryLimit,
	})
	if err != nil {
		return 0, err
	}
	defer closer.ContextCloserWithLogOnError(ctx, "sandbox", sandbox)

	g.active.Inc()
	defer g.active.Dec()

	return sandbox.Run(ctx, request.Module)
}

// clampExitStatus narrows the engine's status to the signed boundary type.
// Negative values are reserved for host failures, so the rare guest exit
// status above MaxInt32 is clamped rather than allowed to alias them.
func clampExitStatus(logger zerolog.Logger, status uint32) int32 {
	if status > math.MaxInt32 {
		logger.Warn().Uint32("exit_code", status).Msg("guest exit status exceeds int32 range, clamping")
		return math.MaxInt32
	}
	return int32(status)
}

// Version returns the static descriptor identifying the embedded engine
// build. Safe to call at any time, concurrently with executions.
func Version() string {
	return version.Description()
}

// environMap converts os.Environ form into the Request env map.
func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}
