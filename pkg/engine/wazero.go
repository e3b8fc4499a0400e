package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.opentelemetry.io/otel/attribute"
	"go.ptx.dk/multierrgroup"
	"golang.org/x/exp/maps"

	"github.com/wasmbed-project/wasmbed/pkg/telemetry"
)

const (
	wasmPageSize = 65536

	// maxMemoryPages is the wasm32 addressing limit, 4GiB.
	maxMemoryPages = 65536
)

// WazeroEngine creates sandboxes backed by the wazero runtime. The engine
// itself holds no state; every sandbox owns a fresh runtime so concurrent
// executions cannot observe each other.
type WazeroEngine struct{}

func NewWazeroEngine() *WazeroEngine {
	return &WazeroEngine{}
}

func (e *WazeroEngine) NewSandbox(ctx context.Context, cfg SandboxConfig) (Sandbox, error) {
	runtimeConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	// Memory limits apply in multiples of the wasm page size of 64kb, so
	// round up to the nearest page if the limit is not a multiple of it.
	if cfg.MemoryLimit > 0 {
		pageLimit := cfg.MemoryLimit / wasmPageSize
		if cfg.MemoryLimit%wasmPageSize > 0 {
			pageLimit++
		}
		if pageLimit > maxMemoryPages {
			return nil, fmt.Errorf("%w: requested memory exceeds the wasm limit (%d bytes)", ErrSandboxSetup, cfg.MemoryLimit)
		}
		runtimeConfig = runtimeConfig.WithMemoryLimitPages(uint32(pageLimit))
	}

	// Start functions are suppressed so that instantiation and invocation
	// stay separate steps; the entry point is called explicitly in Run.
	moduleConfig := wazero.NewModuleConfig().
		WithStartFunctions().
		WithArgs(cfg.Args...).
		WithSysNanosleep().
		WithSysNanotime().
		WithSysWalltime()

	if cfg.Stdin != nil {
		moduleConfig = moduleConfig.WithStdin(cfg.Stdin)
	}
	if cfg.Stdout != nil {
		moduleConfig = moduleConfig.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		moduleConfig = moduleConfig.WithStderr(cfg.Stderr)
	}

	// Bind environment variables in a consistent order.
	keys := maps.Keys(cfg.Env)
	sort.Strings(keys)
	for _, key := range keys {
		moduleConfig = moduleConfig.WithEnv(key, cfg.Env[key])
	}

	return &wazeroSandbox{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeConfig),
		config:  moduleConfig,
		logger:  log.With().Str("sandbox", cfg.Name).Logger(),
	}, nil
}

type wazeroSandbox struct {
	runtime wazero.Runtime
	config  wazero.ModuleConfig
	logger  zerolog.Logger

	// Runtime will throw an error if the same host module is instantiated
	// more than once, so guard checking and instantiating with this mutex.
	mtx sync.Mutex
}

// Run compiles, instantiates and executes the passed module, blocking
// until the guest terminates. The returned code is the guest's own exit
// status; any non-nil error is a host-side failure.
func (s *wazeroSandbox) Run(ctx context.Context, module []byte) (uint32, error) {
	ctx, span := telemetry.NewSpan(ctx, telemetry.GetTracer(), "pkg/engine.wazeroSandbox.Run")
	defer span.End()

	if err := ValidateModuleBytes(module); err != nil {
		return 0, telemetry.RecordErrorOnSpan(span)(err)
	}

	compiled, err := s.runtime.CompileModule(ctx, module)
	if err != nil {
		return 0, telemetry.RecordErrorOnSpan(span)(fmt.Errorf("%w: %s", ErrInvalidModule, err))
	}

	entryPoint, err := ResolveEntryPoint(compiled)
	if err != nil {
		return 0, telemetry.RecordErrorOnSpan(span)(err)
	}
	span.SetAttributes(attribute.String("EntryPoint", entryPoint))

	if err := s.instantiateHostModules(ctx, compiled); err != nil {
		return 0, telemetry.RecordErrorOnSpan(span)(err)
	}

	instance, err := s.runtime.InstantiateModule(ctx, compiled, s.config)
	if err != nil {
		return 0, telemetry.RecordErrorOnSpan(span)(fmt.Errorf("%w: instantiating module: %s", ErrSandboxSetup, err))
	}

	s.logger.Info().Str("entry_point", entryPoint).Msg("running guest")

	// The guest usually terminates via an exit call, which surfaces as a
	// sys.ExitError carrying the exit code. A plain return means success,
	// except for reactor-style main which may return its status as an i32.
	results, wasmErr := instance.ExportedFunction(entryPoint).Call(ctx)

	var errExit *sys.ExitError
	if errors.As(wasmErr, &errExit) {
		switch errExit.ExitCode() {
		case sys.ExitCodeContextCanceled, sys.ExitCodeDeadlineExceeded:
			// Cancellation is an extension over the synchronous contract
			// and is reported to the caller as a host-side failure.
			s.logger.Warn().Err(ctx.Err()).Msg("execution interrupted")
			return 0, telemetry.RecordErrorOnSpan(span)(ctx.Err())
		}
		s.logger.Info().Uint32("exit_code", errExit.ExitCode()).Msg("execution ended")
		return errExit.ExitCode(), nil
	}
	if wasmErr != nil {
		s.logger.Warn().Err(wasmErr).Msg("execution trapped")
		return 0, telemetry.RecordErrorOnSpan(span)(&TrapError{Cause: wasmErr})
	}

	if entryPoint == EntryPointMain && len(results) > 0 {
		code := api.DecodeU32(results[0])
		s.logger.Info().Uint32("exit_code", code).Msg("execution ended")
		return code, nil
	}

	s.logger.Info().Uint32("exit_code", 0).Msg("execution ended")
	return 0, nil
}

// instantiateHostModules provides a host module for every import namespace
// the compiled module requires. Only WASI preview1 is available; anything
// else the guest asks for is a feature this engine does not support.
func (s *wazeroSandbox) instantiateHostModules(ctx context.Context, compiled wazero.CompiledModule) error {
	required := lo.Uniq(lo.Map(compiled.ImportedFunctions(), func(def api.FunctionDefinition, _ int) string {
		moduleName, _, _ := def.Import()
		return moduleName
	}))

	var wg multierrgroup.Group
	for _, moduleName := range required {
		moduleName := moduleName
		wg.Go(func() error {
			return s.instantiateHostModule(ctx, moduleName)
		})
	}
	if err := wg.Wait(); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFeature, err)
	}
	return nil
}

func (s *wazeroSandbox) instantiateHostModule(ctx context.Context, moduleName string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.runtime.Module(moduleName) != nil {
		// Already instantiated.
		return nil
	}

	if moduleName == wasi_snapshot_preview1.ModuleName {
		_, err := wasi_snapshot_preview1.NewBuilder(s.runtime).Instantiate(ctx)
		return err
	}

	return fmt.Errorf("no host module available for import namespace %q", moduleName)
}

func (s *wazeroSandbox) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// Compile-time check that the engine satisfies the capability interface.
var _ Engine = (*WazeroEngine)(nil)
