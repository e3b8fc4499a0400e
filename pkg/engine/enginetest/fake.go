// Package enginetest provides a scripted engine double so gateway behavior
// can be tested without compiling or running real WebAssembly.
package enginetest

import (
	"context"
	"sync"

	"github.com/wasmbed-project/wasmbed/pkg/engine"
)

// Fake is an engine.Engine whose sandboxes return scripted results. It
// records every sandbox configuration and module buffer it is given so
// tests can assert the gateway passed them through unmodified.
type Fake struct {
	// NewSandboxErr, if set, is returned from NewSandbox.
	NewSandboxErr error

	// RunFn, if set, scripts each execution. Otherwise Run returns
	// ExitCode and RunErr, writing Stdout to the configured writer first.
	RunFn func(cfg engine.SandboxConfig, module []byte) (uint32, error)

	ExitCode uint32
	RunErr   error
	Stdout   []byte

	mu      sync.Mutex
	configs []engine.SandboxConfig
	modules [][]byte
	closed  int
}

func (f *Fake) NewSandbox(_ context.Context, cfg engine.SandboxConfig) (engine.Sandbox, error) {
	if f.NewSandboxErr != nil {
		return nil, f.NewSandboxErr
	}

	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()

	return &fakeSandbox{fake: f, cfg: cfg}, nil
}

// Configs returns a copy of the sandbox configurations seen so far.
func (f *Fake) Configs() []engine.SandboxConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.SandboxConfig(nil), f.configs...)
}

// Modules returns a copy of the module buffers passed to Run so far.
func (f *Fake) Modules() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.modules...)
}

// Closed reports how many sandboxes have been closed.
func (f *Fake) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeSandbox struct {
	fake *Fake
	cfg  engine.SandboxConfig
}

func (s *fakeSandbox) Run(_ context.Context, module []byte) (uint32, error) {
	s.fake.mu.Lock()
	s.fake.modules = append(s.fake.modules, append([]byte(nil), module...))
	s.fake.mu.Unlock()

	if s.fake.RunFn != nil {
		return s.fake.RunFn(s.cfg, module)
	}

	if len(s.fake.Stdout) > 0 && s.cfg.Stdout != nil {
		if _, err := s.cfg.Stdout.Write(s.fake.Stdout); err != nil {
			return 0, err
		}
	}
	return s.fake.ExitCode, s.fake.RunErr
}

func (s *fakeSandbox) Close(context.Context) error {
	s.fake.mu.Lock()
	s.fake.closed++
	s.fake.mu.Unlock()
	return nil
}

var _ engine.Engine = (*Fake)(nil)
