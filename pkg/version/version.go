// Package version exposes the build identity of the embedded runtime.
package version

import "fmt"

// Runtime version information.
const (
	// Number is the semantic version of this runtime build.
	Number = "0.2.0"

	// Engine identifies the WebAssembly engine backing executions.
	Engine = "wazero"

	// SourceURL is the repository URL for this runtime.
	SourceURL = "https://github.com/wasmbed-project/wasmbed"
)

// descriptor is computed once at process start and never changes, so
// Description is safe to call at any time and from any goroutine.
var descriptor = fmt.Sprintf("Wasmbed Runtime v%s (%s)", Number, Engine)

// Description returns a static, process-lifetime string identifying this
// runtime build. Repeated calls return the same value.
func Description() string {
	return descriptor
}

// TracerName returns the name used to register this module's otel tracer.
func TracerName() string {
	return fmt.Sprintf("wasmbed/%s", Number)
}
