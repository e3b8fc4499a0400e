package engine

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Entry point conventions accepted by the engine. WASI command modules
// export _start; reactor-style modules export main returning an i32.
const (
	EntryPointStart = "_start"
	EntryPointMain  = "main"
)

var (
	wasmMagic    = []byte{0x00, 0x61, 0x73, 0x6d}
	wasmVersion1 = []byte{0x01, 0x00, 0x00, 0x00}
)

// ValidateModuleBytes rejects buffers that cannot be a WebAssembly binary
// before handing them to the compiler. The full binary format is validated
// by the engine during compilation; this check exists so obviously broken
// inputs fail fast with a classified error.
func ValidateModuleBytes(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty module buffer", ErrInvalidModule)
	}
	if len(b) < 8 {
		return fmt.Errorf("%w: truncated preamble (%d bytes)", ErrInvalidModule, len(b))
	}
	if !bytes.Equal(b[:4], wasmMagic) {
		return fmt.Errorf("%w: missing magic number", ErrInvalidModule)
	}
	if !bytes.Equal(b[4:8], wasmVersion1) {
		return fmt.Errorf("%w: unsupported binary version", ErrInvalidModule)
	}
	return nil
}

// ResolveEntryPoint returns the name of the exported function to invoke
// for the passed module: _start if present, otherwise main. The resolved
// function's signature is checked before it is reported as usable.
func ResolveEntryPoint(module wazero.CompiledModule) (string, error) {
	exports := module.ExportedFunctions()

	if _, ok := exports[EntryPointStart]; ok {
		err := ValidateModuleHasFunction(module, EntryPointStart, []api.ValueType{}, []api.ValueType{})
		if err != nil {
			return "", err
		}
		return EntryPointStart, nil
	}

	if def, ok := exports[EntryPointMain]; ok {
		if len(def.ParamTypes()) != 0 {
			return "", fmt.Errorf("%w: function '%s' should take no parameters", ErrInvalidModule, EntryPointMain)
		}
		results := def.ResultTypes()
		if len(results) > 1 || (len(results) == 1 && results[0] != api.ValueTypeI32) {
			return "", fmt.Errorf("%w: function '%s' should return nothing or one i32", ErrInvalidModule, EntryPointMain)
		}
		return EntryPointMain, nil
	}

	names := lo.Keys(exports)
	sort.Strings(names)
	return "", fmt.Errorf("%w: module exports [%s]", ErrNoEntryPoint, strings.Join(names, " "))
}

// ValidateModuleHasFunction returns an error if the passed module does not
// contain an exported function with the passed name, parameters and return
// values.
func ValidateModuleHasFunction(
	module wazero.CompiledModule,
	name string,
	parameters []api.ValueType,
	results []api.ValueType,
) error {
	function, ok := module.ExportedFunctions()[name]
	if !ok {
		return fmt.Errorf("%w: function '%s' required but no export with that name was found", ErrNoEntryPoint, name)
	}

	if len(function.ParamTypes()) != len(parameters) {
		return fmt.Errorf("%w: function '%s' should take %d parameters", ErrInvalidModule, name, len(parameters))
	}
	for i := range parameters {
		if parameters[i] != function.ParamTypes()[i] {
			return fmt.Errorf("%w: function '%s': expected param %d to have type %v", ErrInvalidModule, name, i, parameters[i])
		}
	}

	if len(function.ResultTypes()) != len(results) {
		return fmt.Errorf("%w: function '%s' should return %d results", ErrInvalidModule, name, len(results))
	}
	for i := range results {
		if results[i] != function.ResultTypes()[i] {
			return fmt.Errorf("%w: function '%s': expected result %d to have type %v", ErrInvalidModule, name, i, results[i])
		}
	}

	return nil
}
