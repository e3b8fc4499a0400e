// Package trap provides a guest module whose _start executes the
// unreachable instruction, faulting immediately.
package trap

import _ "embed"

//go:embed trap.wasm
var program []byte

func Program() []byte {
	return program
}
