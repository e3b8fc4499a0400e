// Package exitcode provides a guest module whose _start calls the WASI
// proc_exit syscall with a fixed status, 42 by default.
package exitcode

import (
	_ "embed"
	"fmt"
)

//go:embed exitcode.wasm
var program []byte

func Program() []byte {
	return program
}

// ProgramWithCode returns a copy of the module patched to exit with the
// passed status. The status is encoded as a single-byte LEB128 immediate,
// which limits it to [0, 64).
func ProgramWithCode(code uint8) []byte {
	if code >= 64 {
		panic(fmt.Sprintf("exit code %d does not fit a single LEB128 byte", code))
	}
	patched := append([]byte(nil), program...)
	// The i32.const immediate sits 4 bytes from the end of the binary:
	// ... 0x41 <code> 0x10 0x00 0x0b
	patched[len(patched)-4] = code
	return patched
}
