// Package hello provides a guest module that writes "hello\n" to stdout
// through the WASI fd_write syscall and then returns from _start.
package hello

import _ "embed"

//go:embed hello.wasm
var program []byte

// Expected is the exact byte sequence the module writes to stdout.
const Expected = "hello\n"

func Program() []byte {
	return program
}
