// Package noop provides a guest module that exports a _start function
// which immediately returns, exiting with status 0. It imports nothing.
package noop

import _ "embed"

//go:embed noop.wasm
var program []byte

func Program() []byte {
	return program
}
