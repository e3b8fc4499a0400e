package gateway

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/wasmbed-project/wasmbed/pkg/util/closer"
)

// Execute runs the request on the shared default gateway.
func Execute(ctx context.Context, request Request) int32 {
	return Default().Execute(ctx, request)
}

// PythonExecute runs the request on the shared default gateway. See
// Gateway.PythonExecute for the argv[0] caller convention.
func PythonExecute(ctx context.Context, request Request) int32 {
	return Default().PythonExecute(ctx, request)
}

// ExecuteFDs mirrors the descriptor-based boundary convention: each
// descriptor is either DescriptorDefault or an open handle the caller
// keeps ownership of. Supplied descriptors are duplicated for the call
// and the duplicates released afterwards, so the caller's handles are
// never closed. The host environment is forwarded to the guest.
func ExecuteFDs(ctx context.Context, module []byte, args []string, stdinFD, stdoutFD, stderrFD int32) int32 {
	streams, err := streamsFromFDs(stdinFD, stdoutFD, stderrFD)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting execution request")
		return CodeForError(err)
	}
	defer streams.release()

	return Default().Execute(ctx, Request{
		Module: module,
		Args:   args,
		Env:    environMap(os.Environ()),
		Stdin:  streams.stdin,
		Stdout: streams.stdout,
		Stderr: streams.stderr,
	})
}

// PythonExecuteFDs is the descriptor-based form of PythonExecute.
func PythonExecuteFDs(ctx context.Context, module []byte, args []string, stdinFD, stdoutFD, stderrFD int32) int32 {
	return ExecuteFDs(ctx, module, args, stdinFD, stdoutFD, stderrFD)
}

type fdStreams struct {
	stdin  Stream
	stdout Stream
	stderr Stream
}

func streamsFromFDs(stdinFD, stdoutFD, stderrFD int32) (s fdStreams, err error) {
	defer func() {
		// Release any duplicates already made before the failure.
		if err != nil {
			s.release()
		}
	}()

	if s.stdin, err = StreamFromFD(stdinFD); err != nil {
		return s, err
	}
	if s.stdout, err = StreamFromFD(stdoutFD); err != nil {
		return s, err
	}
	s.stderr, err = StreamFromFD(stderrFD)
	return s, err
}

func (s fdStreams) release() {
	closer.CloseWithLogOnError("stdin", s.stdin)
	closer.CloseWithLogOnError("stdout", s.stdout)
	closer.CloseWithLogOnError("stderr", s.stderr)
}
