package gateway

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// DescriptorDefault is the sentinel descriptor value meaning "use the
// process's inherited default stream". Any other value is treated as an
// already-open descriptor the caller continues to own.
const DescriptorDefault int32 = -1

type streamKind int

const (
	streamDefault streamKind = iota
	streamReader
	streamWriter
	streamFile
)

// Stream selects the binding for one of the guest's standard streams. The
// zero value inherits the corresponding process stream. The sentinel
// convention used at the descriptor boundary is translated into this type
// immediately and never carried further inward.
type Stream struct {
	kind streamKind
	r    io.Reader
	w    io.Writer
	file *os.File
}

// DefaultStream inherits the corresponding process stream.
func DefaultStream() Stream {
	return Stream{}
}

// InputStream binds the guest stream to a caller-owned reader. The reader
// is borrowed for the duration of the call and never closed.
func InputStream(r io.Reader) Stream {
	return Stream{kind: streamReader, r: r}
}

// OutputStream binds the guest stream to a caller-owned writer. The writer
// is borrowed for the duration of the call and never closed.
func OutputStream(w io.Writer) Stream {
	return Stream{kind: streamWriter, w: w}
}

// StreamFromFD translates a descriptor from the boundary convention:
// DescriptorDefault inherits the process stream, anything else is
// duplicated so the caller's descriptor is never closed or consumed.
// The caller of Close owns the duplicate.
func StreamFromFD(fd int32) (Stream, error) {
	if fd < 0 {
		return DefaultStream(), nil
	}

	dupFD, err := unix.Dup(int(fd))
	if err != nil {
		return Stream{}, fmt.Errorf("%w: duplicating descriptor %d: %s", ErrStreamBinding, fd, err)
	}

	return Stream{
		kind: streamFile,
		file: os.NewFile(uintptr(dupFD), fmt.Sprintf("fd/%d", fd)),
	}, nil
}

// Close releases the duplicated descriptor, if this stream owns one.
// Caller-owned readers, writers and inherited defaults are untouched.
func (s Stream) Close() error {
	if s.kind == streamFile && s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s Stream) input(fallback io.Reader) io.Reader {
	switch s.kind {
	case streamReader:
		return s.r
	case streamFile:
		return s.file
	default:
		return fallback
	}
}

func (s Stream) output(fallback io.Writer) io.Writer {
	switch s.kind {
	case streamWriter:
		return s.w
	case streamFile:
		return s.file
	default:
		return fallback
	}
}
