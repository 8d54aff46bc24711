package stream

import (
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used when none is configured
const DefaultChunkSize = 4096

// Chunk is one read from the transport: either data or a terminal error
type Chunk struct {
	Data []byte
	Err  error
}

// ReadChunks reads r on its own goroutine so a consumer can select on ctx
// while a read is blocked. The channel closes after io.EOF (which is not
// delivered), after the first error, or when ctx is done. Closing r is the
// caller's job; it is what unblocks a pending Read after cancellation.
func ReadChunks(ctx context.Context, r io.Reader, size int) <-chan Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for {
			buf := make([]byte, size)
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case out <- Chunk{Data: buf[:n]}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				select {
				case out <- Chunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
	return out
}
