package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	return 0, r.err
}

func TestReadChunks(t *testing.T) {
	t.Run("should deliver data in chunks and close on EOF", func(t *testing.T) {
		var got strings.Builder
		count := 0
		for c := range ReadChunks(context.Background(), strings.NewReader("abcdefghij"), 4) {
			require.NoError(t, c.Err)
			got.Write(c.Data)
			count++
		}
		assert.Equal(t, "abcdefghij", got.String())
		assert.Equal(t, 3, count)
	})

	t.Run("should deliver transport errors", func(t *testing.T) {
		boom := errors.New("connection reset")
		r := &failingReader{data: []byte("partial"), err: boom}

		var chunks []Chunk
		for c := range ReadChunks(context.Background(), r, 0) {
			chunks = append(chunks, c)
		}
		require.Len(t, chunks, 2)
		assert.Equal(t, "partial", string(chunks[0].Data))
		assert.ErrorIs(t, chunks[1].Err, boom)
	})

	t.Run("should stop delivering after cancellation", func(t *testing.T) {
		pr, pw := io.Pipe()
		ctx, cancel := context.WithCancel(context.Background())
		chunks := ReadChunks(ctx, pr, 16)

		go pw.Write([]byte("first"))
		first := <-chunks
		assert.Equal(t, "first", string(first.Data))

		cancel()
		pr.Close()

		deadline := time.After(2 * time.Second)
		for {
			select {
			case c, ok := <-chunks:
				if !ok {
					return
				}
				assert.Empty(t, c.Data)
			case <-deadline:
				t.Fatal("channel was not closed after cancellation")
			}
		}
	})
}
