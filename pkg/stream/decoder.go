package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/killallgit/easel/pkg/logger"
)

const (
	// DataPrefix marks a frame that carries an event
	DataPrefix = "data:"

	// DoneSentinel is the payload that ends a stream
	DoneSentinel = "[DONE]"
)

// DecoderStats counts what a decoder has seen
type DecoderStats struct {
	Frames    int // data frames, including the sentinel
	Events    int // frames decoded into events
	Malformed int // frames that failed to parse, plus a discarded tail
	Ignored   int // non-blank lines that were not data frames
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithBareJSON makes the decoder accept unprefixed lines that start with "{".
// Local models print plain NDJSON more reliably than SSE framing.
func WithBareJSON() DecoderOption {
	return func(d *Decoder) {
		d.bareJSON = true
	}
}

// Decoder turns newline framed "data: <json>" text into events. Input may be
// split anywhere, including inside a multi-byte rune; incomplete lines wait
// in the buffer for the next chunk.
type Decoder struct {
	buf      []byte
	done     bool
	bareJSON bool
	stats    DecoderStats
}

// NewDecoder creates a decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends a chunk and returns the events completed by it, in order.
// done is true once the sentinel has been seen; everything after it,
// including later chunks, is dropped.
func (d *Decoder) Feed(chunk []byte) (events []Event, done bool) {
	if d.done {
		return nil, true
	}

	d.buf = append(d.buf, chunk...)
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]

		ev, ok, end := d.decodeLine(line)
		if end {
			d.done = true
			d.buf = nil
			return events, true
		}
		if ok {
			events = append(events, ev)
		}
	}

	// Copy the tail so the consumed prefix can be collected
	d.buf = append([]byte(nil), d.buf...)
	return events, false
}

// Flush returns and clears any unterminated tail. A non-blank tail counts as
// a malformed frame.
func (d *Decoder) Flush() string {
	rest := string(d.buf)
	d.buf = nil
	if strings.TrimSpace(rest) != "" {
		d.stats.Malformed++
	}
	return rest
}

// Done reports whether the sentinel has been seen
func (d *Decoder) Done() bool {
	return d.done
}

// Stats returns counters for the frames seen so far
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

func (d *Decoder) decodeLine(line string) (Event, bool, bool) {
	line = strings.TrimSuffix(line, "\r")

	payload, isData := strings.CutPrefix(line, DataPrefix)
	switch {
	case isData:
		payload = strings.TrimSpace(payload)
	case d.bareJSON && strings.HasPrefix(strings.TrimSpace(line), "{"):
		payload = strings.TrimSpace(line)
	default:
		if strings.TrimSpace(line) != "" {
			d.stats.Ignored++
			logger.Debug("Ignoring non-data line: %.80s", line)
		}
		return Event{}, false, false
	}

	d.stats.Frames++
	if payload == DoneSentinel {
		return Event{}, false, true
	}

	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		d.stats.Malformed++
		logger.Warn("Skipping malformed frame: %v (%.80s)", err, payload)
		return Event{}, false, false
	}

	d.stats.Events++
	return ev, true, false
}
