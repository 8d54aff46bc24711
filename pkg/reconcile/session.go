package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/metrics"
	"github.com/killallgit/easel/pkg/process"
	"github.com/killallgit/easel/pkg/shapeid"
	"github.com/killallgit/easel/pkg/stream"
)

// ErrStreamActive is returned when a session is asked to start a stream, or
// reset, while another stream is still being applied.
var ErrStreamActive = errors.New("a stream is already being applied")

// Handler observes a running stream. Callbacks run on the goroutine that
// called Run.
type Handler interface {
	OnApplied(description string)
	OnThinking(text string)
	OnMessage(text string)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	AppliedFunc  func(description string)
	ThinkingFunc func(text string)
	MessageFunc  func(text string)
}

func (h HandlerFuncs) OnApplied(description string) {
	if h.AppliedFunc != nil {
		h.AppliedFunc(description)
	}
}

func (h HandlerFuncs) OnThinking(text string) {
	if h.ThinkingFunc != nil {
		h.ThinkingFunc(text)
	}
}

func (h HandlerFuncs) OnMessage(text string) {
	if h.MessageFunc != nil {
		h.MessageFunc(text)
	}
}

// Result summarises one consumed stream
type Result struct {
	State    process.State
	Applied  []string
	Message  string
	Thinking string
	Stats    stream.DecoderStats
	Duration time.Duration
}

// Session consumes agent streams into one editor. The wire id mapping lives
// as long as the session so later streams can refer to shapes created by
// earlier ones.
type Session struct {
	editor      canvas.Editor
	ids         *shapeid.Transform
	applier     *Applier
	chunkSize   int
	decoderOpts []stream.DecoderOption
	applierOpts []ApplierOption

	mu    sync.Mutex
	state process.State
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithChunkSize sets the transport read size
func WithChunkSize(n int) SessionOption {
	return func(s *Session) {
		s.chunkSize = n
	}
}

// WithDecoderOptions passes options to every stream decoder
func WithDecoderOptions(opts ...stream.DecoderOption) SessionOption {
	return func(s *Session) {
		s.decoderOpts = append(s.decoderOpts, opts...)
	}
}

// WithApplierOptions configures the session's applier
func WithApplierOptions(opts ...ApplierOption) SessionOption {
	return func(s *Session) {
		s.applierOpts = append(s.applierOpts, opts...)
	}
}

// NewSession creates an idle session drawing into editor
func NewSession(editor canvas.Editor, opts ...SessionOption) *Session {
	s := &Session{
		editor:    editor,
		chunkSize: stream.DefaultChunkSize,
		state:     process.StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = shapeid.New(editor)
	s.applier = NewApplier(editor, s.ids, s.applierOpts...)
	return s
}

// State returns the state of the current or last stream
func (s *Session) State() process.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IDs returns the session's wire id mapping
func (s *Session) IDs() *shapeid.Transform {
	return s.ids
}

// Reset forgets every wire id mapping. Shapes already on the canvas stay.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == process.StateReceiving {
		return ErrStreamActive
	}
	s.ids.Reset()
	s.state = process.StateIdle
	return nil
}

// Run consumes body until it ends, a [DONE] frame arrives, ctx is done or
// the transport fails, applying events to the editor as they decode.
//
// Cancellation yields StateAborted and a nil error. A transport failure or
// deadline yields StateErrored and the cause. Changes applied before either
// are kept. The caller owns body and should close it once Run returns.
func (s *Session) Run(ctx context.Context, body io.Reader, h Handler) (Result, error) {
	if h == nil {
		h = HandlerFuncs{}
	}
	if err := s.begin(); err != nil {
		return Result{State: process.StateReceiving}, err
	}

	start := time.Now()
	dec := stream.NewDecoder(s.decoderOpts...)
	run := &runState{handler: h}

	readCtx, stop := context.WithCancel(ctx)
	defer stop()
	chunks := stream.ReadChunks(readCtx, body, s.chunkSize)

	state, err := s.consume(ctx, dec, chunks, run)

	res := Result{
		State:    state,
		Applied:  run.applied,
		Message:  run.message.String(),
		Thinking: run.thinking.String(),
		Stats:    dec.Stats(),
		Duration: time.Since(start),
	}
	s.end(res)

	switch state {
	case process.StateErrored:
		logger.Error("Stream failed after %d change(s): %v", len(res.Applied), err)
	case process.StateAborted:
		logger.Info("Stream cancelled after %d change(s)", len(res.Applied))
	default:
		logger.Debug("Stream finished: %d change(s), %d frame(s) in %s", len(res.Applied), res.Stats.Frames, res.Duration)
	}
	return res, err
}

type runState struct {
	handler  Handler
	applied  []string
	message  strings.Builder
	thinking strings.Builder
}

func (s *Session) consume(ctx context.Context, dec *stream.Decoder, chunks <-chan stream.Chunk, run *runState) (process.State, error) {
	for {
		select {
		case <-ctx.Done():
			return interrupted(ctx.Err())

		case c, ok := <-chunks:
			if !ok {
				if err := ctx.Err(); err != nil {
					return interrupted(err)
				}
				if tail := dec.Flush(); strings.TrimSpace(tail) != "" {
					logger.Warn("Discarding %d byte(s) of unterminated frame at end of stream", len(tail))
				}
				return process.StateFinished, nil
			}
			if c.Err != nil {
				if err := ctx.Err(); err != nil {
					return interrupted(err)
				}
				return process.StateErrored, fmt.Errorf("stream read failed: %w", c.Err)
			}

			events, done := dec.Feed(c.Data)
			for _, ev := range events {
				if err := ctx.Err(); err != nil {
					return interrupted(err)
				}
				s.handle(ev, run)
			}
			if done {
				return process.StateFinished, nil
			}
		}
	}
}

func (s *Session) handle(ev stream.Event, run *runState) {
	switch ev.Type {
	case stream.EventMessage:
		run.message.WriteString(ev.Content)
		run.handler.OnMessage(ev.Content)
	case stream.EventThink:
		run.thinking.WriteString(ev.Content)
		run.handler.OnThinking(ev.Content)
	default:
		if desc, ok := s.applier.Apply(ev); ok {
			run.applied = append(run.applied, desc)
			run.handler.OnApplied(desc)
		}
	}
}

func interrupted(err error) (process.State, error) {
	if errors.Is(err, context.Canceled) {
		return process.StateAborted, nil
	}
	return process.StateErrored, fmt.Errorf("stream interrupted: %w", err)
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(process.StateReceiving) {
		return ErrStreamActive
	}
	s.state = process.StateReceiving
	metrics.ActiveStreams.Inc()
	return nil
}

func (s *Session) end(res Result) {
	s.mu.Lock()
	s.state = res.State
	s.mu.Unlock()

	metrics.ActiveStreams.Dec()
	metrics.StreamsCompleted.WithLabelValues(res.State.String()).Inc()
	metrics.StreamDuration.Observe(res.Duration.Seconds())
	metrics.FramesDecoded.WithLabelValues("event").Add(float64(res.Stats.Events))
	metrics.FramesDecoded.WithLabelValues("malformed").Add(float64(res.Stats.Malformed))
	metrics.FramesDecoded.WithLabelValues("ignored").Add(float64(res.Stats.Ignored))
}
