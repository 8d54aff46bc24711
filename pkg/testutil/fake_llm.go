package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeLLM is an llms.Model that streams canned responses. Each call streams
// the next response, cycling, split into the configured chunks.
type FakeLLM struct {
	mu           sync.Mutex
	responses    [][]string
	currentIndex int
	callCount    int
	lastMessages []llms.MessageContent
	errorOnCall  int // If > 0, fail this call after streaming its response
	errorMessage string
}

// NewFakeLLM creates a fake whose responses each stream as one chunk
func NewFakeLLM(responses ...string) *FakeLLM {
	f := &FakeLLM{}
	for _, r := range responses {
		f.responses = append(f.responses, []string{r})
	}
	return f
}

// NewStreamingFakeLLM creates a fake with a single response streamed as chunks
func NewStreamingFakeLLM(chunks ...string) *FakeLLM {
	return &FakeLLM{responses: [][]string{chunks}}
}

// Call implements the LLM interface
func (f *FakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// GenerateContent streams the next response through the streaming func, if
// one is set, and returns it
func (f *FakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	f.callCount++
	f.lastMessages = messages
	call := f.callCount
	failCall, failMessage := f.errorOnCall, f.errorMessage
	if len(f.responses) == 0 {
		f.mu.Unlock()
		return nil, fmt.Errorf("no responses configured")
	}
	chunks := f.responses[f.currentIndex]
	f.currentIndex = (f.currentIndex + 1) % len(f.responses)
	f.mu.Unlock()

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	var b strings.Builder
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.StreamingFunc != nil {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
		b.WriteString(chunk)
	}

	if failCall > 0 && call == failCall {
		if failMessage != "" {
			return nil, fmt.Errorf("%s", failMessage)
		}
		return nil, fmt.Errorf("fake error on call %d", call)
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: b.String()}},
	}, nil
}

// AddResponse adds a response streamed as the given chunks
func (f *FakeLLM) AddResponse(chunks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, chunks)
}

// SetErrorOnCall makes call number callNumber fail after streaming
func (f *FakeLLM) SetErrorOnCall(callNumber int, errorMessage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorOnCall = callNumber
	f.errorMessage = errorMessage
}

// GetCallCount returns the number of generations started
func (f *FakeLLM) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// GetLastMessages returns the messages of the last generation
func (f *FakeLLM) GetLastMessages() []llms.MessageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMessages
}

// TextOf joins the text parts of a message
func TextOf(m llms.MessageContent) string {
	var b strings.Builder
	for _, part := range m.Parts {
		if t, ok := part.(llms.TextContent); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
