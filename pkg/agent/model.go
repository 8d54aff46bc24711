package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/killallgit/easel/pkg/chat"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/shapekind"
)

// SystemPrompt teaches a model the event protocol
var SystemPrompt = `You draw on a whiteboard by printing events, one JSON object per line and nothing else.

Event types:
{"type":"think","content":"..."}                       private reasoning, shown dimmed
{"type":"create","shapeId":"shape1","shapeType":"rectangle","x":0,"y":0,"width":160,"height":80,"color":"blue","fill":"semi","text":"..."}
{"type":"update","shapeId":"shape1","updates":{"color":"red","text":"...","x":10}}
{"type":"move","shapeIds":["shape1","shape2"],"x":100,"y":100}
{"type":"delete","shapeIds":["shape1"]}
{"type":"label","shapeId":"shape1","text":"..."}
{"type":"message","content":"..."}                     what you tell the user

Shape types: ` + kindList() + `.
Colors: black, grey, violet, blue, light-blue, yellow, orange, green, light-green, red, light-red, white.
Fills: none, semi, solid, pattern.

Name new shapes shape<N> with numbers not used on the canvas yet. Refer to existing shapes by the ids you are given.
Leave space between shapes. Finish with a single message event.`

func kindList() string {
	names := make([]string, 0, len(shapekind.All))
	for _, k := range shapekind.All {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// ModelSource asks a langchaingo model to print events directly
type ModelSource struct {
	model  llms.Model
	system string
}

// NewModelSource wraps model
func NewModelSource(model llms.Model) *ModelSource {
	return &ModelSource{model: model, system: SystemPrompt}
}

// NewOllamaSource builds a model source on an Ollama server
func NewOllamaSource(serverURL, model string) (*ModelSource, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama LLM: %w", err)
	}
	return NewModelSource(llm), nil
}

// Stream starts generation and returns its output as it is produced. Closing
// the body stops generation.
func (m *ModelSource) Stream(ctx context.Context, req Request) (io.ReadCloser, error) {
	messages, err := m.messages(req)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		var last byte = '\n'
		_, err := m.model.GenerateContent(ctx, messages,
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) > 0 {
					last = chunk[len(chunk)-1]
				}
				_, err := pw.Write(chunk)
				return err
			}))
		if err != nil {
			logger.Debug("Model generation ended: %v", err)
			pw.CloseWithError(fmt.Errorf("model generation failed: %w", err))
			return
		}
		// Models rarely end on a newline; terminate the final event line.
		if last != '\n' {
			if _, err := pw.Write([]byte{'\n'}); err != nil {
				return
			}
		}
		pw.Close()
	}()
	return pr, nil
}

func (m *ModelSource) messages(req Request) ([]llms.MessageContent, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, m.system),
	}
	for _, turn := range req.Turns() {
		role := schema.ChatMessageTypeHuman
		if turn.Role == chat.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}

	var b strings.Builder
	if len(req.Shapes) > 0 {
		canvasJSON, err := json.Marshal(req.Shapes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode canvas: %w", err)
		}
		b.WriteString("Shapes on the canvas:\n")
		b.Write(canvasJSON)
		b.WriteString("\n\n")
	}
	b.WriteString(req.Message)
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, b.String()))
	return messages, nil
}
