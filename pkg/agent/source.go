// Package agent sends drawing requests to an agent and returns the raw event
// stream it answers with.
package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/chat"
	"github.com/killallgit/easel/pkg/config"
	"github.com/killallgit/easel/pkg/reconcile"
	"github.com/killallgit/easel/pkg/shapeid"
	"github.com/killallgit/easel/pkg/shapekind"
	"github.com/killallgit/easel/pkg/stream"
)

// Source opens an event stream for a request. The caller must close the
// returned body.
type Source interface {
	Stream(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Request is one user turn plus the context the agent needs to answer it
type Request struct {
	Message string
	History []chat.Message
	Shapes  []WireShape
}

// WireShape describes an existing canvas shape using its wire id
type WireShape struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Color  string  `json:"color,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Turn is a transcript entry as sent to the agent
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turns returns the user and assistant entries of the request history
func (r Request) Turns() []Turn {
	turns := make([]Turn, 0, len(r.History))
	for _, msg := range r.History {
		if msg.Role != chat.RoleUser && msg.Role != chat.RoleAssistant {
			continue
		}
		if msg.IsEmpty() {
			continue
		}
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// DescribeCanvas lists the shapes on the canvas under their wire ids, minting
// ids for shapes the agent has not seen yet.
func DescribeCanvas(lister canvas.Lister, ids *shapeid.Transform) []WireShape {
	shapes := lister.Shapes()
	out := make([]WireShape, 0, len(shapes))
	for _, s := range shapes {
		ws := WireShape{
			ID:   ids.ToWireID(s.ID),
			Type: s.Type,
			X:    s.X,
			Y:    s.Y,
			Text: canvas.TextOf(s),
		}
		if shapekind.Category(s.Type).HasSize() {
			if geo, ok := s.Props["geo"].(string); ok {
				ws.Type = geo
			}
			r := reconcile.Footprint(s)
			ws.Width, ws.Height = r.W, r.H
		}
		if color, ok := s.Props["color"].(string); ok {
			ws.Color = color
		}
		out = append(out, ws)
	}
	return out
}

// DecoderOptions returns the decoder options a source's output needs
func DecoderOptions(src Source) []stream.DecoderOption {
	if _, ok := src.(*ModelSource); ok {
		return []stream.DecoderOption{stream.WithBareJSON()}
	}
	return nil
}

// NewSource builds the source selected by cfg
func NewSource(cfg config.AgentConfig) (Source, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderHTTP, "":
		return NewHTTPSource(cfg.URL, WithTimeout(cfg.Timeout)), nil
	case config.ProviderOllama:
		return NewOllamaSource(cfg.URL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
}
