// Package fixtures holds canned agent streams for tests
package fixtures

import "strings"

// Frame wraps a JSON payload as a "data:" line
func Frame(payload string) string {
	return "data: " + payload + "\n"
}

// Stream joins payloads into a framed body ending with the done sentinel
func Stream(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.WriteString(Frame(p))
	}
	b.WriteString(Frame("[DONE]"))
	return b.String()
}

// NDJSON joins payloads one per line, the way a local model prints them
func NDJSON(payloads ...string) string {
	return strings.Join(payloads, "\n") + "\n"
}

// Canned events
const (
	CreateRectangle = `{"type":"create","shapeId":"shape1","shapeType":"rectangle","x":0,"y":0}`
	CreateEllipse   = `{"type":"create","shapeId":"shape2","shapeType":"ellipse","x":200,"y":0}`
	LabelRectangle  = `{"type":"label","shapeId":"shape1","text":"Start"}`
	Thinking        = `{"type":"think","content":"Two shapes side by side."}`
	Reply           = `{"type":"message","content":"Drew two shapes."}`
)

// TwoShapes is a complete framed stream drawing a labelled rectangle and an
// ellipse
var TwoShapes = Stream(Thinking, CreateRectangle, CreateEllipse, LabelRectangle, Reply)
