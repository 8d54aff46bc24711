package stream

// EventType discriminates the stream event union
type EventType string

const (
	EventCreate  EventType = "create"
	EventUpdate  EventType = "update"
	EventMove    EventType = "move"
	EventDelete  EventType = "delete"
	EventLabel   EventType = "label"
	EventThink   EventType = "think"
	EventMessage EventType = "message"
)

// Event is one decoded frame. Which fields are meaningful depends on Type:
//
//	create  ShapeID, ShapeType, X, Y, Width, Height, Color, Fill, Text
//	update  ShapeID, Updates
//	move    ShapeID or ShapeIDs, X, Y
//	delete  ShapeID or ShapeIDs
//	label   ShapeID, Text
//	think   Content
//	message Content
type Event struct {
	Type      EventType      `json:"type"`
	ShapeID   string         `json:"shapeId,omitempty"`
	ShapeIDs  []string       `json:"shapeIds,omitempty"`
	ShapeType string         `json:"shapeType,omitempty"`
	X         *float64       `json:"x,omitempty"`
	Y         *float64       `json:"y,omitempty"`
	Width     *float64       `json:"width,omitempty"`
	Height    *float64       `json:"height,omitempty"`
	Color     string         `json:"color,omitempty"`
	Fill      string         `json:"fill,omitempty"`
	Text      string         `json:"text,omitempty"`
	Updates   map[string]any `json:"updates,omitempty"`
	Content   string         `json:"content,omitempty"`
}

// TargetIDs returns the wire ids a move or delete applies to
func (e Event) TargetIDs() []string {
	if len(e.ShapeIDs) > 0 {
		return e.ShapeIDs
	}
	if e.ShapeID != "" {
		return []string{e.ShapeID}
	}
	return nil
}

// IsNarration reports whether the event carries text rather than a canvas
// mutation
func (e Event) IsNarration() bool {
	return e.Type == EventThink || e.Type == EventMessage
}

// Float returns a pointer to v, for building events in code
func Float(v float64) *float64 {
	return &v
}
