// Package canvas defines the editor collaborator the reconciler mutates and
// ships an in-memory Document implementing it.
package canvas

import "errors"

var (
	// ErrShapeNotFound is returned when an operation targets a missing shape
	ErrShapeNotFound = errors.New("shape not found")

	// ErrShapeExists is returned when creating a shape whose id is taken
	ErrShapeExists = errors.New("shape already exists")

	// ErrInvalidShape is returned when a shape descriptor fails validation
	ErrInvalidShape = errors.New("invalid shape")
)

// Shape is a shape record as stored by the canvas
type Shape struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	ParentID string         `json:"parentId"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Props    map[string]any `json:"props"`
}

// ShapePartial is a partial update. Nil coordinates are left unchanged and
// Props are merged key by key into the existing props.
type ShapePartial struct {
	ID    string
	Type  string
	X     *float64
	Y     *float64
	Props map[string]any
}

// Editor is the canvas collaborator driven by the reconciler
type Editor interface {
	CreateShape(shape Shape) error
	UpdateShape(partial ShapePartial) error
	DeleteShape(id string) error
	GetShape(id string) (Shape, bool)
	CurrentPageID() string
	NewShapeID() string
}

// Lister is implemented by editors that can enumerate the current page
type Lister interface {
	Shapes() []Shape
}
