package canvas

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DefaultPageID is the page every new Document starts on
const DefaultPageID = "page:page"

// Colors accepted by the color prop
var Colors = []string{
	"black", "grey", "light-violet", "violet", "blue", "light-blue",
	"yellow", "orange", "green", "light-green", "light-red", "red", "white",
}

// Fills accepted by the fill prop
var Fills = []string{"none", "semi", "solid", "pattern", "fill"}

var geoKinds = []string{
	"rectangle", "ellipse", "triangle", "diamond", "hexagon", "pentagon",
	"star", "oval", "cloud",
}

var shapeTypes = []string{"geo", "arrow", "line", "text", "note"}

// Document is an in-memory single page canvas implementing Editor and Lister.
// It validates descriptors the way a drawing library would reject them.
type Document struct {
	pageID string
	shapes map[string]*Shape
	order  []string
	newID  func() string
	mu     sync.RWMutex
}

// DocumentOption configures a Document
type DocumentOption func(*Document)

// WithIDGenerator replaces the uuid based shape id generator
func WithIDGenerator(fn func() string) DocumentOption {
	return func(d *Document) {
		d.newID = fn
	}
}

// WithPageID sets the current page id
func WithPageID(id string) DocumentOption {
	return func(d *Document) {
		d.pageID = id
	}
}

// NewDocument creates an empty document
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{
		pageID: DefaultPageID,
		shapes: make(map[string]*Shape),
		newID: func() string {
			return "shape:" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewShapeID mints a native shape id
func (d *Document) NewShapeID() string {
	return d.newID()
}

// CurrentPageID returns the page shapes are created on
func (d *Document) CurrentPageID() string {
	return d.pageID
}

// CreateShape validates and stores a new shape
func (d *Document) CreateShape(shape Shape) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if shape.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidShape)
	}
	if _, exists := d.shapes[shape.ID]; exists {
		return fmt.Errorf("%w: %s", ErrShapeExists, shape.ID)
	}
	if shape.ParentID == "" {
		shape.ParentID = d.pageID
	}
	shape.Props = cloneProps(shape.Props)
	if err := validate(shape); err != nil {
		return err
	}

	d.shapes[shape.ID] = &shape
	d.order = append(d.order, shape.ID)
	return nil
}

// UpdateShape applies a partial update to an existing shape. The update is
// validated as a whole and rejected without side effects.
func (d *Document) UpdateShape(partial ShapePartial) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.shapes[partial.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, partial.ID)
	}
	if partial.Type != "" && partial.Type != current.Type {
		return fmt.Errorf("%w: cannot change %s into %s", ErrInvalidShape, current.Type, partial.Type)
	}

	next := *current
	next.Props = cloneProps(current.Props)
	if partial.X != nil {
		next.X = *partial.X
	}
	if partial.Y != nil {
		next.Y = *partial.Y
	}
	for k, v := range partial.Props {
		next.Props[k] = v
	}
	if err := validate(next); err != nil {
		return err
	}

	d.shapes[partial.ID] = &next
	return nil
}

// DeleteShape removes a shape
func (d *Document) DeleteShape(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.shapes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	delete(d.shapes, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetShape returns a copy of the shape
func (d *Document) GetShape(id string) (Shape, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.shapes[id]
	if !ok {
		return Shape{}, false
	}
	out := *s
	out.Props = cloneProps(s.Props)
	return out, true
}

// Shapes returns copies of all shapes in creation order
func (d *Document) Shapes() []Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Shape, 0, len(d.order))
	for _, id := range d.order {
		s := *d.shapes[id]
		s.Props = cloneProps(s.Props)
		out = append(out, s)
	}
	return out
}

// Len returns the number of shapes on the page
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// Snapshot is a serialisable view of a document
type Snapshot struct {
	PageID string  `json:"pageId"`
	Shapes []Shape `json:"shapes"`
}

// Snapshot captures the current page
func (d *Document) Snapshot() Snapshot {
	return Snapshot{PageID: d.CurrentPageID(), Shapes: d.Shapes()}
}

// TextOf returns the plain text held in a shape's richText prop
func TextOf(s Shape) string {
	switch rt := s.Props["richText"].(type) {
	case RichText:
		return PlainText(rt)
	case *RichText:
		return PlainText(*rt)
	default:
		return ""
	}
}

func validate(s Shape) error {
	if !slices.Contains(shapeTypes, s.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidShape, s.Type)
	}
	if s.Type == "geo" {
		geo, _ := s.Props["geo"].(string)
		if !slices.Contains(geoKinds, geo) {
			return fmt.Errorf("%w: unknown geo %q", ErrInvalidShape, geo)
		}
		for _, key := range []string{"w", "h"} {
			v, ok := number(s.Props[key])
			if !ok || v <= 0 {
				return fmt.Errorf("%w: %s must be a positive number", ErrInvalidShape, key)
			}
		}
	}
	if c, ok := s.Props["color"]; ok {
		if name, _ := c.(string); !slices.Contains(Colors, name) {
			return fmt.Errorf("%w: unknown color %v", ErrInvalidShape, c)
		}
	}
	if f, ok := s.Props["fill"]; ok {
		if name, _ := f.(string); !slices.Contains(Fills, name) {
			return fmt.Errorf("%w: unknown fill %v", ErrInvalidShape, f)
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
