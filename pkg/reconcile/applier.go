// Package reconcile applies decoded agent stream events to a canvas editor.
//
// Application is best effort and not transactional: every event is applied
// on its own, failures are logged and skipped, and whatever was applied
// before a cancellation or transport failure stays on the canvas.
package reconcile

import (
	"fmt"

	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/layout"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/metrics"
	"github.com/killallgit/easel/pkg/shapeid"
	"github.com/killallgit/easel/pkg/shapekind"
	"github.com/killallgit/easel/pkg/stream"
)

// Defaults for fields a create event may omit
const (
	DefaultX         = 100.0
	DefaultY         = 100.0
	DefaultWidth     = 100.0
	DefaultHeight    = 100.0
	DefaultNoteColor = "yellow"
)

const (
	placementStep  = 120.0
	placementRings = 8
)

// Applier turns stream events into editor calls
type Applier struct {
	editor    canvas.Editor
	ids       *shapeid.Transform
	autoPlace bool
}

// ApplierOption configures an Applier
type ApplierOption func(*Applier)

// WithAutoPlace places creates that omit both x and y at the nearest free
// spot around the default position instead of stacking them.
func WithAutoPlace() ApplierOption {
	return func(a *Applier) {
		a.autoPlace = true
	}
}

// NewApplier creates an applier resolving wire ids through ids
func NewApplier(editor canvas.Editor, ids *shapeid.Transform, opts ...ApplierOption) *Applier {
	a := &Applier{editor: editor, ids: ids}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ApplyStreamEvent applies one event and returns a short description of the
// visible effect, or false if there was none.
func ApplyStreamEvent(editor canvas.Editor, ids *shapeid.Transform, ev stream.Event) (string, bool) {
	return NewApplier(editor, ids).Apply(ev)
}

// Apply applies one event. It never fails: malformed events, stale ids and
// editor errors are logged and reported as no effect.
func (a *Applier) Apply(ev stream.Event) (desc string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Editor panicked applying %s event: %v", ev.Type, r)
			a.record(ev.Type, metrics.OutcomeFailed)
			desc, ok = "", false
		}
	}()

	switch ev.Type {
	case stream.EventCreate:
		return a.create(ev)
	case stream.EventUpdate:
		return a.update(ev)
	case stream.EventMove:
		return a.move(ev)
	case stream.EventDelete:
		return a.delete(ev)
	case stream.EventLabel:
		return a.label(ev)
	case stream.EventThink, stream.EventMessage:
		return "", false
	default:
		logger.Debug("Ignoring event with unknown type %q", ev.Type)
		a.record("unknown", metrics.OutcomeSkipped)
		return "", false
	}
}

func (a *Applier) create(ev stream.Event) (string, bool) {
	if ev.ShapeID == "" || ev.ShapeType == "" {
		logger.Warn("Skipping create without shapeId or shapeType (shapeId=%q shapeType=%q)", ev.ShapeID, ev.ShapeType)
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	kind, known := shapekind.Parse(ev.ShapeType)
	if !known {
		logger.Debug("Unknown shape type %q, falling back to %s", ev.ShapeType, shapekind.Rectangle)
	}
	category := kind.Category()

	props := make(map[string]any)
	w, h := valueOr(ev.Width, DefaultWidth), valueOr(ev.Height, DefaultHeight)
	if category.HasSize() {
		props["geo"] = kind.Geo()
		props["w"] = w
		props["h"] = h
		if ev.Fill != "" {
			props["fill"] = ev.Fill
		}
	}
	if category.HasText() {
		props["richText"] = canvas.ToRichText(ev.Text)
	}
	switch {
	case category == shapekind.CategoryNote && ev.Color == "":
		props["color"] = DefaultNoteColor
	case ev.Color != "":
		props["color"] = ev.Color
	}

	x, y := valueOr(ev.X, DefaultX), valueOr(ev.Y, DefaultY)
	if a.autoPlace && ev.X == nil && ev.Y == nil {
		x, y = a.freeSpot(layout.Rect{X: x, Y: y, W: w, H: h})
	}

	nativeID := a.ids.ResolveOrCreate(ev.ShapeID)
	shape := canvas.Shape{
		ID:       nativeID,
		Type:     string(category),
		ParentID: a.editor.CurrentPageID(),
		X:        x,
		Y:        y,
		Props:    props,
	}
	if err := a.editor.CreateShape(shape); err != nil {
		logger.Error("Failed to create %s %s: %v", ev.ShapeType, ev.ShapeID, err)
		a.record(ev.Type, metrics.OutcomeFailed)
		return "", false
	}

	a.record(ev.Type, metrics.OutcomeApplied)
	name := kind.Geo()
	if name == "" {
		name = string(category)
	}
	return fmt.Sprintf("Created %s %s", name, ev.ShapeID), true
}

func (a *Applier) update(ev stream.Event) (string, bool) {
	if ev.ShapeID == "" {
		logger.Warn("Skipping update without shapeId")
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	nativeID := a.ids.ResolveOrCreate(ev.ShapeID)
	shape, ok := a.editor.GetShape(nativeID)
	if !ok {
		logger.Debug("Skipping update for missing shape %s", ev.ShapeID)
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	partial := canvas.ShapePartial{ID: nativeID, Type: shape.Type, Props: make(map[string]any)}
	for key, value := range ev.Updates {
		switch key {
		case "text":
			partial.Props["richText"] = canvas.ToRichText(textValue(value))
		case "x", "y":
			f, isNum := value.(float64)
			if !isNum {
				logger.Debug("Ignoring non-numeric %s=%v for %s", key, value, ev.ShapeID)
				continue
			}
			if key == "x" {
				partial.X = &f
			} else {
				partial.Y = &f
			}
		default:
			partial.Props[key] = value
		}
	}

	if err := a.editor.UpdateShape(partial); err != nil {
		logger.Error("Failed to update %s: %v", ev.ShapeID, err)
		a.record(ev.Type, metrics.OutcomeFailed)
		return "", false
	}

	a.record(ev.Type, metrics.OutcomeApplied)
	return fmt.Sprintf("Updated %s", ev.ShapeID), true
}

func (a *Applier) move(ev stream.Event) (string, bool) {
	targets := ev.TargetIDs()
	if len(targets) == 0 {
		logger.Warn("Skipping move without shapeId or shapeIds")
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	x, y := valueOr(ev.X, 0), valueOr(ev.Y, 0)
	for _, wireID := range targets {
		nativeID := a.ids.ResolveOrCreate(wireID)
		shape, ok := a.editor.GetShape(nativeID)
		if !ok {
			logger.Debug("Skipping move for missing shape %s", wireID)
			continue
		}
		if err := a.editor.UpdateShape(canvas.ShapePartial{ID: nativeID, Type: shape.Type, X: &x, Y: &y}); err != nil {
			logger.Warn("Failed to move %s: %v", wireID, err)
		}
	}

	a.record(ev.Type, metrics.OutcomeApplied)
	return fmt.Sprintf("Moved %d shape(s)", len(targets)), true
}

func (a *Applier) delete(ev stream.Event) (string, bool) {
	targets := ev.TargetIDs()
	if len(targets) == 0 {
		logger.Warn("Skipping delete without shapeId or shapeIds")
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	for _, wireID := range targets {
		if err := a.editor.DeleteShape(a.ids.ResolveOrCreate(wireID)); err != nil {
			logger.Debug("Ignoring delete failure for %s: %v", wireID, err)
		}
	}

	a.record(ev.Type, metrics.OutcomeApplied)
	return fmt.Sprintf("Deleted %d shape(s)", len(targets)), true
}

func (a *Applier) label(ev stream.Event) (string, bool) {
	if ev.ShapeID == "" {
		logger.Warn("Skipping label without shapeId")
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	nativeID := a.ids.ResolveOrCreate(ev.ShapeID)
	shape, ok := a.editor.GetShape(nativeID)
	if !ok {
		logger.Debug("Skipping label for missing shape %s", ev.ShapeID)
		a.record(ev.Type, metrics.OutcomeSkipped)
		return "", false
	}

	partial := canvas.ShapePartial{
		ID:    nativeID,
		Type:  shape.Type,
		Props: map[string]any{"richText": canvas.ToRichText(ev.Text)},
	}
	if err := a.editor.UpdateShape(partial); err != nil {
		logger.Error("Failed to label %s: %v", ev.ShapeID, err)
		a.record(ev.Type, metrics.OutcomeFailed)
		return "", false
	}

	a.record(ev.Type, metrics.OutcomeApplied)
	return fmt.Sprintf("Labeled %s", ev.ShapeID), true
}

// freeSpot ring-searches around want for a position clear of existing
// shapes. Editors that cannot list shapes get want back.
func (a *Applier) freeSpot(want layout.Rect) (float64, float64) {
	lister, ok := a.editor.(canvas.Lister)
	if !ok {
		return want.X, want.Y
	}

	shapes := lister.Shapes()
	occupied := make([]layout.Rect, 0, len(shapes))
	for _, s := range shapes {
		occupied = append(occupied, Footprint(s))
	}
	spot := layout.RingSearch(occupied, want, placementStep, placementRings)
	return spot.X, spot.Y
}

func (a *Applier) record(t stream.EventType, outcome string) {
	metrics.EventsApplied.WithLabelValues(string(t), outcome).Inc()
}

// Footprint returns the rect a shape covers, using its w/h props when present
func Footprint(s canvas.Shape) layout.Rect {
	w, h := DefaultWidth, DefaultHeight
	if v, ok := s.Props["w"].(float64); ok {
		w = v
	}
	if v, ok := s.Props["h"].(float64); ok {
		h = v
	}
	return layout.Rect{X: s.X, Y: s.Y, W: w, H: h}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
