package shapeid

import (
	"fmt"
	"sync"
)

// WirePrefix is prepended to the counter when minting compact wire ids.
const WirePrefix = "shape"

// NativeIDSource mints identifiers in the canvas's native id space.
type NativeIDSource interface {
	NewShapeID() string
}

// NativeIDFunc adapts a plain function to NativeIDSource
type NativeIDFunc func() string

// NewShapeID implements NativeIDSource
func (f NativeIDFunc) NewShapeID() string {
	return f()
}

// Transform maps compact wire ids ("shape1", "shape2", ...) onto native canvas
// ids and back. A wire id always resolves to the same native id and a native
// id always resolves to the same wire id until Reset is called.
type Transform struct {
	source   NativeIDSource
	toNative map[string]string
	toWire   map[string]string
	counter  int
	mu       sync.RWMutex
}

// New creates a Transform that mints native ids from source
func New(source NativeIDSource) *Transform {
	return &Transform{
		source:   source,
		toNative: make(map[string]string),
		toWire:   make(map[string]string),
	}
}

// ResolveOrCreate returns the native id bound to wireID, minting and
// recording a new one on first use.
func (t *Transform) ResolveOrCreate(wireID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if native, ok := t.toNative[wireID]; ok {
		return native
	}

	native := t.source.NewShapeID()
	t.bind(wireID, native)
	return native
}

// ToWireID returns the wire id bound to nativeID, minting the next free
// "shape<N>" id on first use.
func (t *Transform) ToWireID(nativeID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wire, ok := t.toWire[nativeID]; ok {
		return wire
	}

	var wire string
	for {
		t.counter++
		wire = fmt.Sprintf("%s%d", WirePrefix, t.counter)
		// Inbound events may already have claimed this id.
		if _, taken := t.toNative[wire]; !taken {
			break
		}
	}

	t.bind(wire, nativeID)
	return wire
}

// Lookup returns the native id bound to wireID without minting
func (t *Transform) Lookup(wireID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	native, ok := t.toNative[wireID]
	return native, ok
}

// Len returns the number of bound pairs
func (t *Transform) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.toNative)
}

// Reset clears both tables and the counter. The canvas is not touched.
func (t *Transform) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.toNative = make(map[string]string)
	t.toWire = make(map[string]string)
	t.counter = 0
}

func (t *Transform) bind(wire, native string) {
	t.toNative[wire] = native
	t.toWire[native] = wire
}
