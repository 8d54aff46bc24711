// Package shapekind maps the shape vocabulary used on the wire onto the
// canvas's native shape categories.
package shapekind

import "strings"

// Kind is a shape kind as named by the agent protocol
type Kind string

const (
	Rectangle Kind = "rectangle"
	Ellipse   Kind = "ellipse"
	Triangle  Kind = "triangle"
	Diamond   Kind = "diamond"
	Hexagon   Kind = "hexagon"
	Pentagon  Kind = "pentagon"
	Star      Kind = "star"
	Oval      Kind = "oval"
	Cloud     Kind = "cloud"
	Arrow     Kind = "arrow"
	Line      Kind = "line"
	Text      Kind = "text"
	Note      Kind = "note"

	// Unknown is the explicit fallback for names outside the vocabulary
	Unknown Kind = ""
)

// Category is a native shape type understood by the canvas
type Category string

const (
	CategoryGeo   Category = "geo"
	CategoryArrow Category = "arrow"
	CategoryLine  Category = "line"
	CategoryText  Category = "text"
	CategoryNote  Category = "note"
)

// All lists every known kind in protocol order
var All = []Kind{
	Rectangle, Ellipse, Triangle, Diamond, Hexagon, Pentagon, Star, Oval, Cloud,
	Arrow, Line, Text, Note,
}

// Parse returns the kind for a wire name. Matching is case-insensitive;
// unrecognised names return Unknown and false.
func Parse(name string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case Rectangle, Ellipse, Triangle, Diamond, Hexagon, Pentagon, Star, Oval, Cloud,
		Arrow, Line, Text, Note:
		return k, true
	default:
		return Unknown, false
	}
}

// Category returns the native category for the kind
func (k Kind) Category() Category {
	switch k {
	case Rectangle, Ellipse, Triangle, Diamond, Hexagon, Pentagon, Star, Oval, Cloud:
		return CategoryGeo
	case Arrow:
		return CategoryArrow
	case Line:
		return CategoryLine
	case Text:
		return CategoryText
	case Note:
		return CategoryNote
	default:
		return CategoryGeo
	}
}

// Geo returns the native geo subkind. Non-geo kinds return "".
func (k Kind) Geo() string {
	switch k {
	case Rectangle, Ellipse, Triangle, Diamond, Hexagon, Pentagon, Star, Oval, Cloud:
		return string(k)
	case Arrow, Line, Text, Note:
		return ""
	default:
		return string(Rectangle)
	}
}

// HasText reports whether shapes of this category carry text content
func (c Category) HasText() bool {
	return c == CategoryText || c == CategoryNote
}

// HasSize reports whether shapes of this category are sized by w/h props
func (c Category) HasSize() bool {
	return c == CategoryGeo
}

// Resolve maps a wire name to its native category and geo subkind, falling
// back to geo/rectangle for unknown names.
func Resolve(name string) (Category, string) {
	k, _ := Parse(name)
	return k.Category(), k.Geo()
}
