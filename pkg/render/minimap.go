package render

import (
	"strings"

	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/layout"
	"github.com/killallgit/easel/pkg/reconcile"
)

const (
	filledCell = "█"
	emptyCell  = "·"
)

// Minimap draws the occupied area of the canvas on a cols x rows grid
func Minimap(styles *Styles, shapes []canvas.Shape, cols, rows int) string {
	if len(shapes) == 0 {
		return styles.Minimap.Render(styles.Empty.Render("(empty canvas)"))
	}

	rects := make([]layout.Rect, 0, len(shapes))
	for _, s := range shapes {
		rects = append(rects, reconcile.Footprint(s))
	}
	grid := layout.Project(rects, layout.Bounds(rects), cols, rows)

	lines := make([]string, 0, len(grid))
	for _, row := range grid {
		var b strings.Builder
		for _, filled := range row {
			if filled {
				b.WriteString(styles.Filled.Render(filledCell))
			} else {
				b.WriteString(styles.Empty.Render(emptyCell))
			}
		}
		lines = append(lines, b.String())
	}
	return styles.Minimap.Render(strings.Join(lines, "\n"))
}
