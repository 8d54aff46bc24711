package headless

import (
	"fmt"
	"io"

	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/render"
)

// Output handles console output for headless mode
type Output struct {
	w      io.Writer
	styles *render.Styles
}

// NewOutput creates a new output handler
func NewOutput(w io.Writer) *Output {
	return &Output{w: w, styles: render.DefaultStyles()}
}

// Println prints a line
func (o *Output) Println(s string) {
	fmt.Fprintln(o.w, s)
}

// Error logs an error and prints it
func (o *Output) Error(msg string) {
	logger.Error("%s", msg)
	fmt.Fprintln(o.w, o.styles.Error.Render(msg))
}
