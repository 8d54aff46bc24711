package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/easel/pkg/process"
	"github.com/killallgit/easel/pkg/reconcile"
)

// Progress prints stream activity as it happens. It implements
// reconcile.Handler.
type Progress struct {
	out          io.Writer
	styles       *Styles
	showThinking bool
	thinking     bool
}

// NewProgress writes progress to out. Thinking is only shown when
// showThinking is set.
func NewProgress(out io.Writer, styles *Styles, showThinking bool) *Progress {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Progress{out: out, styles: styles, showThinking: showThinking}
}

func (p *Progress) OnApplied(description string) {
	p.endThinking()
	fmt.Fprintln(p.out, p.styles.Applied.Render("  • "+description))
}

func (p *Progress) OnThinking(text string) {
	if !p.showThinking || text == "" {
		return
	}
	p.thinking = true
	fmt.Fprint(p.out, p.styles.Thinking.Render(text))
}

// OnMessage is a no-op; the message is printed once in the summary
func (p *Progress) OnMessage(string) {
	p.endThinking()
}

func (p *Progress) endThinking() {
	if p.thinking {
		fmt.Fprintln(p.out)
		p.thinking = false
	}
}

// Summary prints the outcome of a stream: its state, change count and the
// agent's message
func (p *Progress) Summary(res reconcile.Result, err error) {
	p.endThinking()
	fmt.Fprintln(p.out, FormatSummary(p.styles, res, err))
}

// FormatSummary renders the outcome line and message for res
func FormatSummary(styles *Styles, res reconcile.Result, err error) string {
	style := styles.Finished
	switch res.State {
	case process.StateAborted:
		style = styles.Aborted
	case process.StateErrored:
		style = styles.Error
	}

	var b strings.Builder
	line := fmt.Sprintf("%s %s: %d change(s)", res.State.GetIcon(), res.State.GetDisplayName(), len(res.Applied))
	if skipped := res.Stats.Malformed; skipped > 0 {
		line += fmt.Sprintf(", %d malformed frame(s) skipped", skipped)
	}
	b.WriteString(style.Render(line))
	if err != nil {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render(err.Error()))
	}
	if msg := strings.TrimSpace(res.Message); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Message.Render(msg))
	}
	return b.String()
}
