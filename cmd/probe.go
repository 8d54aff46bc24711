package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/config"
	"github.com/killallgit/easel/pkg/reconcile"
)

const probePrompt = "Draw a small flowchart: three labelled boxes in a row joined by arrows, then a note under the first box."

// probeResult records how well one model followed the event protocol
type probeResult struct {
	Model    string
	Result   reconcile.Result
	Shapes   int
	Err      error
	Duration time.Duration
}

func (r probeResult) grade() string {
	switch {
	case r.Err != nil || r.Shapes == 0:
		return "unusable"
	case r.Result.Stats.Malformed > 0:
		return "noisy"
	default:
		return "good"
	}
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which Ollama models can drive the canvas",
	Long: `Probe sends the same drawing prompt to each model through the Ollama provider
and reports how many shapes it drew and how many frames it got wrong.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Get().Agent
		models, _ := cmd.Flags().GetStringSlice("models")
		if len(models) == 0 {
			models = []string{settings.Model}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Probing %d model(s) at %s\n\n", len(models), settings.URL)

		results := make([]probeResult, 0, len(models))
		for _, model := range models {
			model = strings.TrimSpace(model)
			src, err := agent.NewOllamaSource(settings.URL, model)
			var res probeResult
			if err != nil {
				res = probeResult{Model: model, Err: err}
			} else {
				res = probeModel(cmd.Context(), model, src, settings.Timeout)
			}
			printProbe(out, res)
			results = append(results, res)
		}

		for _, res := range results {
			if res.grade() == "good" {
				return nil
			}
		}
		return fmt.Errorf("no model drew cleanly")
	},
}

func probeModel(ctx context.Context, model string, src agent.Source, timeout time.Duration) probeResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := src.Stream(ctx, agent.Request{Message: probePrompt})
	if err != nil {
		return probeResult{Model: model, Err: err, Duration: time.Since(start)}
	}
	defer body.Close()

	doc := canvas.NewDocument()
	session := reconcile.NewSession(doc, reconcile.WithDecoderOptions(agent.DecoderOptions(src)...))
	res, err := session.Run(ctx, body, nil)
	return probeResult{
		Model:    model,
		Result:   res,
		Shapes:   doc.Len(),
		Err:      err,
		Duration: time.Since(start),
	}
}

func printProbe(out io.Writer, r probeResult) {
	icon := map[string]string{"good": "✓", "noisy": "~", "unusable": "✗"}[r.grade()]
	fmt.Fprintf(out, "%s %-24s %-8s %2d shape(s) %2d event(s) %2d malformed  %s\n",
		icon, r.Model, r.grade(), r.Shapes, r.Result.Stats.Events, r.Result.Stats.Malformed,
		r.Duration.Round(100*time.Millisecond))
	if r.Err != nil {
		fmt.Fprintf(out, "  %v\n", r.Err)
	}
}

func init() {
	probeCmd.Flags().StringSlice("models", nil, "comma separated models to probe (default is agent.model)")
	rootCmd.AddCommand(probeCmd)
}
