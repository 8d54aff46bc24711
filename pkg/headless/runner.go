package headless

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/chat"
	"github.com/killallgit/easel/pkg/config"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/reconcile"
	"github.com/killallgit/easel/pkg/render"
	"github.com/killallgit/easel/pkg/stream"
)

const (
	historyTurns = 20
	minimapCols  = 48
	minimapRows  = 12
)

// runner drives one session in headless mode
type runner struct {
	history  *chat.History
	doc      *canvas.Document
	session  *reconcile.Session
	output   *Output
	progress *render.Progress
	config   *runConfig
}

// runConfig contains headless runner configuration
type runConfig struct {
	historyPath     string
	showThinking    bool
	continueHistory bool
	json            bool
}

func newRunner(opts Options, decoderOpts ...stream.DecoderOption) (*runner, error) {
	settings := opts.Config
	if settings == nil {
		settings = config.Get()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	historyPath := settings.History.Path
	if historyPath != "" && !filepath.IsAbs(historyPath) {
		historyPath = config.BuildSettingsPath(filepath.Base(historyPath))
	}

	cfg := &runConfig{
		historyPath:     historyPath,
		showThinking:    opts.ShowThinking,
		continueHistory: opts.ContinueHistory,
		json:            opts.JSON,
	}

	history, err := chat.NewHistory(cfg.historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat history: %w", err)
	}
	if !cfg.continueHistory {
		if err := history.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear history: %w", err)
		}
	}

	sessionOpts := []reconcile.SessionOption{
		reconcile.WithChunkSize(settings.Stream.ChunkSize),
		reconcile.WithDecoderOptions(decoderOpts...),
	}
	if settings.Canvas.AutoPlace {
		sessionOpts = append(sessionOpts, reconcile.WithApplierOptions(reconcile.WithAutoPlace()))
	}

	doc := canvas.NewDocument()
	output := NewOutput(out)
	return &runner{
		history:  history,
		doc:      doc,
		session:  reconcile.NewSession(doc, sessionOpts...),
		output:   output,
		progress: render.NewProgress(out, output.styles, cfg.showThinking),
		config:   cfg,
	}, nil
}

// run sends a prompt and applies the streamed answer
func (r *runner) run(ctx context.Context, src agent.Source, prompt string) error {
	userMsg := chat.NewUserMessage(prompt)
	if userMsg.IsEmpty() {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}
	logger.Debug("User prompt: %s", userMsg.Content)

	req := agent.Request{
		Message: userMsg.Content,
		History: r.history.GetLastN(historyTurns),
		Shapes:  agent.DescribeCanvas(r.doc, r.session.IDs()),
	}
	if err := r.history.Add(userMsg); err != nil {
		return fmt.Errorf("failed to add user message: %w", err)
	}

	body, err := src.Stream(ctx, req)
	if err != nil {
		r.output.Error(fmt.Sprintf("Agent error: %v", err))
		if addErr := r.history.Add(chat.NewErrorMessage(err.Error())); addErr != nil {
			logger.Warn("Failed to record error message: %v", addErr)
		}
		return err
	}
	defer body.Close()

	res, runErr := r.session.Run(ctx, body, r.progress)
	r.progress.Summary(res, runErr)

	reply := chat.NewAssistantMessage(res.Message)
	reply.Metadata = chat.Metadata{
		Applied:  len(res.Applied),
		State:    res.State.String(),
		Thinking: res.Thinking,
	}
	if err := r.history.Add(reply); err != nil {
		return fmt.Errorf("failed to add assistant message: %w", err)
	}

	if err := r.printCanvas(); err != nil {
		logger.Warn("Failed to print canvas: %v", err)
	}
	logger.Debug("Response complete: %d change(s), state %s", len(res.Applied), res.State)
	return runErr
}

// replay applies a recorded stream file
func (r *runner) replay(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, runErr := r.session.Run(ctx, f, r.progress)
	r.progress.Summary(res, runErr)
	if err := r.printCanvas(); err != nil {
		return err
	}
	return runErr
}

func (r *runner) printCanvas() error {
	if !r.config.json {
		r.output.Println(render.Minimap(r.output.styles, r.doc.Shapes(), minimapCols, minimapRows))
		return nil
	}

	data, err := json.MarshalIndent(r.doc.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	r.output.Println(render.HighlightJSON(string(data)))
	return nil
}

// cleanup performs cleanup operations
func (r *runner) cleanup() {
	if err := r.session.Reset(); err != nil {
		logger.Warn("Session still active at cleanup: %v", err)
	}
}
