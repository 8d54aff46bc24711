// Package headless runs prompts and recorded streams against an in-memory
// canvas and prints the result.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/config"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/stream"
)

// Options tune a headless run
type Options struct {
	Out             io.Writer
	Config          *config.Config // defaults to config.Get()
	ShowThinking    bool
	ContinueHistory bool
	JSON            bool // print the final snapshot as JSON instead of a minimap
}

// RunHeadless sends one prompt to src and applies the answer
func RunHeadless(ctx context.Context, src agent.Source, prompt string, opts Options) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	r, err := newRunner(opts, agent.DecoderOptions(src)...)
	if err != nil {
		return fmt.Errorf("failed to initialize headless mode: %w", err)
	}
	defer r.cleanup()

	if err := r.run(ctx, src, prompt); err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}
	return nil
}

// RunReplay applies a recorded stream file to a fresh canvas. Recordings may
// be "data:" framed or plain NDJSON.
func RunReplay(ctx context.Context, path string, opts Options) error {
	r, err := newRunner(opts, stream.WithBareJSON())
	if err != nil {
		return fmt.Errorf("failed to initialize replay: %w", err)
	}
	defer r.cleanup()

	if err := r.replay(ctx, path); err != nil {
		return fmt.Errorf("failed to replay %s: %w", path, err)
	}
	logger.Debug("Replayed %s", path)
	return nil
}
