package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/killallgit/easel/pkg/headless"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Apply a recorded agent stream to a fresh canvas",
	Long: `Replay reads a recorded stream, either "data:" framed or one JSON event per
line, applies it to an empty canvas and prints the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return headless.RunReplay(ctx, args[0], runOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
