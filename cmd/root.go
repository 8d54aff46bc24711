package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/config"
	"github.com/killallgit/easel/pkg/headless"
	"github.com/killallgit/easel/pkg/logger"
	"github.com/killallgit/easel/pkg/metrics"
)

var (
	cfgFile       string
	metricsServer *metrics.Server
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Stream agent drawings onto a canvas",
	Long: `easel sends a prompt to a drawing agent and applies the shapes it streams
back to an in-memory canvas as they arrive.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initConfig,
	PersistentPostRunE: shutdown,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt == "" {
			return cmd.Help()
		}

		src, err := agent.NewSource(config.Get().Agent)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return headless.RunHeadless(ctx, src, prompt, runOptions(cmd))
	},
}

func runOptions(cmd *cobra.Command) headless.Options {
	continueHistory, _ := cmd.Flags().GetBool("continue")
	showThinking, _ := cmd.Flags().GetBool("show-thinking")
	asJSON, _ := cmd.Flags().GetBool("json")
	return headless.Options{
		Out:             cmd.OutOrStdout(),
		ShowThinking:    showThinking,
		ContinueHistory: continueHistory,
		JSON:            asJSON,
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.easel/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	viper.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))

	rootCmd.PersistentFlags().Bool("show-thinking", false, "print the agent's thinking as it streams")
	rootCmd.PersistentFlags().Bool("json", false, "print the final canvas as JSON instead of a minimap")

	rootCmd.Flags().StringP("prompt", "p", "", "prompt to send to the agent")
	rootCmd.Flags().Bool("continue", false, "continue from previous chat history instead of starting fresh")

	rootCmd.Flags().String("provider", "", "agent provider: http or ollama")
	viper.BindPFlag("agent.provider", rootCmd.Flags().Lookup("provider"))
	rootCmd.Flags().String("url", "", "agent or Ollama server URL")
	viper.BindPFlag("agent.url", rootCmd.Flags().Lookup("url"))
	rootCmd.Flags().String("model", "", "model name (ollama provider)")
	viper.BindPFlag("agent.model", rootCmd.Flags().Lookup("model"))
}

func initConfig(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logger.Init(); err != nil {
		return err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file: %s", used)
	}

	if settings.Metrics.Addr != "" && metricsServer == nil {
		metricsServer = metrics.NewServer(settings.Metrics.Addr)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("%v", err)
			}
		}()
	}
	return nil
}

func shutdown(cmd *cobra.Command, args []string) error {
	if metricsServer != nil {
		if err := metricsServer.Shutdown(); err != nil {
			logger.Warn("metrics: shutdown error: %v", err)
		}
		metricsServer = nil
	}
	if err := logger.Close(); err != nil {
		return fmt.Errorf("failed to close logger: %w", err)
	}
	return nil
}
