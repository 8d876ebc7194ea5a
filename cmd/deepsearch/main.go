package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bububa/deepsearch/internal/config"
	"github.com/bububa/deepsearch/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

type rootFlags struct {
	configPath string
	provider   string
	model      string
	engine     string
	maxSteps   int
	verbose    bool
	jsonLogs   bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd(defaultRunnerFactory).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(factory RunnerFactory) *cobra.Command {
	flags := new(rootFlags)
	root := &cobra.Command{
		Use:           "deepsearch",
		Short:         "deepsearch - answers questions by searching and reading the web",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", config.DefaultPath(), "Path to the YAML config file")
	pf.StringVar(&flags.provider, "provider", "", "LLM provider: openai, anthropic or cohere")
	pf.StringVarP(&flags.model, "model", "m", "", "Model name")
	pf.StringVar(&flags.engine, "engine", "", "Search engine: searxng or serper")
	pf.IntVar(&flags.maxSteps, "max-steps", 0, "Maximum search and scrape steps before answering")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "Log as JSON")

	root.AddCommand(
		newAskCmd(flags, factory),
		newChatCmd(flags, factory),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads the config file and applies command line overrides on top
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.provider != "" && flags.provider != cfg.LLM.Provider {
		cfg.LLM.Provider = flags.provider
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
		cfg.ApplyEnv()
	}
	if flags.engine != "" {
		cfg.Search.Engine = flags.engine
	}
	if flags.model != "" {
		cfg.LLM.Model = flags.model
	}
	if flags.maxSteps > 0 {
		cfg.Agent.MaxSteps = flags.maxSteps
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if flags.jsonLogs {
		cfg.Log.Format = "json"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the config and builds the logger, the returned closer flushes the log file
func setup(flags *rootFlags, stderr io.Writer) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, closer, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deepsearch %s (%s)\n", version, commit)
		},
	}
}
