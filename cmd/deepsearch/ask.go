package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/deepsearch/agents/research"
)

func newAskCmd(flags *rootFlags, factory RunnerFactory) *cobra.Command {
	var (
		quiet       bool
		showSources bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Research a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := setup(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			var observers []research.Observer
			if !quiet {
				observers = append(observers, &progressObserver{w: cmd.ErrOrStderr()})
			}
			runner, shutdown, err := factory(cmd.Context(), cfg, logger, observers...)
			if err != nil {
				return err
			}
			defer shutdown(context.WithoutCancel(cmd.Context()))
			_, err = ask(cmd.Context(), runner, strings.Join(args, " "), nil, cmd.OutOrStdout(), showSources)
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print research progress")
	cmd.Flags().BoolVar(&showSources, "sources", true, "Print the sources after the answer")
	return cmd
}

// ask streams the answer of one question to w
func ask(ctx context.Context, runner Runner, question string, opts []research.RunOption, w io.Writer, showSources bool) (*research.Result, error) {
	opts = append(opts, research.WithAnswerStream(func(chunk string) {
		fmt.Fprint(w, chunk)
	}))
	result, err := runner.Run(ctx, question, opts...)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(w)
	if result.BestEffort {
		fmt.Fprintf(w, "\n(answered after %d research steps, the answer may be incomplete)\n", result.Steps)
	}
	if list := sources(result); showSources && len(list) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, u := range list {
			fmt.Fprintf(w, "%d. %s\n", i+1, u)
		}
	}
	return result, nil
}
