package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/deepsearch/agents/research"
	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/schema"
)

func newChatCmd(flags *rootFlags, factory RunnerFactory) *cobra.Command {
	var maxMessages int
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive research session keeping the conversation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := setup(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			runner, shutdown, err := factory(cmd.Context(), cfg, logger, &progressObserver{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer shutdown(context.WithoutCancel(cmd.Context()))
			return chat(cmd, runner, components.NewMemory(maxMessages))
		},
	}
	cmd.Flags().IntVar(&maxMessages, "max-messages", 20, "Number of messages of conversation history to keep")
	return cmd
}

func chat(cmd *cobra.Command, runner Runner, memory *components.Memory) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	fmt.Fprintln(stdout, "deepsearch chat (/reset clears the history, /undo drops the last turn, exit to quit)")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/reset":
			memory.Reset()
			fmt.Fprintln(stdout, "history cleared")
			continue
		case "/undo":
			if err := memory.DeleteTurn(memory.TurnID()); err != nil {
				fmt.Fprintln(stdout, "nothing to undo")
			}
			continue
		}
		result, err := ask(ctx, runner, input, []research.RunOption{research.WithHistory(memory.History())}, stdout, true)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		memory.NewTurn()
		memory.NewMessage(components.UserRole, schema.NewString(input))
		memory.NewMessage(components.AssistantRole, schema.NewString(result.Answer))
	}
	return scanner.Err()
}
