package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pairchat/internal/domain"
)

// eventCmd builds a command that sends one event and prints its outcome.
func eventCmd(use, short string, send func(ctx context.Context, id domain.Identity) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := me()
			if err != nil {
				return err
			}
			outcome, err := send(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
}

func startCmd() *cobra.Command {
	return eventCmd("start", "Show the welcome message", func(ctx context.Context, id domain.Identity) (string, error) {
		return api.Start(ctx, id)
	})
}

func joinCmd() *cobra.Command {
	return eventCmd("join", "Look for a chat partner", func(ctx context.Context, id domain.Identity) (string, error) {
		return api.Join(ctx, id)
	})
}

func leaveCmd() *cobra.Command {
	return eventCmd("leave", "End the chat or leave the queue", func(ctx context.Context, id domain.Identity) (string, error) {
		return api.Leave(ctx, id)
	})
}
