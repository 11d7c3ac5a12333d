package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// say <message...>: relay a message to the current partner.
func sayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <message>",
		Short: "Send a message to your partner",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := me()
			if err != nil {
				return err
			}
			outcome, err := api.Say(cmd.Context(), id, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if outcome != "relayed" {
				fmt.Fprintln(cmd.OutOrStdout(), "not in a chat; message dropped")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
}
