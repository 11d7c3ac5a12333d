package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"pairchat/internal/crypto"
	"pairchat/internal/domain"
	"pairchat/internal/transport/mailbox"
)

// recv: print queued messages for --id, then acknowledge them.
func recvCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Print and acknowledge your queued messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := me()
			if err != nil {
				return err
			}
			msgs, err := api.Fetch(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				line, err := render(keys, id, m)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(msgs) == 0 {
				return nil
			}
			_, err = api.Ack(cmd.Context(), id, len(msgs))
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of messages to fetch (0 = all)")
	return cmd
}

// render formats one queued message. It records the session key carried by a
// sealed-mode pairing notice, forgets it when the chat ends, and opens sealed
// partner messages with it.
func render(ks domain.KeyStore, id domain.Identity, m mailbox.Message) (string, error) {
	if m.Kind == domain.KindNotice {
		switch {
		case m.Key != "":
			key, err := domain.ParseSessionKey(m.Key)
			if err != nil {
				return "", err
			}
			if err := ks.SaveKey(id, key); err != nil {
				return "", fmt.Errorf("save session key: %w", err)
			}
		case m.Body == domain.NoticePartnerLeft || m.Body == domain.NoticeYouLeft:
			if err := ks.DeleteKey(id); err != nil {
				return "", fmt.Errorf("delete session key: %w", err)
			}
		}
		return "* " + m.Body, nil
	}

	if !m.Sealed {
		return "partner: " + m.Body, nil
	}
	key, ok, err := ks.LoadKey(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "partner: " + domain.PlaceholderDecode, nil
	}
	defer crypto.WipeKey(&key)
	text, err := crypto.Open(key, m.Body)
	if err != nil {
		return "partner: " + crypto.Placeholder(err), nil
	}
	return "partner: " + text, nil
}
