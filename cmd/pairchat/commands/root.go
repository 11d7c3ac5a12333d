package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pairchat/internal/client"
	"pairchat/internal/domain"
	"pairchat/internal/store"
)

var (
	home       string
	passphrase string
	serverURL  string
	userID     string
	envFile    string

	api  *client.HTTP
	keys domain.KeyStore
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pairchat",
		Short:        "Anonymous one-to-one chat relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".pairchat")
			}
			api = client.NewHTTP(serverURL, &http.Client{Timeout: 15 * time.Second})
			keys = store.NewKeyFileStore(home, passphrase)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "client state dir (default ~/.pairchat)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting stored session keys")
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")
	root.PersistentFlags().StringVar(&userID, "id", os.Getenv("PAIRCHAT_ID"), "your user id")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading configuration")

	root.AddCommand(
		serveCmd(),
		startCmd(),
		joinCmd(),
		leaveCmd(),
		sayCmd(),
		recvCmd(),
		statsCmd(),
	)
	return root
}

func defaultServer() string {
	if s := os.Getenv("PAIRCHAT_SERVER"); s != "" {
		return s
	}
	return "http://127.0.0.1:8080"
}

// me returns the --id flag as an identity.
func me() (domain.Identity, error) {
	if userID == "" {
		return "", fmt.Errorf("--id required")
	}
	return domain.Identity(userID), nil
}
