package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/neomorfeo/orgconsole/internal/adapter/remote"
)

// connection holds the remote API settings shared by every subcommand.
type connection struct {
	APIURL  string        `env:"ORGCTL_API_URL"`
	Token   string        `env:"ORGCTL_TOKEN"`
	Timeout time.Duration `env:"ORGCTL_TIMEOUT" envDefault:"30s"`
}

func newRootCmd() *cobra.Command {
	conn, err := env.ParseAs[connection]()
	if err != nil {
		conn = connection{Timeout: remote.DefaultTimeout}
	}

	cmd := &cobra.Command{
		Use:           "orgctl",
		Short:         "Company onboarding from plan files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&conn.APIURL, "api-url", conn.APIURL, "Remote organization API base URL (env ORGCTL_API_URL)")
	cmd.PersistentFlags().StringVar(&conn.Token, "token", conn.Token, "Bearer token (env ORGCTL_TOKEN)")
	cmd.PersistentFlags().DurationVar(&conn.Timeout, "timeout", conn.Timeout, "Per-request timeout")

	cmd.AddCommand(newOnboardCmd(&conn))
	cmd.AddCommand(newTreeCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
