package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/lecture-studio/internal/app"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
)

// The key commands only touch local credential storage and never build the full app.
func newKeyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored generation API key",
	}
	cmd.AddCommand(newKeySetCommand(ctx), newKeyClearCommand(ctx), newKeyStatusCommand(ctx))
	return cmd
}

func (c *commandContext) credentialStore() (credentials.Provider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return app.CredentialChain(cfg), nil
}

func newKeySetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Store an API key (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				key, err = readKey(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(key) == "" {
				return errors.New("api key must not be empty")
			}
			if err := store.Set(key); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
			return nil
		},
	}
}

func newKeyClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil && !errors.Is(err, credentials.ErrReadOnly) {
				return fmt.Errorf("clear api key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
			return nil
		},
	}
}

func newKeyStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is available",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			_, ok := store.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "API key available: %s\n", yesNo(ok))
			return nil
		},
	}
}

func readKey(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
