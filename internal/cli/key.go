package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/config"
)

func newKeyCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the shared secret in the OS keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Read the shared secret from stdin and store it in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.flags.configPath)
			if err != nil {
				return apperr.New(apperr.KindConfig, "load config", err)
			}
			reader := bufio.NewReader(cmd.InOrStdin())
			secret, err := reader.ReadString('\n')
			if err != nil && strings.TrimSpace(secret) == "" {
				return fmt.Errorf("read key from stdin: %w", err)
			}
			if err := cfg.StoreKey(secret); err != nil {
				return err
			}
			success(cmd.OutOrStdout()).Println("Key stored in keyring")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the shared secret from the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.flags.configPath)
			if err != nil {
				return apperr.New(apperr.KindConfig, "load config", err)
			}
			if err := cfg.DeleteKey(); err != nil {
				return err
			}
			success(cmd.OutOrStdout()).Println("Key removed from keyring")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "source",
		Short: "Show where the shared secret is resolved from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.flags.configPath)
			if err != nil {
				return apperr.New(apperr.KindConfig, "load config", err)
			}
			config.LoadDotenv(config.DotenvPath(e.flags.configPath), ".env")
			_, source, err := cfg.ResolveKey()
			if err != nil {
				return err
			}
			info(cmd.OutOrStdout()).Printfln("Key source: %s", source)
			return nil
		},
	})
	return cmd
}
