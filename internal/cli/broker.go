package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/broker"
	"github.com/five82/quicklinks/internal/config"
	"github.com/five82/quicklinks/internal/logging"
)

func newBrokerCmd(e env) *cobra.Command {
	var (
		addr      string
		origins   []string
		anyHost   bool
		extraHost []string
	)
	cmd := &cobra.Command{
		Use:   "broker",
		Short: "Serve the privileged fetch boundary over HTTP",
		Long: `Run the fetch broker: POST /fetch takes {"type":"FETCH_JSON","url":...}
and answers {"ok":true,"data":...} or {"ok":false,"status":...,"text":...}.
By default only the configured endpoint host may be fetched. Point other
quicklinks instances at it with broker = "<addr>" in their config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.flags.configPath)
			if err != nil {
				return apperr.New(apperr.KindConfig, "load config", err)
			}
			config.LoadDotenv(config.DotenvPath(e.flags.configPath), ".env")

			logger := logging.New(logging.Config{
				Level:  logging.Level(cfg.LogLevel),
				Format: logging.Format(cfg.LogFormat),
				Output: cmd.ErrOrStderr(),
			}).With("component", "broker")

			transport, err := app.NewTransport(cfg, e.deps.Version)
			if err != nil {
				return err
			}

			var hosts []string
			if !anyHost {
				hosts = append(hosts, extraHost...)
				host, err := endpointHost(cfg.Endpoint)
				if err != nil {
					return err
				}
				if host != "" {
					hosts = append(hosts, host)
				}
				if len(hosts) == 0 {
					return fmt.Errorf("no endpoint configured: set endpoint, pass --allow-host or --allow-any-host")
				}
			}

			srv := broker.New(transport, broker.Options{
				Addr:           addr,
				AllowedOrigins: origins,
				AllowedHosts:   hosts,
				Logger:         logger,
			})
			info(cmd.OutOrStdout()).Printfln("Broker listening on http://%s", srv.Addr())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", broker.DefaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed CORS origin (repeatable, default: extension and localhost origins)")
	cmd.Flags().StringSliceVar(&extraHost, "allow-host", nil, "additional host the broker may fetch (repeatable)")
	cmd.Flags().BoolVar(&anyHost, "allow-any-host", false, "allow fetching any http(s) host")
	return cmd
}

// endpointHost returns the lowercased host of endpoint, or "" when unset.
func endpointHost(endpoint string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", apperr.New(apperr.KindConfig, "parse endpoint", err)
	}
	return strings.ToLower(u.Hostname()), nil
}
