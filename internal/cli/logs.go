package cli

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/config"
	"github.com/five82/quicklinks/internal/logtail"
)

const defaultLogLines = 50

func newLogsCmd(e env) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the quicklinks log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var minLevel slog.Level
			if err := minLevel.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("unsupported --level value %q: use debug, info, warn or error", level)
			}
			cfg, err := config.Load(e.flags.configPath)
			if err != nil {
				return apperr.New(apperr.KindConfig, "load config", err)
			}
			tail, err := logtail.Read(cfg.LogPath, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				info(out).Printfln("Log %s is empty", cfg.LogPath)
				return nil
			}
			for _, line := range logtail.Filter(tail, minLevel) {
				pterm.Fprintln(out, colorize(line))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", defaultLogLines, "number of lines to read from the end (0 for all)")
	cmd.Flags().StringVar(&level, "level", "debug", "minimum level to show: debug, info, warn, error")
	return cmd
}

func colorize(line string) string {
	lvl, ok := logtail.Level(line)
	switch {
	case !ok:
		return pterm.Gray(line)
	case lvl >= slog.LevelError:
		return pterm.Red(line)
	case lvl >= slog.LevelWarn:
		return pterm.Yellow(line)
	case lvl < slog.LevelInfo:
		return pterm.Gray(line)
	default:
		return line
	}
}
