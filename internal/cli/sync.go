package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/syncer"
)

type syncResult struct {
	Collection string `json:"collection"`
	OK         bool   `json:"ok"`
	Entries    int    `json:"entries"`
	Error      string `json:"error,omitempty"`
}

type syncOutput struct {
	RunID   string       `json:"runId"`
	Status  string       `json:"status"`
	Results []syncResult `json:"results"`
}

func newSyncOutput(report syncer.Report) syncOutput {
	out := syncOutput{RunID: report.RunID, Status: report.Status}
	for _, res := range report.Results {
		out.Results = append(out.Results, syncResult{
			Collection: res.Kind.String(),
			OK:         res.OK,
			Entries:    res.Entries,
			Error:      res.Error,
		})
	}
	return out
}

// errSyncFailed is returned when at least one collection failed to sync.
var errSyncFailed = errors.New(popup.MsgSyncErrors)

func newSyncCmd(e env) *cobra.Command {
	var (
		ifDue  bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch both collections from the remote endpoint",
		Long: `Fetch both collections and replace the cache of each one that validates.
A successful collection also drops its local override. A failed collection
keeps its previous cache and records the error in the sync metadata.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				return runSync(ctx, cmd, rt, ifDue, output)
			})
		},
	}
	cmd.Flags().BoolVar(&ifDue, "if-due", false, "only sync when the last successful sync is older than sync_interval")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json")
	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, rt *app.Runtime, ifDue bool, output string) error {
	out := cmd.OutOrStdout()
	if !rt.Fetcher.Configured() {
		return fmt.Errorf("no endpoint configured: set endpoint in the config file")
	}

	var report syncer.Report
	if ifDue {
		h, err := rt.SoftSync(ctx, time.Now())
		if err != nil {
			return err
		}
		if h == nil {
			if output == outputJSON {
				return printJSON(out, map[string]any{"skipped": true})
			}
			info(out).Println("Sync not due yet")
			return nil
		}
		report = h.Wait()
	} else {
		report = rt.Syncer.Run(ctx)
	}

	if output == outputJSON {
		if err := printJSON(out, newSyncOutput(report)); err != nil {
			return err
		}
	} else {
		rows := pterm.TableData{{"Collection", "Result", "Entries", "Error"}}
		for _, res := range report.Results {
			result, entries := "ok", strconv.Itoa(res.Entries)
			if !res.OK {
				result, entries = "failed", "-"
			}
			rows = append(rows, []string{res.Kind.String(), result, entries, orDash(res.Error)})
		}
		if err := printTable(out, rows); err != nil {
			return err
		}
	}

	if report.Err != nil {
		return report.Err
	}
	if len(report.Failed()) > 0 {
		return errSyncFailed
	}
	if output == outputText {
		success(out).Println(popup.MsgSyncOK)
	}
	return nil
}
