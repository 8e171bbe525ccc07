package cli

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/state"
)

type collectionStatus struct {
	Collection string `json:"collection"`
	Source     string `json:"source"`
	Entries    int    `json:"entries"`
	LastOkAt   string `json:"lastOkAt,omitempty"`
	LastError  string `json:"lastError,omitempty"`
}

type statusReport struct {
	Endpoint    string             `json:"endpoint"`
	Boundary    string             `json:"boundary"`
	KeySource   string             `json:"keySource"`
	StorePath   string             `json:"storePath"`
	Collections []collectionStatus `json:"collections"`
	Rejected    []state.Rejection  `json:"rejected,omitempty"`
}

func newStatusCmd(e env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where each collection comes from and when it last synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				report, err := buildStatus(ctx, rt)
				if err != nil {
					return err
				}
				if output == outputJSON {
					return printJSON(cmd.OutOrStdout(), report)
				}
				return printStatus(cmd, report)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json")
	return cmd
}

func buildStatus(ctx context.Context, rt *app.Runtime) (statusReport, error) {
	snap, err := rt.Controller.Refresh(ctx)
	if err != nil {
		return statusReport{}, err
	}

	boundary := "in-process"
	if rt.Config.Broker != "" {
		boundary = "broker " + rt.Config.Broker
	}
	report := statusReport{
		Endpoint:  rt.Config.Endpoint,
		Boundary:  boundary,
		KeySource: string(rt.KeySource),
		StorePath: rt.Config.StorePath,
		Rejected:  snap.Rejected,
	}
	for _, kind := range links.Kinds {
		cm := snap.Meta.For(kind)
		cs := collectionStatus{
			Collection: kind.String(),
			Source:     string(snap.Source(kind)),
			Entries:    snap.Dataset(kind).Len(),
			LastError:  cm.LastError,
		}
		if cm.LastOkAt != nil {
			cs.LastOkAt = formatTime(cm.LastOkAt)
		}
		report.Collections = append(report.Collections, cs)
	}
	return report, nil
}

func printStatus(cmd *cobra.Command, report statusReport) error {
	out := cmd.OutOrStdout()
	pterm.Fprintln(out, pterm.Bold.Sprint("Endpoint:  ")+orDash(report.Endpoint))
	pterm.Fprintln(out, pterm.Bold.Sprint("Boundary:  ")+report.Boundary)
	pterm.Fprintln(out, pterm.Bold.Sprint("Key:       ")+report.KeySource)
	pterm.Fprintln(out, pterm.Bold.Sprint("Store:     ")+report.StorePath)
	pterm.Fprintln(out)

	rows := pterm.TableData{{"Collection", "Source", "Entries", "Last OK", "Last error"}}
	for _, c := range report.Collections {
		lastOk := c.LastOkAt
		if lastOk == "" {
			lastOk = "never"
		}
		rows = append(rows, []string{c.Collection, c.Source, strconv.Itoa(c.Entries), lastOk, orDash(c.LastError)})
	}
	if err := printTable(out, rows); err != nil {
		return err
	}
	for _, r := range report.Rejected {
		warning(out).Printfln("ignored stored %s: %s", r.Key, r.Reason)
	}
	return nil
}
