package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func checkOutput(output string) error {
	if output != outputText && output != outputJSON {
		return fmt.Errorf("unsupported --output value %q: use text or json", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, rows pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(w).Render()
}

func success(w io.Writer) *pterm.PrefixPrinter { return pterm.Success.WithWriter(w) }
func info(w io.Writer) *pterm.PrefixPrinter    { return pterm.Info.WithWriter(w) }
func warning(w io.Writer) *pterm.PrefixPrinter { return pterm.Warning.WithWriter(w) }

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
