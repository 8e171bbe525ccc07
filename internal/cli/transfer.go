package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/state"
)

const (
	formatAuto = "auto"
	formatJSON = "json"
	formatYAML = "yaml"
)

func kindArg(args []string) (links.Kind, error) {
	if len(args) == 0 {
		return links.Standard, nil
	}
	return links.ParseKind(args[0])
}

func newExportCmd(e env) *cobra.Command {
	var format, file string
	cmd := &cobra.Command{
		Use:   "export [standard|customers]",
		Short: "Write the effective dataset of a collection",
		Long: `Write the dataset currently in effect for a collection (override, cache or
bundled fallback) as JSON or YAML. The output can be edited and imported back
as a local override.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			if format != formatJSON && format != formatYAML {
				return fmt.Errorf("unsupported --format value %q: use json or yaml", format)
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				text, err := exportText(ctx, rt, kind, format)
				if err != nil {
					return err
				}
				if file == "" || file == "-" {
					_, err = io.WriteString(cmd.OutOrStdout(), text)
					return err
				}
				if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				success(cmd.ErrOrStderr()).Printfln("Exported %s to %s", kind, file)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	cmd.Flags().StringVarP(&file, "file", "f", "", "write to file instead of stdout")
	return cmd
}

func exportText(ctx context.Context, rt *app.Runtime, kind links.Kind, format string) (string, error) {
	if format == formatJSON {
		text, err := rt.Controller.ExportText(ctx, kind)
		if err != nil {
			return "", err
		}
		return text + "\n", nil
	}
	snap, err := state.Load(ctx, rt.Store, rt.Fallback)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(snap.Dataset(kind).Payload())
	if err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return string(data), nil
}

func newImportCmd(e env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <standard|customers> <file|->",
		Short: "Install a local override from a JSON or YAML file",
		Long: `Validate a dataset and install it as the local override of a collection.
The override wins over the synced cache until the next successful sync of
that collection or an explicit reset. A rejected file leaves everything
unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := links.ParseKind(args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			text, err := importJSON(raw, resolveFormat(format, args[1]))
			if err != nil {
				return err
			}
			ds, reason := popup.ParseImport(kind, text)
			if reason != "" {
				return fmt.Errorf("import rejected: %s", reason)
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Controller.InstallOverride(ctx, ds); err != nil {
					return err
				}
				success(cmd.OutOrStdout()).Printfln("import ok (%s local override active, %d entries)", kind, ds.Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatAuto, "input format: auto, json, yaml")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

func resolveFormat(format, name string) string {
	if format != formatAuto {
		return format
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// importJSON converts YAML input to JSON so both formats go through the same
// validator. JSON input is passed through untouched.
func importJSON(raw []byte, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return raw, nil
	case formatYAML:
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("import rejected: invalid yaml: %w", err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("import rejected: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported --format value %q: use auto, json or yaml", format)
	}
}

func newResetCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [standard|customers]",
		Short: "Remove the local override of a collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Controller.ClearOverride(ctx, kind); err != nil {
					return err
				}
				snap, err := rt.Controller.Refresh(ctx)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout()).Printfln("%s (%s now from %s)", popup.MsgOverrideRemoved, kind, snap.Source(kind))
				return nil
			})
		},
	}
}
