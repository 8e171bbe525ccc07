package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/five82/quicklinks/internal/app"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/state"
)

func newRecentCmd(e env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened customers, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				snap, err := rt.Controller.Refresh(ctx)
				if err != nil {
					return err
				}
				customers := links.CustomersByID(snap.Customers.Customers, snap.Recent)
				out := cmd.OutOrStdout()
				if output == outputJSON {
					return printJSON(out, customers)
				}
				if len(customers) == 0 {
					info(out).Println("No recently used customers")
					return nil
				}
				rows := pterm.TableData{{"ID", "Name", "Links", "Tags"}}
				for _, c := range customers {
					rows = append(rows, []string{c.ID, c.Name, strconv.Itoa(len(c.Links)), orDash(strings.Join(c.Tags, ", "))})
				}
				return printTable(out, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json")
	return cmd
}

func newOpenCmd(e env) *cobra.Command {
	var (
		all        bool
		collection string
	)
	cmd := &cobra.Command{
		Use:   "open <folder-or-customer-id> [link title]",
		Short: "Open a link of a folder or customer in the browser",
		Long: `Open a link by its owner id and title. Customers are searched before
standard folders unless --collection is given. Opening a customer link
records the customer as recently used.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only links.Kind
			if collection != "" {
				kind, err := links.ParseKind(collection)
				if err != nil {
					return err
				}
				only = kind
			}
			title := ""
			if len(args) == 2 {
				title = args[1]
			}
			return e.withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				snap, err := rt.Controller.Refresh(ctx)
				if err != nil {
					return err
				}
				kind, group, ok := findGroup(snap, args[0], only)
				if !ok {
					return fmt.Errorf("no folder or customer with id %q", args[0])
				}
				intent, err := openIntent(group, title, all)
				if err != nil {
					return err
				}
				out, err := rt.Controller.Dispatch(ctx, popup.State{View: kind}, intent)
				if err != nil {
					return err
				}
				if out.IsError {
					return fmt.Errorf("%s", out.Message)
				}
				success(cmd.OutOrStdout()).Println(out.Message)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "open every link of the folder or customer")
	cmd.Flags().StringVar(&collection, "collection", "", "restrict the lookup to standard or customers")
	return cmd
}

// findGroup looks id up among customers, then folders. A non-empty only
// restricts the lookup to that collection.
func findGroup(snap state.Snapshot, id string, only links.Kind) (links.Kind, popup.Group, bool) {
	if only == "" || only == links.Customers {
		if c, ok := lo.Find(snap.Customers.Customers, func(c links.Customer) bool { return c.ID == id }); ok {
			return links.Customers, popup.Group{ID: c.ID, Title: c.Name, Tags: c.Tags, Links: c.Links}, true
		}
	}
	if only == "" || only == links.Standard {
		if f, ok := lo.Find(snap.Standard.Folders, func(f links.Folder) bool { return f.ID == id }); ok {
			return links.Standard, popup.Group{ID: f.ID, Title: f.Name, Links: f.Items}, true
		}
	}
	return "", popup.Group{}, false
}

func openIntent(group popup.Group, title string, all bool) (popup.Intent, error) {
	if len(group.Links) == 0 {
		return popup.Intent{}, fmt.Errorf("%s has no links", group.Title)
	}
	if all {
		return popup.OpenEvery(group.ID, group.URLs()), nil
	}
	if title == "" {
		if len(group.Links) == 1 {
			return popup.Open(group.ID, group.Links[0].URL), nil
		}
		titles := lo.Map(group.Links, func(l links.Link, _ int) string { return l.Title })
		return popup.Intent{}, fmt.Errorf("%s has %d links, pick one of: %s (or use --all)",
			group.Title, len(group.Links), strings.Join(titles, ", "))
	}
	want := links.Normalize(title)
	link, ok := lo.Find(group.Links, func(l links.Link) bool { return links.Normalize(l.Title) == want })
	if !ok {
		return popup.Intent{}, fmt.Errorf("%s has no link titled %q", group.Title, title)
	}
	return popup.Open(group.ID, link.URL), nil
}
