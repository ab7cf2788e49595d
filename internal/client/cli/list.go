package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// List prints the stored credentials as a table, or as JSON with asJSON.
func (a *App) List(ctx context.Context, asJSON bool) error {
	list, err := a.client.ShowPasswords(ctx)
	if err != nil {
		return explain(err)
	}

	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		printInfo(a.out, "No passwords stored")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tPASSWORD")
	for _, c := range list {
		pw := c.Password
		if c.Error != "" {
			pw = errorColor.Sprintf("<%s>", c.Error)
		}
		fmt.Fprintf(tw, "%s\t%s\n", c.Site, pw)
	}
	return tw.Flush()
}
