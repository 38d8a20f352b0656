package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopkeep/shopkeep/internal/auth"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions [search]",
	Short: "Print the permission catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var search string
		if len(args) == 1 {
			search = args[0]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd

		for _, c := range auth.Categories(search) {
			_, _ = fmt.Fprintf(w, "%s\n", c.Name)

			for _, d := range c.Permissions {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", d.Name, d.Description)
			}
		}

		return w.Flush()
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(permissionsCmd)
}
