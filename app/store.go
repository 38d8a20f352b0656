package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/daemon"
	"github.com/shopkeep/shopkeep/internal/db/controller/store"
)

var (
	storeOwner string

	storeCmd = &cobra.Command{
		Use:   "store",
		Short: "Manage stores",
	}

	storeAddCmd = &cobra.Command{
		Use:     "add <name>",
		Short:   "Create a store with its default Manager and Viewer roles",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			if err = daemon.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			owner, err := auth.NewLocalProvider(db).GetUserByUsername(cmd.Context(), storeOwner)
			if err != nil {
				return fmt.Errorf("owner %s: %w", storeOwner, err)
			}

			s, err := store.Create(cmd.Context(), db, owner.ID, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.ID)

			return err
		},
	}

	storeListCmd = &cobra.Command{
		Use:     "list",
		Short:   "List the stores owned by a user",
		Args:    cobra.NoArgs,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			owner, err := auth.NewLocalProvider(db).GetUserByUsername(cmd.Context(), storeOwner)
			if err != nil {
				return fmt.Errorf("owner %s: %w", storeOwner, err)
			}

			stores, err := store.ListOwned(cmd.Context(), db, owner.ID)
			if err != nil {
				return err
			}

			for _, s := range stores {
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name); err != nil {
					return err
				}
			}

			return nil
		},
	}
)

func init() { //nolint: gochecknoinits
	storeAddCmd.Flags().StringVar(&storeOwner, "owner", "", "Username of the store owner")
	_ = storeAddCmd.MarkFlagRequired("owner")

	storeListCmd.Flags().StringVar(&storeOwner, "owner", "", "Username of the store owner")
	_ = storeListCmd.MarkFlagRequired("owner")

	storeCmd.AddCommand(storeAddCmd, storeListCmd)
	rootCmd.AddCommand(storeCmd)
}
