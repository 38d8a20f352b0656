package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/daemon"
)

var (
	userEmail     string
	userPassword  string
	userFirstName string
	userLastName  string
	userStoreID   string

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	userAddCmd = &cobra.Command{
		Use:     "add <username>",
		Short:   "Create an active local user",
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

			user, err := auth.NewLocalProvider(db).CreateUser(
				cmd.Context(), args[0], userEmail, userPassword, userFirstName, userLastName,
			)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), user.ID)

			return err
		},
	}

	userDisableCmd = &cobra.Command{
		Use:     "disable <username>",
		Short:   "Deactivate a user; open sessions stop working on their next request",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setUserActive(cmd, args[0], false)
		},
	}

	userEnableCmd = &cobra.Command{
		Use:     "enable <username>",
		Short:   "Reactivate a user",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setUserActive(cmd, args[0], true)
		},
	}

	userPermissionsCmd = &cobra.Command{
		Use:     "permissions <username>",
		Short:   "List the effective permissions of a user in a store",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			user, err := auth.NewLocalProvider(db).GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}

			perms, err := auth.NewService(db).GetUserPermissions(cmd.Context(), user.ID, userStoreID)
			if err != nil {
				return err
			}

			for _, p := range perms {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}

			return nil
		},
	}
)

func setUserActive(cmd *cobra.Command, username string, active bool) error {
	db, err := daemon.OpenDB(&cfg)
	if err != nil {
		return err
	}

	users := auth.NewLocalProvider(db)

	user, err := users.GetUserByUsername(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}

	if err = users.SetActive(cmd.Context(), user.ID, active); err != nil {
		return err
	}

	state := "disabled"
	if active {
		state = "enabled"
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", username, state)

	return err
}

func init() { //nolint: gochecknoinits
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "E-mail address")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password")
	userAddCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name")
	userAddCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name")

	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")

	userPermissionsCmd.Flags().StringVar(&userStoreID, "store", "", "Store id")
	_ = userPermissionsCmd.MarkFlagRequired("store")

	userCmd.AddCommand(userAddCmd, userDisableCmd, userEnableCmd, userPermissionsCmd)
	rootCmd.AddCommand(userCmd)
}
