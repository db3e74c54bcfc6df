package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type loginFlags struct {
	email    string
	password string
	confirm  string
}

func newLoginCommand(rt *runtime) *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			result, err := a.svc.Login(cmd.Context(), flags.email, flags.password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", flags.email, result.Role)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "Account email")
	cmd.Flags().StringVar(&flags.password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.confirm == "" {
				flags.confirm = flags.password
			}
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			if err := a.svc.Register(cmd.Context(), flags.email, flags.password, flags.confirm); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "registered", flags.email)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "Account email")
	cmd.Flags().StringVar(&flags.password, "password", "", "Account password")
	cmd.Flags().StringVar(&flags.confirm, "confirm-password", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			return a.svc.Logout()
		},
	}
}

func newAdminCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer user accounts",
	}

	var page, size int
	users := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			result, err := a.svc.ListUsers(cmd.Context(), page, size)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tROLE\tCREATED")
			for _, u := range result.Records {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.CreateTime)
			}
			fmt.Fprintf(w, "-- page %d of %d, %d users\n", result.Current, result.Pages, result.Total)
			return w.Flush()
		},
	}
	users.Flags().IntVar(&page, "page", 1, "Page number")
	users.Flags().IntVar(&size, "size", 10, "Page size")

	deleteUser := &cobra.Command{
		Use:   "delete-user <id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.wire(cmd)
			if err != nil {
				return err
			}
			return a.svc.DeleteUser(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(users, deleteUser)
	return cmd
}
