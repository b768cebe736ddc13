package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a contact with full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				c, err := s.store.FindByID(args[0])
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				printContact(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var fields contactFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Long: `Add creates a contact. At least one of --first or --last is required.

Example:
  rolodex add --first Ada --last Lovelace --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _ := fields.draft(cmd)
			return a.withSession(cmd, func(s *session) error {
				c, err := s.store.Add(d)
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", c.FullName(), c.ID)
				return nil
			})
		},
	}
	fields.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var fields contactFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update contact fields",
		Long: `Update changes only the fields given as flags. Pass an empty value to
clear an optional field, e.g. --company "".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, set := fields.draft(cmd)
			if !set {
				return userError(errors.New("update: at least one field flag must be provided"))
			}
			return a.withSession(cmd, func(s *session) error {
				c, err := s.store.Update(args[0], d)
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", c.FullName(), c.ID)
				return nil
			})
		},
	}
	fields.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				if err := s.store.Remove(args[0]); err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newFavoriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a contact's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				c, err := s.store.ToggleFavorite(args[0])
				if err != nil {
					return classify(err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				verb := "Unfavorited"
				if c.Favorite {
					verb = "Favorited"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, c.FullName())
				return nil
			})
		},
	}
}
