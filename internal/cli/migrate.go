package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"questboard/internal/db"
	"questboard/internal/model"
	"questboard/internal/reorder"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			v, err := repo.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <habit|task|project> <active-id> <over-id>",
		Short: "Move an item onto another item's position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.Kind(args[0])
			if !model.ValidKinds[kind] {
				return fmt.Errorf("unknown kind %q (want habit, task or project)", args[0])
			}

			st, repo, err := app.loadStore(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			ids, err := st.Reorder(cmd.Context(), kind, reorder.Event{
				Active: reorder.Ref{ID: args[1]},
				Over:   reorder.Ref{ID: args[2]},
			})
			if errors.Is(err, reorder.ErrIndexMiss) {
				return fmt.Errorf("order unchanged: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, "\n"))
			return nil
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <habit|task|project> <id>",
		Short: "Print a stored item as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.Kind(args[0])
			if !model.ValidKinds[kind] {
				return fmt.Errorf("unknown kind %q (want habit, task or project)", args[0])
			}

			repo, err := app.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			rec, err := repo.Get(cmd.Context(), kind, args[1])
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("no %s with id %q", kind, args[1])
			}
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
