package cli

import (
	"encoding/json"
	"fmt"
	"gomata/internal/render"
	"gomata/pkg/domain"
	"io"

	"github.com/spf13/cobra"
)

func newRegisterCommand(app *App) *cobra.Command {
	var (
		owner, breed, gender, color, location string
		age                                   int
		extra                                 []string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register new cattle and print its Adhaar ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := parseFields(extra)
			if err != nil {
				return err
			}
			if location != "" {
				fields = fields.With("location", location)
			}
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.Register(cmd.Context(), owner, breed, age, gender, color, fields)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ SUCCESS! Cattle registered with Adhaar ID: %s\n", id)
			fmt.Fprintln(out, "  Please save this 12-digit ID for future reference.")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&owner, "owner", "", "owner name")
	f.StringVar(&breed, "breed", "", "breed (e.g. Jersey, Gir, Holstein)")
	f.IntVar(&age, "age", 0, "age in years")
	f.StringVar(&gender, "gender", "", "gender (Male/Female/Ox)")
	f.StringVar(&color, "color", "", "color or markings")
	f.StringVar(&location, "location", "", "location")
	f.StringArrayVar(&extra, "field", nil, "additional key=value field (repeatable)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newVerifyCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify <adhaar-id>",
		Short: "Show the record registered under an Adhaar ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			rec, ok := svc.Verify(args[0])
			if asJSON && ok {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			render.Record(cmd.OutOrStdout(), rec, ok)
			if !ok {
				return notFound(args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}

func newUpdateCommand(app *App) *cobra.Command {
	var (
		owner, location string
		extra           []string
	)
	cmd := &cobra.Command{
		Use:   "update <adhaar-id>",
		Short: "Overlay fields onto an existing record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseFields(extra)
			if err != nil {
				return err
			}
			if owner != "" {
				updates = updates.With(domain.FieldOwnerName, owner)
			}
			if location != "" {
				updates = updates.With("location", location)
			}
			out := cmd.OutOrStdout()
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			if _, found := svc.Verify(args[0]); !found {
				fmt.Fprintln(out, "✗ Cattle not found!")
				return notFound(args[0])
			}
			if len(updates) == 0 {
				fmt.Fprintln(out, "No updates made.")
				return nil
			}
			ok, err := svc.Update(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "✗ Cattle not found!")
				return notFound(args[0])
			}
			fmt.Fprintln(out, "✓ Information updated successfully!")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&owner, "owner", "", "new owner name")
	f.StringVar(&location, "location", "", "new location")
	f.StringArrayVar(&extra, "field", nil, "key=value field to set (repeatable)")
	return cmd
}

func newSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <owner-name>",
		Short: "List cattle registered to an owner (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			render.SearchResults(cmd.OutOrStdout(), args[0], svc.SearchByOwner(args[0]))
			return nil
		},
	}
}

func newDeactivateCommand(app *App) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "deactivate <adhaar-id>",
		Short: "Mark a record Inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := svc.Deactivate(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "✗ Cattle not found!")
				return notFound(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Cattle deactivated successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason for deactivation")
	return cmd
}

func newStatsCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show registry statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service(cmd.Context())
			if err != nil {
				return err
			}
			stats := svc.Statistics()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			render.Statistics(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
