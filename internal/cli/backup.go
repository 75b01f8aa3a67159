package cli

import (
	"fmt"
	"gomata/internal/backup"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newBackupCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the current registry snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := app.backups(cmd.Context())
			if err != nil {
				return err
			}
			info, err := mgr.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot archived: %s (%d bytes)\n", info.Key, info.Size)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := app.backups(cmd.Context())
			if err != nil {
				return err
			}
			infos, err := mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots archived.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})
	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete archived snapshots except the newest ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := app.backups(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := mgr.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			for _, key := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d snapshots, kept at most %d\n", len(removed), keep)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 5, "number of newest snapshots to keep")
	cmd.AddCommand(prune)
	return cmd
}

func newRestoreCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-key|latest>",
		Short: "Replace the registry contents with an archived snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := app.backups(cmd.Context())
			if err != nil {
				return err
			}
			n, err := mgr.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			key := args[0]
			if key == backup.Latest {
				key = "latest snapshot"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d records from %s\n", n, key)
			return nil
		},
	}
}
