package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskden/internal/ops"
)

// backup and restore run against a local data directory, so they are
// server-side admin commands rather than API calls.

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [archive.tar.gz]",
		Short: "Archive a local data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if err := ops.BackupDataDir(dataDir, args[0]); err != nil {
				return err
			}
			m, err := ops.ReadManifest(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("backed up %d files from %s to %s\n", m.Files, dataDir, args[0])
			return nil
		},
	}
	cmd.Flags().String("data-dir", "data", "data directory to archive")
	return cmd
}

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [archive.tar.gz]",
		Short: "Restore a backup into a local data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			m, err := ops.ReadManifest(args[0])
			if err != nil {
				return err
			}
			if err := ops.RestoreDataDir(args[0], dataDir); err != nil {
				return err
			}
			fmt.Printf("restored %d files (taken %s) into %s\n", m.Files, m.CreatedAt.Format("2006-01-02 15:04"), dataDir)
			return nil
		},
	}
	cmd.Flags().String("data-dir", "data", "target data directory")
	return cmd
}
