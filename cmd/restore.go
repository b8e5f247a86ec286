package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/storage"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [backup_number]",
	Short: "Restore the entry store from a backup",
	Long: `Restore the entry store from a backup.

A backup is taken before every rewrite of the entry store, keeping the last
three. By default the most recent one (1) is restored. The current entries
are backed up first, so a restore can be undone with another restore.

Examples:
  hourcal restore       Restore from most recent backup
  hourcal restore 2     Restore from backup #2`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		restoreFromBackup(args)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// restoreFromBackup handles the restore command logic
func restoreFromBackup(args []string) {
	backupNum := 1
	if len(args) > 0 {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid backup number '%s'\n", args[0])
			deps.Exit(1)
			return
		}
		if num < 1 || num > storage.MaxBackupCount {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup number must be between 1 and %d (got %d)\n", storage.MaxBackupCount, num)
			deps.Exit(1)
			return
		}
		backupNum = num
	}

	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	cal := s.services.Calendar
	backups, err := cal.Backups()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to list backups: %v\n", err)
		deps.Exit(1)
		return
	}

	if len(backups) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No backups available")
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Available backups:")
	backupExists := false
	for _, backup := range backups {
		suffix := ""
		if backup.Number == 1 {
			suffix = " (most recent)"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "  %d: %s, %d bytes%s\n", backup.Number, backup.Key, backup.Size, suffix)
		if backup.Number == backupNum {
			backupExists = true
		}
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if !backupExists {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Backup %d does not exist\n", backupNum)
		deps.Exit(1)
		return
	}

	if err := cal.Restore(backupNum); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to restore backup: %v\n", err)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Successfully restored from backup %d (%d loaded)\n", backupNum, cal.Health().Loaded)
}
