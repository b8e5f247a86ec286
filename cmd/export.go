package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/export"
	"github.com/xolan/hourcal/internal/timeutil"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export entries to various formats",
	Long: `Export entries for backup, migration or use in other tools.

Available formats:
  json    Entries with totals and filter metadata
  yaml    Same layout as json
  csv     One row per day with headers
  ics     One all-day event per day, to overlay on another calendar

Date Filtering:
  Use --month to export one month
  Use --from and --to to export a date range (either end may be omitted)

Examples:
  hourcal export json                          Export all entries as JSON
  hourcal export json > backup.json            Export to file
  hourcal export csv --month 2025-03           Export March 2025
  hourcal export ics --from 2025-01-01 > hours.ics`,
	ValidArgs: export.Formats,
	Args:      cobra.ExactValidArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runExport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("from", "", "Start date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	exportCmd.Flags().String("to", "", "End date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	exportCmd.Flags().String("month", "", "Export one month (YYYY-MM or MM/YYYY)")
}

// runExport handles the export command logic
func runExport(cmd *cobra.Command, format string) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	monthStr, _ := cmd.Flags().GetString("month")

	start, end, err := timeutil.ParseDateRangeFlags(fromStr, toStr, monthStr)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	records := export.Collect(s.services.Calendar.Snapshot(), start, end)

	criteria := map[string]string{}
	if monthStr != "" {
		criteria["month"] = monthStr
	}
	if fromStr != "" {
		criteria["from"] = start.Format(timeutil.KeyLayout)
	}
	if toStr != "" {
		criteria["to"] = end.Format(timeutil.KeyLayout)
	}
	now := deps.Now()

	switch strings.ToLower(format) {
	case "json":
		err = export.WriteJSON(deps.Stdout, export.NewDocument(records, now, criteria))
	case "yaml":
		err = export.WriteYAML(deps.Stdout, export.NewDocument(records, now, criteria))
	case "csv":
		err = export.WriteCSV(deps.Stdout, records)
	case "ics":
		err = export.WriteICS(deps.Stdout, records, now)
	default:
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unsupported format '%s'\n", format)
		_, _ = fmt.Fprintf(deps.Stderr, "Supported formats: %s\n", strings.Join(export.Formats, ", "))
		deps.Exit(1)
		return
	}

	if err != nil {
		fail(fmt.Sprintf("Failed to write %s output", format), err, "")
		return
	}
}
