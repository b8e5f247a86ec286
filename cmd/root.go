package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/service"
	"github.com/xolan/hourcal/internal/storage"
	"github.com/xolan/hourcal/internal/timeutil"
)

var rootCmd = &cobra.Command{
	Use:   "hourcal [month]",
	Short: "An offline-first work hours calendar",
	Long: `hourcal records worked hours, vacation (ferie) and leave (permesso) per day.

Usage:
  hourcal                          List this month's entries
  hourcal 2025-03                  List the entries of March 2025
  hourcal get <date>               Show the entry of one day
  hourcal set <date> <value>       Record hours, ferie or permesso
  hourcal press <date> [--long]    Tap or hold a day, like in the calendar
  hourcal clear <date>             Remove the entry of one day
  hourcal summary [month]          Monthly totals and week breakdown
  hourcal serve                    Run the web calendar
  hourcal tui                      Run the terminal calendar
  hourcal validate                 Check entry store health
  hourcal restore [n]              Restore from backup (default: most recent)

Dates: YYYY-MM-DD, DD/MM/YYYY, today or yesterday
Months: YYYY-MM or MM/YYYY
Values: 8 or 8h (hours), ferie, permesso, none`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if CheckTUIFlag(cmd) {
			return
		}
		month, ok := monthArg(args)
		if !ok {
			return
		}
		listMonth(month)
	},
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <date>",
	Short: "Show the entry of one day",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getEntry(args[0])
	},
}

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <date> <value>",
	Short: "Record the entry of one day",
	Long: `Record hours, vacation or leave for one day, replacing what was there.

Values:
  8, 8h                     Worked hours (0-24, 0 clears the day)
  ferie, vacation, v        Vacation day
  permesso, leave, p        Leave day
  none, clear, -            Clear the day

Examples:
  hourcal set today 8
  hourcal set 2025-03-14 ferie
  hourcal set 14/03/2025 none`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setEntry(args[0], args[1])
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check entry store health",
	Long:  `Load the entry store and report how many entries were kept, migrated from the legacy form or dropped.`,
	Run: func(cmd *cobra.Command, args []string) {
		validateStorage()
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"hourcal version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// monthArg returns the month named by the optional argument, defaulting to the current one.
func monthArg(args []string) (timeutil.Month, bool) {
	if len(args) == 0 || args[0] == "" {
		return timeutil.MonthOf(deps.Now()), true
	}
	m, err := timeutil.ParseMonth(args[0])
	if err != nil {
		fail(fmt.Sprintf("Invalid month '%s'", args[0]), err, "Use format like 2025-03 or 03/2025")
		return timeutil.Month{}, false
	}
	return m, true
}

// dateArg parses a date argument into a date key.
func dateArg(input string) (string, bool) {
	t, err := timeutil.ParseDate(input)
	if err != nil {
		fail(fmt.Sprintf("Invalid date '%s'", input), err, "Use format like 2025-03-14 or 14/03/2025")
		return "", false
	}
	return timeutil.KeyOf(t), true
}

// listMonth prints every day of m that has an entry or a holiday.
func listMonth(m timeutil.Month) {
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	view := s.services.Calendar.View(m)
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Date"), bold.Sprint("Day"), bold.Sprint("Entry"), bold.Sprint("Holiday"))
	rows := 0
	for _, d := range view.Days {
		if d.Entry == nil && d.Holiday == "" {
			continue
		}
		tbl.AddRow(d.Date, d.Weekday, d.Label, d.Holiday)
		rows++
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Entries for %s:\n", view.Label)
	if rows == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No entries found")
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintln(deps.Stdout, formatTotals(view))
}

// formatTotals renders the month's totals line, e.g. "Total: 16h  Ferie: 1  Permessi: 0".
func formatTotals(v service.MonthView) string {
	return fmt.Sprintf("Total: %dh  Ferie: %d  Permessi: %d", v.TotalHours, v.VacationDays, v.LeaveDays)
}

func getEntry(input string) {
	date, ok := dateArg(input)
	if !ok {
		return
	}
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	e, found := s.services.Calendar.Get(date)
	if !found {
		_, _ = fmt.Fprintf(deps.Stdout, "%s: no entry\n", date)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "%s: %s\n", date, e)
}

func setEntry(input, value string) {
	date, ok := dateArg(input)
	if !ok {
		return
	}
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	e, err := s.services.Calendar.SetInput(date, value)
	if err != nil {
		reportCalendarError(s, err)
		return
	}
	if e == nil {
		_, _ = fmt.Fprintf(deps.Stdout, "Cleared: %s\n", date)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Set: %s %s\n", date, e)
}

// reportCalendarError explains a failed calendar change.
func reportCalendarError(s *session, err error) {
	if isInputError(err) {
		fail("Invalid entry", err, "Use hours like 8 or 8h, ferie, permesso or none")
		return
	}
	dir, _ := s.cfg.DataDir()
	fail("Failed to save entry to storage", err,
		fmt.Sprintf("Check that the storage directory is writable: %s", dir))
}

func isInputError(err error) bool {
	return errors.Is(err, service.ErrInvalidValue) || errors.Is(err, storage.ErrInvalidDate)
}

// validateStorage reports the entry store's load summary
func validateStorage() {
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	health := s.services.Calendar.Health()
	dir, _ := s.cfg.DataDir()

	_, _ = fmt.Fprintf(deps.Stdout, "Entry store: %s (%s backend, key %s)\n", dir, s.cfg.Storage.Backend, s.cfg.Storage.Key)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "Valid entries:     %d\n", health.Loaded)
	_, _ = fmt.Fprintf(deps.Stdout, "Legacy entries:    %d\n", health.Legacy)
	_, _ = fmt.Fprintf(deps.Stdout, "Dropped entries:   %d\n", health.Dropped)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	switch {
	case health.Corrupt:
		_, _ = fmt.Fprintln(deps.Stderr, "Status: ⚠ Entry store is not readable, it will be replaced on the next change")
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Use 'hourcal restore' to recover from a backup")
	case health.NeedsRewrite():
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Entry store is readable and will be rewritten on the next change")
	default:
		_, _ = fmt.Fprintln(deps.Stdout, "Status: ✓ Entry store is healthy")
	}
}

// pluralize returns the singular or plural form of a word based on count
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
