package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var yesFlag bool

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear <date>",
	Short: "Remove the entry of one day",
	Long: `Remove the entry recorded for one day.
A confirmation prompt will be shown unless --yes is specified.

Example:
  hourcal clear 2025-03-14
  hourcal clear today --yes`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		clearEntry(args[0])
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip confirmation prompt")
}

// clearEntry removes the entry of one day
func clearEntry(input string) {
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
		_, _ = fmt.Fprintf(deps.Stderr, "Error: No entry on %s\n", date)
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Entry to clear:\n  %s  %s\n", date, e)
	if !yesFlag && !promptConfirmation("Clear this entry?") {
		_, _ = fmt.Fprintln(deps.Stdout, "Cancelled")
		return
	}

	if err := s.services.Calendar.Set(date, nil); err != nil {
		reportCalendarError(s, err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Cleared: %s (%s)\n", date, e)
}

// promptConfirmation asks a yes/no question on deps.Stdin.
// Returns true if the user answers 'y' or 'Y', false otherwise
func promptConfirmation(question string) bool {
	_, _ = fmt.Fprintf(deps.Stdout, "%s [y/N]: ", question)

	scanner := bufio.NewScanner(deps.Stdin)
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(scanner.Text())
	return response == "y" || response == "Y"
}
