package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/tui"
	"github.com/xolan/hourcal/internal/tui/ui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal calendar",
	Long: `Launch the interactive terminal calendar.

The month grid works like the web calendar: click a day to tap it, hold the
mouse button on it for a long press. The keyboard does the same with enter
(tap) and space (hold).

Views available:
  - Calendar: The month grid with hours, ferie and permesso
  - Summary: Monthly totals and hours per week
  - Config: Current settings and the theme selector

Logs are written to a file (log.file, or hourcal.log next to the config file)
so they do not disturb the screen.

Keyboard shortcuts:
  - Tab/Shift+Tab: Navigate between views
  - 1-3: Jump to specific view
  - arrows or hjkl: Move the selection
  - [ and ]: Previous and next month
  - ?: Show help
  - q: Quit`,
	Run: func(cmd *cobra.Command, args []string) {
		if listThemes, _ := cmd.Flags().GetBool("list-themes"); listThemes {
			printThemes()
			return
		}
		runTUI()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().Bool("list-themes", false, "List the available color themes and exit")

	// Add --tui flag to root command for quick access
	rootCmd.PersistentFlags().Bool("tui", false, "Launch interactive terminal UI")
}

// runTUI opens the entry store and runs the TUI until it quits
func runTUI() {
	s, ok := openSession(nil)
	if !ok {
		return
	}
	defer s.Close()

	if err := tui.Run(s.services, s.log); err != nil {
		fail("Failed to run the terminal calendar", err, "")
		return
	}
}

func printThemes() {
	tp := ui.NewThemeProvider("")
	for _, id := range tp.AvailableThemes() {
		_, _ = fmt.Fprintln(deps.Stdout, id)
	}
}

// CheckTUIFlag checks if the --tui flag is set and runs the TUI if so.
// Returns true if the TUI was launched, false otherwise.
func CheckTUIFlag(cmd *cobra.Command) bool {
	tuiFlag, _ := cmd.Root().PersistentFlags().GetBool("tui")
	if tuiFlag {
		runTUI()
		return true
	}
	return false
}
