package cmd

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/service"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:     "summary [month]",
	Aliases: []string{"total", "stats"},
	Short:   "Show monthly totals",
	Long: `Show the totals of one month (the current one by default).

Displays:
  - Total hours and the average per worked day
  - Ferie and permesso days
  - Working days (weekdays that are not public holidays)
  - Hours per ISO week
  - Public holidays in the month
  - Comparison to the previous month

Examples:
  hourcal summary               This month
  hourcal summary 2025-03       March 2025`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSummary(args)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(args []string) {
	month, ok := monthArg(args)
	if !ok {
		return
	}
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	cal := s.services.Calendar
	summary := cal.Summary(month)
	previous := cal.Summary(month.Prev())

	_, _ = fmt.Fprintf(deps.Stdout, "Summary for %s\n", month.Label())
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 60))
	_, _ = fmt.Fprintln(deps.Stdout)

	displaySummary(summary)
	_, _ = fmt.Fprintf(deps.Stdout, "Comparison:      %s\n", formatComparison(summary.TotalHours-previous.TotalHours))
	_, _ = fmt.Fprintln(deps.Stdout)

	displayWeeks(summary.Weeks)
	if len(summary.Holidays) > 0 {
		displayHolidays(summary.Holidays)
	}
}

// displaySummary formats the month totals
func displaySummary(s service.MonthSummary) {
	_, _ = fmt.Fprintf(deps.Stdout, "Total Hours:     %dh\n", s.TotalHours)
	_, _ = fmt.Fprintf(deps.Stdout, "Average/Day:     %.1fh\n", s.AverageHours)
	_, _ = fmt.Fprintf(deps.Stdout, "Worked:          %d/%d %s\n", s.WorkedDays, s.WorkingDays, pluralize("day", s.WorkingDays))
	_, _ = fmt.Fprintf(deps.Stdout, "Ferie:           %d %s\n", s.VacationDays, pluralize("day", s.VacationDays))
	_, _ = fmt.Fprintf(deps.Stdout, "Permessi:        %d %s\n", s.LeaveDays, pluralize("day", s.LeaveDays))
}

// formatComparison describes the change from the previous month.
func formatComparison(diff int) string {
	switch {
	case diff > 0:
		return fmt.Sprintf("+%dh vs last month", diff)
	case diff < 0:
		return fmt.Sprintf("%dh vs last month", diff)
	}
	return "same as last month"
}

func displayWeeks(weeks []service.WeekTotal) {
	_, _ = fmt.Fprintln(deps.Stdout, "By Week:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 60))

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, w := range weeks {
		tbl.AddRow(fmt.Sprintf("  Week %d", w.Week), fmt.Sprintf("%dh", w.Hours))
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
	_, _ = fmt.Fprintln(deps.Stdout)
}

func displayHolidays(days []service.DayView) {
	_, _ = fmt.Fprintln(deps.Stdout, "Holidays:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 60))

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, d := range days {
		tbl.AddRow("  "+d.Date, d.Weekday, d.Holiday)
	}
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
	_, _ = fmt.Fprintln(deps.Stdout)
}
