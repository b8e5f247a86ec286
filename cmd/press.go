package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/service"
)

var longPressFlag bool

// pressCmd represents the press command
var pressCmd = &cobra.Command{
	Use:   "press <date>",
	Short: "Tap or hold a day, like in the calendar",
	Long: `Apply a calendar gesture to one day.

A tap (the default) records the default hours on an empty, ferie or
permesso day and opens the hours prompt on a day with hours.
A hold (--long) cycles the day through ferie, permesso and empty.

At the hours prompt:
  <enter>         Keep the shown value
  <number>        Record that many hours (0 clears the day)
  + / -           Add or remove one hour
  c               Cancel

Examples:
  hourcal press today
  hourcal press 2025-03-14 --long`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pressDay(args[0], longPressFlag)
	},
}

func init() {
	rootCmd.AddCommand(pressCmd)
	pressCmd.Flags().BoolVarP(&longPressFlag, "long", "l", false, "hold instead of tap")
}

func pressDay(input string, long bool) {
	date, ok := dateArg(input)
	if !ok {
		return
	}
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	cal := s.services.Calendar
	if err := cal.Press(date, long); err != nil {
		reportCalendarError(s, err)
		return
	}

	if _, open := cal.Prompt(); open {
		if err := runPrompt(cal); err != nil {
			reportCalendarError(s, err)
			return
		}
	}

	if e, found := cal.Get(date); found {
		_, _ = fmt.Fprintf(deps.Stdout, "%s: %s\n", date, e)
	} else {
		_, _ = fmt.Fprintf(deps.Stdout, "%s: no entry\n", date)
	}
}

// runPrompt drives the open hours prompt from deps.Stdin until it is
// confirmed or cancelled. End of input cancels.
func runPrompt(cal *service.CalendarService) error {
	scanner := bufio.NewScanner(deps.Stdin)
	for {
		p, open := cal.Prompt()
		if !open {
			return nil
		}
		_, _ = fmt.Fprintf(deps.Stdout, "Ore %s [%d]: ", p.Date, p.Value)

		if !scanner.Scan() {
			_, _ = fmt.Fprintln(deps.Stdout)
			return cal.ApplyPrompt(service.PromptCancel, 0)
		}

		answer := strings.TrimSpace(scanner.Text())
		var err error
		switch answer {
		case "":
			err = cal.ApplyPrompt(service.PromptConfirm, 0)
		case "+":
			err = cal.ApplyPrompt(service.PromptIncrement, 0)
		case "-":
			err = cal.ApplyPrompt(service.PromptDecrement, 0)
		case "c", "cancel":
			err = cal.ApplyPrompt(service.PromptCancel, 0)
		default:
			v, convErr := strconv.Atoi(strings.TrimSuffix(answer, "h"))
			if convErr != nil {
				_, _ = fmt.Fprintf(deps.Stderr, "Invalid hours '%s'\n", answer)
				continue
			}
			if err = cal.ApplyPrompt(service.PromptSet, v); err == nil {
				err = cal.ApplyPrompt(service.PromptConfirm, 0)
			}
		}
		if err != nil {
			return err
		}
	}
}
