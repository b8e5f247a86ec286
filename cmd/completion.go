package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/storage"
	"github.com/xolan/hourcal/internal/timeutil"
)

// Shell completion scripts come from cobra's built-in "completion" command;
// these functions add completions for the calendar's own arguments.

// entryValues are the non-numeric values accepted by "set"
var entryValues = []string{"ferie", "permesso", "none"}

func init() {
	for _, c := range []*cobra.Command{getCmd, pressCmd, clearCmd} {
		c.ValidArgsFunction = completeDate
	}
	setCmd.ValidArgsFunction = completeSet
	rootCmd.ValidArgsFunction = completeMonth
	summaryCmd.ValidArgsFunction = completeMonth
	restoreCmd.ValidArgsFunction = completeBackup
	_ = exportCmd.RegisterFlagCompletionFunc("month", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return monthCandidates(), cobra.ShellCompDirectiveNoFileComp
	})
}

// completeDate offers today, yesterday and every day of the current month.
func completeDate(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return dateCandidates(), cobra.ShellCompDirectiveNoFileComp
}

func completeSet(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return dateCandidates(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		return entryValues, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeMonth offers the current month and the eleven before it.
func completeMonth(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return monthCandidates(), cobra.ShellCompDirectiveNoFileComp
}

func completeBackup(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	nums := make([]string, 0, storage.MaxBackupCount)
	for i := 1; i <= storage.MaxBackupCount; i++ {
		nums = append(nums, strconv.Itoa(i))
	}
	return nums, cobra.ShellCompDirectiveNoFileComp
}

func dateCandidates() []string {
	m := timeutil.MonthOf(deps.Now())
	dates := []string{"today", "yesterday"}
	for d := 1; d <= m.Days(); d++ {
		dates = append(dates, m.Key(d))
	}
	return dates
}

func monthCandidates() []string {
	m := timeutil.MonthOf(deps.Now())
	months := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, m.String())
		m = m.Prev()
	}
	return months
}
