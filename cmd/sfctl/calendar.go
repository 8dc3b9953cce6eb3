package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"streetfeast-web/internal/profile"
)

var showEmptyDays bool

var calendarCmd = &cobra.Command{
	Use:   "calendar <truck_id>",
	Short: "List the days a truck is scheduled",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().BoolVar(&showEmptyDays, "all", false, "include days with nothing scheduled")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	session, err := loadSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	view, err := session.View(time.Now())
	if err != nil {
		return err
	}
	printCalendar(cmd.OutOrStdout(), view, showEmptyDays)
	return nil
}

func printCalendar(w io.Writer, view *profile.View, all bool) {
	printed := 0
	for _, day := range view.Days {
		if !day.HasOccurrence && !all {
			continue
		}
		printed++
		fmt.Fprintf(w, "%s %s %2d\n", day.Weekday, day.Month, day.Day)
		if !day.HasOccurrence {
			fmt.Fprintln(w, "  -")
			continue
		}
		for _, o := range day.Occurrences {
			line := "  " + o.Hours
			if o.IsClosed {
				line += " (cancelled)"
			}
			if o.Address != "" {
				line += "  " + o.Address
			}
			fmt.Fprintln(w, line)
		}
	}
	if printed == 0 {
		fmt.Fprintf(w, "%s has nothing scheduled in the next %d days.\n", view.Truck.Name, len(view.Days))
	}
}
