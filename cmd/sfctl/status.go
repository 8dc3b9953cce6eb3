package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"streetfeast-web/internal/profile"
)

var statusCmd = &cobra.Command{
	Use:   "status <truck_id>",
	Short: "Show whether a truck is open right now",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, err := loadSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	view, err := session.View(time.Now())
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), view)
	return nil
}

func printStatus(w io.Writer, view *profile.View) {
	fmt.Fprintf(w, "%s: %s", view.Truck.Name, view.Status.Label)
	if view.Status.Hours != "" {
		fmt.Fprintf(w, " (%s)", view.Status.Hours)
	}
	fmt.Fprintln(w)
	if view.Truck.Phone != "" {
		fmt.Fprintf(w, "  Phone: %s\n", view.Truck.Phone)
	}
	if view.Location != nil && view.Location.Address != "" {
		fmt.Fprintf(w, "  Where: %s\n", view.Location.Address)
	}
}
