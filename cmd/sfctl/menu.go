package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"streetfeast-web/internal/profile"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/truck"
)

var (
	menuDate       string
	menuOccurrence string
)

var menuCmd = &cobra.Command{
	Use:   "menu <truck_id>",
	Short: "Print the menu for today or a chosen day",
	Args:  cobra.ExactArgs(1),
	RunE:  runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&menuDate, "date", "", "day to show (YYYY-MM-DD), default today")
	menuCmd.Flags().StringVar(&menuOccurrence, "occurrence", "", "occurrence id within the chosen day")
}

func runMenu(cmd *cobra.Command, args []string) error {
	session, err := loadSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if menuDate != "" {
		day, err := schedule.ParseDate(menuDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		if err := session.SelectDate(day); err != nil {
			return err
		}
	}
	if menuOccurrence != "" {
		if err := session.SelectOccurrence(truck.ID(menuOccurrence)); err != nil {
			return err
		}
	}

	view, err := session.View(time.Now())
	if err != nil {
		return err
	}
	printMenu(cmd.OutOrStdout(), view.Menu)
	return nil
}

func printMenu(w io.Writer, m profile.MenuView) {
	if len(m.Categories) == 0 {
		if m.ImageURL != "" {
			fmt.Fprintf(w, "Menu image: %s\n", m.ImageURL)
			return
		}
		fmt.Fprintln(w, "No menu available.")
		return
	}
	for i, c := range m.Categories {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, c.Name)
		for _, item := range c.Items {
			fmt.Fprintf(w, "  %-32s %8s\n", item.Name, item.PriceText)
		}
	}
}
