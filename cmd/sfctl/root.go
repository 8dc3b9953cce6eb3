package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"streetfeast-web/config"
	"streetfeast-web/internal/backend"
	"streetfeast-web/internal/profile"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sfctl",
	Short: "sfctl - look up food truck schedules from the command line",
	Long: `sfctl reads the same backend as the web service and prints a truck's
current status, its calendar and the menu for a chosen day.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(log.WarnLevel)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log backend requests")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(menuCmd)
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./config/config.yaml"
	}
	return config.Load(path)
}

func parseTruckID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid truck id %q", arg)
	}
	return id, nil
}

// loadSession loads the truck named by the first argument.
func loadSession(ctx context.Context, arg string) (*profile.Session, error) {
	truckID, err := parseTruckID(arg)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := backend.NewClient(cfg.Backend)
	if err != nil {
		return nil, err
	}

	session := profile.NewSession(client, profile.Options{
		Location:      client.Location(),
		WindowDays:    cfg.Backend.WindowDays,
		StoragePrefix: cfg.Backend.StoragePrefix,
		Now:           time.Now,
	})
	if err := session.Load(ctx, truckID); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("truck %d not found", truckID)
		}
		return nil, err
	}
	return session, nil
}
