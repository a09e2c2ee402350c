package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"csync-go/internal/app"
	"csync-go/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a SyncApp. The caller must defer
// app.Close(). operation identifies the CLI command being run
// (e.g. "Sync", "MigrateSchema").
func newApp(operation string) (*app.SyncApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewSyncApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptSecret reads a value from the terminal without echoing it.
// Returns "" if the user just presses enter.
func promptSecret(label string) (string, error) {
	fmt.Printf("%s (leave empty to use environment variable): ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	return strings.TrimSpace(string(b)), nil
}

var rootCmd = &cobra.Command{
	Use:   "csync",
	Short: "Sync Canvas assignments into a Notion database",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if term.IsTerminal(int(os.Stdin.Fd())) {
			if cfg.Canvas.Token, err = promptSecret("Canvas API token"); err != nil {
				return err
			}
			if cfg.Notion.Token, err = promptSecret("Notion API token"); err != nil {
				return err
			}
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Edit the file to set notion.parent_page_id and canvas.course_ids.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Tokens are deliberately not printed.
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Canvas URL:     %s\n", cfg.Canvas.BaseURL)
		fmt.Printf("Course IDs:     %v\n", cfg.Canvas.CourseIDs)
		fmt.Printf("Parent Page:    %s\n", cfg.Notion.ParentPageID)
		fmt.Printf("Database Title: %s\n", cfg.Notion.DatabaseTitle)
		fmt.Printf("Sync Mode:      %s\n", cfg.Sync.Mode)
		fmt.Printf("Window Days:    %d\n", cfg.Sync.WindowDays)
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Sync")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.Sync()
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Synced %d course(s): %d created, %d updated, %d filtered out\n",
			counts.Courses, counts.Created, counts.Updated, counts.Filtered)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create a fresh assignment database and archive the old one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("MigrateSchema")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.MigrateSchema()
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Printf("New database: %s\n", id)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View sync run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No sync runs recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  c:%d u:%d f:%d  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				op.Created,
				op.Updated,
				op.Filtered,
				duration,
			)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
