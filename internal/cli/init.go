package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imkarma/backlog/internal/config"
	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

var initProject string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a backlog in the current directory",
	Long:  "Creates a .backlog/ directory with default config and database.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initProject, "project", "n", "", "Project name for board headers")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(backlogDirName); err == nil {
		return fmt.Errorf("backlog already initialized in this directory (.backlog/ exists)")
	}

	if err := os.MkdirAll(backlogDirName, 0755); err != nil {
		return fmt.Errorf("create .backlog: %w", err)
	}

	project := initProject
	if project == "" {
		if wd, err := os.Getwd(); err == nil {
			project = filepath.Base(wd)
		}
	}
	cfg := config.DefaultConfig(project)
	if err := config.Save(backlogPath(config.FileName), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	// Opening the store runs the migration.
	s, err := store.Get(backlogPath(cfg.DatabaseFile()), cfg.AgentLabel())
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	s.Close()

	fmt.Println("Initialized backlog in .backlog/")
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("  1. Run: backlog add \"your first story\"")
	fmt.Println("  2. Run: backlog board")

	return nil
}
