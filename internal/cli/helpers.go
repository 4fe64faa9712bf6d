package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/imkarma/backlog/internal/config"
	"github.com/imkarma/backlog/internal/store"
)

const backlogDirName = ".backlog"

// backlogPath returns the path to a file inside .backlog/.
func backlogPath(parts ...string) string {
	elems := append([]string{backlogDirName}, parts...)
	return filepath.Join(elems...)
}

// loadConfig reads .backlog/config.yaml, tolerating a missing file for
// databases created before config existed.
func loadConfig() *config.Config {
	cfg, err := config.Load(backlogPath(config.FileName))
	if err != nil {
		return config.DefaultConfig("")
	}
	return cfg
}

// mustStore opens the shared store, returning an error if the project is
// not initialized.
func mustStore() (*store.Store, error) {
	cfg := loadConfig()
	dbPath := backlogPath(cfg.DatabaseFile())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("backlog not initialized. Run: backlog init")
	}
	return store.Get(dbPath, cfg.AgentLabel())
}

// parseID converts a positional argument into an item id.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item ID: %s", arg)
	}
	return id, nil
}

// deref renders an optional string field for display.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
