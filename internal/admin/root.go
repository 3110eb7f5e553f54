// Package admin implements the recipekeeper administration commands:
// applying schema migrations and creating superusers.
package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// Seams for tests.
var (
	openDB         = repomanager.OpenDB
	newRepoManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type options struct {
	configPath string
	envPath    string
	dsn        string
}

// NewRootCommand builds the admin command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "recipes-admin",
		Short: "Administration commands for the recipekeeper server",
		Long: `recipes-admin manages the recipekeeper database.

Configuration is read the same way as the server: defaults, the JSON file
given by --config, RECIPES_* environment variables (optionally from --env).
--dsn overrides the database DSN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVar(&opts.envPath, "env", "", "path to .env file")
	root.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "PostgreSQL DSN")

	root.AddCommand(newMigrateCommand(opts), newCreateSuperuserCommand(opts))
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	var args []string
	if o.configPath != "" {
		args = append(args, "-c", o.configPath)
	}
	if o.envPath != "" {
		args = append(args, "-env", o.envPath)
	}

	cfg, err := config.LoadFrom(args)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	return cfg, nil
}

// connect loads configuration and opens the database.
func (o *options) connect(ctx context.Context) (*config.Config, *sql.DB, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
