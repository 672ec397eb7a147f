package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hypeos/internal/config"
	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/logger"
	"hypeos/internal/storage"
)

// session is everything a command needs once configuration is resolved.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	svc    *engine.Service
	userID string
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.userID != "" {
		cfg.User.DefaultID = opts.userID
	}
	return cfg, nil
}

// openSession wires config, logger, rules and storage into a Service.
// Interactive commands only log warnings unless --verbose is set.
func openSession(ctx context.Context, opts *options, interactive bool) (*session, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.verbose {
		cfg.Logger.Level = "debug"
	} else if interactive && (cfg.Logger.Level == "debug" || cfg.Logger.Level == "info") {
		cfg.Logger.Level = "warn"
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}

	rules, err := config.LoadRules(cfg.Rules.Path)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	eng, err := hypeos.New(rules)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}

	path, err := storage.ResolveDBPath(cfg.Database.Path)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		_ = log.Close()
		return nil, nil, err
	}
	log.Debugw("Opened database", "path", path)

	svc := engine.NewService(db, engine.Options{Rules: eng, Location: loc, Logger: log})
	cleanup := func() {
		_ = db.Close()
		_ = log.Close()
	}
	return &session{cfg: cfg, log: log, svc: svc, userID: cfg.User.DefaultID}, cleanup, nil
}

func newDBCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the resolved database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			path, err := storage.ResolveDBPath(cfg.Database.Path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := openSession(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date.")
			return nil
		},
	})
	return cmd
}
