package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/config"
	"github.com/spec-kit/hr-console/internal/observability"
	"github.com/spec-kit/hr-console/internal/persistence"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/service"
)

type globalOptions struct {
	mongoURI string
	mongoDB  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operator tool for HR console records and users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string (default $MONGO_URI)")
	cmd.PersistentFlags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database (default $MONGO_DB)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(newRecordsCmd(opts))
	cmd.AddCommand(newUsersCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	return cmd
}

// Execute runs the root command and exits with its status code.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

func (o *globalOptions) load() error {
	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	if o.mongoURI != "" {
		cfg.Mongo.URI = o.mongoURI
	}
	if o.mongoDB != "" {
		cfg.Mongo.Database = o.mongoDB
	}
	cfg.Logger.Level = o.logLevel
	cfg.Logger.Encoding = "console"
	cfg.Logger.Output = "stderr"

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return withCode(exitUsage, err)
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *globalOptions) connectMongo(ctx context.Context) (*persistence.Mongo, error) {
	if o.cfg.Mongo.URI == "" {
		return nil, withCode(exitUsage, errors.New("mongo uri required: set MONGO_URI or --mongo-uri"))
	}
	m, err := persistence.NewMongo(ctx, o.cfg.Mongo, o.logger)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("connect mongo: %w", err))
	}
	return m, nil
}

func (o *globalOptions) connectPostgres(ctx context.Context) (*persistence.Postgres, error) {
	if o.cfg.Postgres.DSN == "" {
		return nil, withCode(exitUsage, errors.New("postgres dsn required: set POSTGRES_DSN"))
	}
	pg, err := persistence.NewPostgres(ctx, o.cfg.Postgres, o.logger)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("connect postgres: %w", err))
	}
	return pg, nil
}

func (o *globalOptions) auditService(pg *persistence.Postgres) *service.AuditService {
	return service.NewAuditService(repository.NewAuditRepository(pg.PoolHandle()), o.logger)
}
