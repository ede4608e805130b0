package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/persistence"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/service"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

func newUsersCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage console operators",
	}
	cmd.AddCommand(newUsersCreateCmd(g))
	return cmd
}

func newUsersCreateCmd(g *globalOptions) *cobra.Command {
	var in service.CreateUserInput
	var role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a console user with a bcrypt password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pg, err := g.connectPostgres(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()

			in.Role = domain.Role(role)
			users := repository.NewConsoleUserRepository(pg.PoolHandle())
			tokens := auth.NewTokenManager(g.cfg.Auth.JWTSecret, g.cfg.Auth.AccessTokenTTLMinutes)
			user, err := service.NewAuthService(*g.cfg, users, tokens).CreateUser(ctx, in)
			if err != nil {
				var de *apperrors.DomainError
				if errors.As(err, &de) && (de.Code == apperrors.CodeValidation || de.Code == apperrors.CodeConflict) {
					return withCode(exitValidation, err)
				}
				return withCode(exitDBWrite, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleHR), "Role: ADMIN, HR or VIEWER")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMigrateCmd(g *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pg, err := g.connectPostgres(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()
			if dir == "" {
				dir = g.cfg.Postgres.MigrationsDir
			}
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), dir, g.logger); err != nil {
				return withCode(exitDBWrite, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations in %s applied\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (default $POSTGRES_MIGRATIONS_DIR)")
	return cmd
}
