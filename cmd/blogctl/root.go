package main

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/anonto42/nano-blog/backend/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is what every subcommand needs; it is filled in lazily so --help
// works without a database.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var dsn string

	root := &cobra.Command{
		Use:          "blogctl",
		Short:        "Administer the blog database and page cache",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dsn != "" {
				cfg.DatabaseURL = dsn
			}
			e.cfg = cfg
			e.log = logger.New(cfg.Env, cfg.LogLevel)
			slog.SetDefault(e.log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dsn, "database-url", "", "override DATABASE_URL")

	root.AddCommand(
		newMigrateCmd(e),
		newCacheCmd(e),
		newGroupsCmd(e),
		newUsersCmd(e),
	)
	return root
}

func (e *env) openDB() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := config.OpenGorm(e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.db = db
	return db, nil
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			if err := config.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCacheCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the page cache"}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		Long: "Drop every cached page from the Redis store named by REDIS_URL.\n\n" +
			"Without REDIS_URL the server keeps its pages in process memory, which only\n" +
			"the server itself can clear (Store.Clear) and which is emptied on restart.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if e.cfg.RedisURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no REDIS_URL set; the in-process cache is cleared on restart")
				return nil
			}
			store, err := cache.NewRedisStoreFromURL(ctx, e.cfg.RedisURL, cache.RedisPrefix, e.cfg.CacheTTL)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "page cache cleared")
			return nil
		},
	})
	return cmd
}

func newGroupsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "groups", Short: "Manage post groups"}

	var description string
	create := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			repo := repositories.NewPostgresGroupRepository(db)
			group := &models.Group{Slug: args[0], Title: args[1], Description: description}
			if err := repo.CreateGroup(cmd.Context(), group); err != nil {
				return fmt.Errorf("create group %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %d %s\n", group.ID, group.Slug)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "group description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			groups, err := repositories.NewPostgresGroupRepository(db).ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts become ungrouped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			repo := repositories.NewPostgresGroupRepository(db)
			group, err := repo.GetGroupBySlug(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find group %q: %w", args[0], err)
			}
			if err := repo.DeleteGroup(cmd.Context(), group.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", group.Slug)
			return nil
		},
	}

	cmd.AddCommand(create, list, del)
	return cmd
}

func newUsersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage accounts"}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with their posts, comments and follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			repo := repositories.NewPostgresUserRepository(db)
			user, err := repo.GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find user %q: %w", args[0], err)
			}
			if err := repo.DeleteUser(cmd.Context(), user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", user.Username)
			return nil
		},
	})
	return cmd
}
