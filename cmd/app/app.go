package app

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skarbek/skarbek-api/internal/api"
	"github.com/skarbek/skarbek-api/internal/config"
	"github.com/skarbek/skarbek-api/internal/db"
	"github.com/skarbek/skarbek-api/internal/logger"
	"github.com/skarbek/skarbek-api/internal/mailer"
	"github.com/skarbek/skarbek-api/internal/pkg/jwthelper"
	"github.com/skarbek/skarbek-api/internal/repository"
	"github.com/skarbek/skarbek-api/internal/repository/dao"
	"github.com/skarbek/skarbek-api/internal/service"
)

const defaultConfigPath = "./cmd/app/config.yml"

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "skarbek",
		Short:         "Class fund collection API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate, seed the admin and start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, conn, err := bootstrap(configPath)
				if err != nil {
					return err
				}

				return migrate(conn)
			},
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the configured admin unless it already exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				conf, conn, err := bootstrap(configPath)
				if err != nil {
					return err
				}

				if err = migrate(conn); err != nil {
					return err
				}

				auth := service.NewAuthService(
					dao.NewTransactor(conn),
					repository.NewAdminRepository(dao.NewAdminDAO(conn)),
					repository.NewParentRepository(dao.NewParentDAO(conn)),
					jwthelper.NewManager(conf.API.JWTSigningKey),
					service.TokenTTL{Admin: conf.API.AdminTokenTTL, Parent: conf.API.ParentTokenTTL},
					conf.Password.Policy(),
				)

				return seedAdmin(cmd.Context(), conf, auth)
			},
		},
	)

	return root
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func bootstrap(configPath string) (*config.AppConfig, *gorm.DB, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log.Level); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	var conn *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err = db.OpenPostgresWithURL(dbURL)
	} else {
		conn, err = db.Open(conf)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	return conf, conn, nil
}

func migrate(conn *gorm.DB) error {
	if err := dao.InitTables(conn); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	return nil
}

func seedAdmin(ctx context.Context, conf *config.AppConfig, auth *service.AuthService) error {
	if conf.Admin.Username == "" || conf.Admin.Password == "" {
		zap.L().Warn("no admin credentials configured, skipping admin seed")
		return nil
	}

	created, err := auth.EnsureAdmin(ctx, conf.Admin.Username, conf.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to seed admin -> %w", err)
	}

	if created {
		zap.L().Info("seeded admin", zap.String("username", conf.Admin.Username))
	}

	return nil
}

func serve(ctx context.Context, configPath string) error {
	conf, conn, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	if err = migrate(conn); err != nil {
		return err
	}

	mail, err := mailer.New(conf.Mail)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer -> %w", err)
	}

	s, err := api.NewServer(conf, conn, mail)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	if err = seedAdmin(ctx, conf, s.Auth); err != nil {
		return err
	}

	conf.Watch(func(updated *config.AppConfig, event fsnotify.Event) {
		if err := logger.SetLevel(updated.Log.Level); err != nil {
			zap.L().Warn("ignoring invalid log level", zap.String("file", event.Name), zap.Error(err))
			return
		}
		zap.L().Info("log level reloaded", zap.String("level", logger.Level().String()))
	})

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
