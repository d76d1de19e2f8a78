package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"study_garden/internal/repository"
	"study_garden/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	load := func() (*Config, error) {
		// .env only fills variables that are not already set.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}

		cfg, err := LoadConfig(v, configFile)
		if err != nil {
			return nil, err
		}
		if err = logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "study-garden",
		Short:         "Assignment tracker that grows a plant collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	root.PersistentFlags().String("log-level", "", "log level override")
	v.BindPFlag("logLevel", root.PersistentFlags().Lookup("log-level"))

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  root.RunE,
	}
	serveCmd.Flags().String("port", "", "listen port override")
	v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			repo, err := repository.New(cfg.Database)
			if err != nil {
				return err
			}
			defer repo.Close()

			applied, err := repo.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			version, err := repo.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			logger.Logger().Info("Database is up to date",
				zap.Int("applied", applied),
				zap.Int("version", version))
			return nil
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	return root
}
