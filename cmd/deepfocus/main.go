package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/deepfocushub/deepfocus/internal/auth"
	"github.com/deepfocushub/deepfocus/internal/config"
	"github.com/deepfocushub/deepfocus/internal/db"
	"github.com/deepfocushub/deepfocus/internal/httpapi"
	"github.com/deepfocushub/deepfocus/internal/insight"
	"github.com/deepfocushub/deepfocus/internal/llm"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/deepfocushub/deepfocus/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "deepfocus",
		Short:        "DeepFocus Hub backend server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	return cmd
}

func serve(cfg *config.Config) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	userRepo := repository.NewSQLiteUserRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	tokens := auth.NewTokenIssuer(cfg.Auth.TokenSecret)

	llmCfg := cfg.LLMClientConfig()
	var model llm.Client
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		model = llm.NewChatClient(llmCfg, observer)
	}
	generator := insight.NewGenerator(model, llmCfg.Enabled)

	server := httpapi.NewServer(
		service.NewAuthService(userRepo, tokens),
		service.NewTaskService(taskRepo),
		service.NewSessionService(sessionRepo, uow),
		service.NewStatsService(sessionRepo, taskRepo),
		service.NewInsightService(sessionRepo, taskRepo, generator),
		tokens,
		logger,
	)

	logger.Printf("listening on %s", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, server.Handler())
}
