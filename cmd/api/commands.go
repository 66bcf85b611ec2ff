package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/handlers"
	"github.com/akolanti/GradeRAG/internal/mcpserver"
	"github.com/akolanti/GradeRAG/internal/middleware"
	"github.com/akolanti/GradeRAG/internal/rag"
	"github.com/akolanti/GradeRAG/internal/server"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "grader",
	Short: "Retrieval augmented grading service",
	Long: `grader ingests model answers and student submissions into a vector index
and grades submissions against the model answer with an LLM.

Without a subcommand it runs the http server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http api (also serves mcp at /mcp)",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the grading tools over MCP stdio",
	Long: `Serve ingest_document, search_chunks and grade_submission over stdio for
MCP clients. Logs go to stderr so stdout stays a clean JSON-RPC stream.`,
	RunE: runMCP,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "yaml config file, optional")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger_i.Init(cfg.IsProd, cfg.SlogLevel())
	logger := logger_i.NewLogger("main")

	serviceContext, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	service, closeBackends, err := rag.Build(serviceContext, cfg)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return err
	}

	mcpServer, err := mcpserver.NewServer(service)
	if err != nil {
		closeBackends()
		return err
	}

	router := server.Routes(handlers.NewHandler(service), middleware.New(cfg.Server), mcpServer.Handler())
	httpServer := server.CreateServer(cfg.Server.ListenAddr, router, cfg.ServerWriteTimeout())

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	go server.ShutDownHandler(server.ShutdownParams{
		Server:           httpServer,
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			cancel()
			closeBackends()
		},
	})
	go server.ListenAndServe(httpServer)

	<-stopExecution
	logger.Info("Server stopped")
	return nil
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger_i.InitWithWriter(os.Stderr, cfg.IsProd, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, closeBackends, err := rag.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackends()

	mcpServer, err := mcpserver.NewServer(service)
	if err != nil {
		return err
	}
	return mcpServer.Run(ctx)
}
