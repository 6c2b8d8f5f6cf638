package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkellner/talent-match/internal/ai"
	"github.com/mkellner/talent-match/internal/config"
	"github.com/mkellner/talent-match/internal/db"
	"github.com/mkellner/talent-match/internal/embedding"
	"github.com/mkellner/talent-match/internal/ingestion"
	"github.com/mkellner/talent-match/internal/logger"
	"github.com/mkellner/talent-match/internal/matching"
	"github.com/mkellner/talent-match/internal/server"
	"github.com/mkellner/talent-match/internal/vectorstore"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for candidates, jobs, and match evaluation.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.JSONLog, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	aiClient, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = aiClient.Close() }()

	// The embedding provider shares the Gemini SDK client with the
	// generative assistant.
	embedder, err := embedding.NewGeminiProvider(aiClient.Genai(), cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	index, err := vectorstore.New(vectorstore.Config{
		Host:   cfg.PineconeHost,
		APIKey: cfg.PineconeKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create vector store client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(connectCtx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		RequireAuth: cfg.RequireAuth,
		JWTSecret:   cfg.JWTSecret,
	},
		database,
		matching.NewService(embedder, index, log.Named("matching")),
		ai.NewAssistant(aiClient, log.Named("ai")),
		ingestion.NewFetcher(),
		log.Named("server"),
	)

	log.Info("starting talent matcher",
		zap.Int("port", cfg.Port),
		zap.String("model", cfg.GeminiModel),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.Bool("require_auth", cfg.RequireAuth),
	)

	return srv.Start()
}
