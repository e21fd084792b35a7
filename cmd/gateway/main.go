// Command gateway serves the multi-modal generation API.
//
// Examples:
//
//	export GEMINI_API_KEY=...
//	go run ./cmd/gateway serve
//
//	go run ./cmd/gateway serve --provider dummy --port 8080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Protocol-Lattice/gemini-gateway/pkg/config"
	"github.com/Protocol-Lattice/gemini-gateway/pkg/gateway"
	"github.com/Protocol-Lattice/gemini-gateway/pkg/models"
	"github.com/Protocol-Lattice/gemini-gateway/pkg/upload"
)

var (
	flagPort      string
	flagProvider  string
	flagModel     string
	flagUploadDir string
	flagEnvFile   string
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Run the HTTP gateway",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides PORT)", Destination: &flagPort},
		&cli.StringFlag{Name: "provider", Usage: "gemini|openai|anthropic|ollama|dummy (overrides MODEL_PROVIDER)", Destination: &flagProvider},
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Model ID (overrides MODEL_NAME)", Destination: &flagModel},
		&cli.StringFlag{Name: "upload-dir", Usage: "Temporary upload directory (overrides UPLOAD_DIR)", Destination: &flagUploadDir},
		&cli.StringFlag{Name: "env-file", Usage: "dotenv file to load before reading the environment", Value: ".env", Destination: &flagEnvFile},
	},
	Action: func(c *cli.Context) error {
		cfg, err := config.Load(flagEnvFile)
		if err != nil {
			return err
		}
		applyFlags(&cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(c.Context, cfg)
	},
}

func applyFlags(cfg *config.Config) {
	if flagPort != "" {
		cfg.Port = flagPort
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagUploadDir != "" {
		cfg.UploadDir = flagUploadDir
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := cfg.Logger()

	model, err := models.NewLLMProvider(ctx, models.Options{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
		Host:     cfg.OllamaHost,
	})
	if err != nil {
		return fmt.Errorf("model provider: %w", err)
	}
	if closer, ok := model.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	store := upload.FSStore{BaseDir: cfg.UploadDir}

	srv := gateway.NewServer(models.NewAdapter(model), store,
		gateway.WithLogger(log),
		gateway.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)

	log.WithFields(logrus.Fields{"provider": cfg.Provider, "model": cfg.Model}).Info("model provider ready")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Addr())
}

func main() {
	app := &cli.App{
		Name:     "gateway",
		Usage:    "Forward text, image, document and audio prompts to a generative model",
		Commands: []*cli.Command{serveCommand},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
