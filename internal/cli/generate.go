package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/generation"
	"github.com/vietddude/scribe/internal/infra/genai"
	"github.com/vietddude/scribe/internal/infra/genai/credential"
	"github.com/vietddude/scribe/internal/infra/latex"
	redisclient "github.com/vietddude/scribe/internal/infra/redis"
)

var (
	generateTier string
	generateOut  string
	generatePDF  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a paper for a topic and print the LaTeX source",
	Args:  cobra.ExactArgs(1),
	Run:   runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTier, "tier", string(domain.TierFlash), "model tier (pro or flash)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "write output to file instead of stdout")
	generateCmd.Flags().BoolVar(&generatePDF, "pdf", false, "compile the result to PDF (requires latex.url)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	var store credential.Store
	if cfg.Redis.URL != "" {
		rdb, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to init redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = rdb
	}

	pool := credential.NewPool(store, cfg.GenAI.DefaultAPIKey)
	opts := []genai.Option{genai.WithTimeout(cfg.GenAI.RequestTimeout)}
	if cfg.GenAI.BaseURL != "" {
		opts = append(opts, genai.WithBaseURL(cfg.GenAI.BaseURL))
	}
	client := genai.NewClient(pool, opts...)

	topic := args[0]
	result, err := client.Generate(ctx, domain.GenerationRequest{
		Tier:              domain.ModelTier(generateTier),
		SystemInstruction: generation.SystemInstruction,
		Prompt:            fmt.Sprintf("Write an academic paper on: %s", topic),
		Temperature:       0.7,
	})
	if err != nil {
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Generated paper", "model", result.Model, "bytes", len(result.Text))

	output := []byte(result.Text)
	if generatePDF {
		compiler := latex.NewClient(cfg.Latex)
		output, err = compiler.Compile(ctx, result.Text)
		if err != nil {
			slog.Error("Compile failed", "error", err)
			os.Exit(1)
		}
	}

	if generateOut != "" {
		if err := os.WriteFile(generateOut, output, 0o644); err != nil {
			slog.Error("Failed to write output", "error", err)
			os.Exit(1)
		}
		slog.Info("Wrote output", "path", generateOut)
		return
	}
	if generatePDF {
		slog.Error("Refusing to write PDF bytes to stdout, use --out")
		os.Exit(1)
	}
	fmt.Println(result.Text)
}
