package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/scribe/internal/infra/genai/credential"
	redisclient "github.com/vietddude/scribe/internal/infra/redis"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved API key pool",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

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
	pool.Reload(context.Background())

	size := pool.Size()
	if size == 0 {
		fmt.Println("no API keys configured")
		return
	}
	fmt.Printf("%d key(s), active index %d\n", size, pool.ActiveIndex())
}
