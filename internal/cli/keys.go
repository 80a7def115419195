package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	redisclient "github.com/vietddude/scribe/internal/infra/redis"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the API key pool",
}

var keysSetCmd = &cobra.Command{
	Use:   "set [key...]",
	Short: "Replace the API key list in the configuration store",
	Args:  cobra.MinimumNArgs(1),
	Run:   runKeysSet,
}

func init() {
	keysCmd.AddCommand(keysSetCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysSet(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.Redis.URL == "" {
		slog.Error("No redis.url configured, key management needs the configuration store")
		os.Exit(1)
	}
	rdb, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to init redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	if err := rdb.SetKeyList(context.Background(), args); err != nil {
		slog.Error("Failed to set key list", "error", err)
		os.Exit(1)
	}
	slog.Info("Key list updated", "count", len(args))
}
