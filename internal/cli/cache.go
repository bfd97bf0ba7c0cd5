package cli

import (
	"github.com/spf13/cobra"

	"github.com/christopherseaman/narko/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the upload cache",
	Long:  `Inspect or prune the local cache of completed file uploads.`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show upload cache statistics",
	RunE:  runCacheInfo,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired and surplus cache entries",
	RunE:  runCacheCleanup,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.Open(cfg.CachePath, cfg.CacheTTL)
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	cmd.Printf("Entries: %d\n", stats.Entries)
	cmd.Printf("Total size: %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		cmd.Printf("Oldest: %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
		cmd.Printf("Newest: %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheCleanup(cmd *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Cleanup()
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d entries\n", removed)
	return nil
}
