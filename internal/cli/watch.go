package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/christopherseaman/narko/internal/convert"
	"github.com/christopherseaman/narko/internal/notion"
)

const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-import Markdown files when they change",
	Long: `Watch a directory tree and re-import any Markdown file that changes.

Each changed file goes to the parent resolved from --parent or the
config page map. The default mode is replace_content so repeated saves
update the page in place without touching its child pages.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchMode string

func init() {
	watchCmd.Flags().StringVarP(&importParent, "parent", "p", "", "parent page ID or URL (overrides the page map)")
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "replace_content", "reconciliation mode applied on each change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	mode, err := parseMode(watchMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	uploader, closeCache := newUploader(cfg)
	defer closeCache()
	conv := convert.New(uploader, logg)
	syncer := notion.NewSyncer(notion.NewClient(cfg.APIKey), logg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}
	logg.Info("watching for changes", "dir", root)

	ctx := cmd.Context()
	last := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						logg.Warn("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if time.Since(last[event.Name]) < watchDebounce {
				continue
			}
			last[event.Name] = time.Now()

			if err := importFile(cmd, cfg, conv, syncer, mode, event.Name); err != nil {
				logg.Error("import failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logg.Warn("watch error", "error", err)
		}
	}
}

// watchTree registers a directory and all of its subdirectories.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
