package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark/text"

	"github.com/christopherseaman/narko/internal/cache"
	"github.com/christopherseaman/narko/internal/config"
	"github.com/christopherseaman/narko/internal/convert"
	"github.com/christopherseaman/narko/internal/markdown"
	"github.com/christopherseaman/narko/internal/notion"
)

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Convert Markdown files and upload them to Notion",
	Long: `Convert one or more Markdown files to Notion blocks and upload them.

The parent page comes from --parent, the [pages] map in the config file,
or NOTION_IMPORT_ROOT, in that order. Modes:

  create           make a new child page under the parent (default)
  append           append blocks to the parent page
  replace_all      delete everything on the parent page first
  replace_content  delete everything except child pages first

Examples:
  narko import notes.md
  narko import --parent https://www.notion.so/Docs-23ad9fdd8bfd456789ab123456789abc notes.md
  narko import --mode replace_content --parent 23ad9fdd8bfd456789ab123456789abc notes.md
  narko import --test notes.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// Flags for import.
var (
	importParent string
	importMode   string
	importTitle  string
	importTest   bool
)

func init() {
	importCmd.Flags().StringVarP(&importParent, "parent", "p", "", "parent page ID or URL (overrides the page map)")
	importCmd.Flags().StringVarP(&importMode, "mode", "m", "create", "reconciliation mode: create, append, replace_all or replace_content")
	importCmd.Flags().StringVar(&importTitle, "title", "", "page title (defaults to the frontmatter title or the file name)")
	importCmd.Flags().BoolVar(&importTest, "test", false, "convert only and print the resulting blocks as JSON")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	mode, err := parseMode(importMode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if importTest {
		conv := convert.New(nil, logg)
		for _, path := range args {
			if err := dryRunFile(cmd, conv, path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	uploader, closeCache := newUploader(cfg)
	defer closeCache()

	conv := convert.New(uploader, logg)
	syncer := notion.NewSyncer(notion.NewClient(cfg.APIKey), logg)

	for _, path := range args {
		if err := importFile(cmd, cfg, conv, syncer, mode, path); err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
	}
	return nil
}

// newUploader wires the uploader with the sqlite cache. A broken cache
// degrades to cacheless uploads rather than failing the command.
func newUploader(cfg *config.Config) (*notion.Uploader, func()) {
	store, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		logg.Warn("upload cache unavailable", "error", err)
		return notion.NewUploader(cfg, nil, logg), func() {}
	}
	return notion.NewUploader(cfg, store, logg), func() { store.Close() }
}

func importFile(cmd *cobra.Command, cfg *config.Config, conv *convert.Converter, syncer *notion.Syncer, mode notion.Mode, path string) error {
	ctx := cmd.Context()
	title, blocks, err := convertFile(ctx, conv, path)
	if err != nil {
		return err
	}

	parent, err := resolveParent(cfg, path)
	if err != nil {
		return err
	}

	var result *notion.Result
	switch mode {
	case notion.ModeCreate:
		result, err = syncer.Create(ctx, parent, title, blocks)
	case notion.ModeAppend:
		result, err = syncer.Append(ctx, parent, blocks)
	case notion.ModeReplaceAll:
		result, err = syncer.ReplaceAll(ctx, parent, blocks)
	case notion.ModeReplaceContent:
		result, err = syncer.ReplaceContent(ctx, parent, blocks)
	}
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d blocks added", path, result.Added)
	if result.Deleted > 0 || result.Preserved > 0 {
		cmd.Printf(", %d deleted, %d preserved", result.Deleted, result.Preserved)
	}
	cmd.Printf("\n  %s\n", result.URL)
	for _, de := range result.DeleteErrors {
		logg.Warn("block not deleted", "block_id", de.BlockID, "error", de.Err)
	}
	return nil
}

func dryRunFile(cmd *cobra.Command, conv *convert.Converter, path string) error {
	title, blocks, err := convertFile(cmd.Context(), conv, path)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding blocks: %w", err)
	}
	cmd.Printf("%s: %q, %d blocks\n%s\n", path, title, len(blocks), out)
	return nil
}

func convertFile(ctx context.Context, conv *convert.Converter, path string) (string, []notionapi.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	fm, body := markdown.Preprocess(string(data))
	title := importTitle
	if title == "" {
		title = markdown.DocumentTitle(fm, path)
	}

	source := []byte(body)
	doc := markdown.New().Parser().Parse(text.NewReader(source))
	blocks := conv.Convert(ctx, doc, source)
	return title, blocks, nil
}

func resolveParent(cfg *config.Config, path string) (string, error) {
	raw := importParent
	if raw == "" {
		raw = cfg.ParentFor(path)
	}
	if raw == "" {
		return "", fmt.Errorf("no parent page configured for %s, use --parent or set NOTION_IMPORT_ROOT", path)
	}
	return notion.ExtractPageID(raw)
}

func parseMode(raw string) (notion.Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(raw), "-", "_") {
	case "create":
		return notion.ModeCreate, nil
	case "append":
		return notion.ModeAppend, nil
	case "replace", "replace_all":
		return notion.ModeReplaceAll, nil
	case "replace_content":
		return notion.ModeReplaceContent, nil
	default:
		return "", fmt.Errorf("unknown mode %q, want create, append, replace_all or replace_content", raw)
	}
}
