package notion

import (
	"context"
	"fmt"
	"sync"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"

	"github.com/christopherseaman/narko/internal/logger"
)

// MaxBlocksPerCall is the Notion API ceiling on blocks in one request.
const MaxBlocksPerCall = 100

const (
	defaultFetchPageSize = 100
	defaultDeleteWorkers = 3
)

// Mode selects how converted blocks are reconciled with an existing page.
type Mode string

const (
	// ModeCreate makes a new child page.
	ModeCreate Mode = "create"
	// ModeAppend adds blocks after the existing content.
	ModeAppend Mode = "append"
	// ModeReplaceAll deletes every existing block first.
	ModeReplaceAll Mode = "replace_all"
	// ModeReplaceContent deletes existing blocks but keeps child pages.
	ModeReplaceContent Mode = "replace_content"
)

// BlockAPI is the slice of the Notion API the syncer needs.
type BlockAPI interface {
	CreatePage(ctx context.Context, parentID, title string, blocks []notionapi.Block) (*notionapi.Page, error)
	AppendChildren(ctx context.Context, blockID string, blocks []notionapi.Block) error
	GetChildren(ctx context.Context, blockID string, cursor notionapi.Cursor, pageSize int) (*notionapi.GetChildrenResponse, error)
	DeleteBlock(ctx context.Context, blockID string) error
}

// DeleteError records a block that could not be removed.
type DeleteError struct {
	BlockID string
	Err     error
}

func (e DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.BlockID, e.Err)
}

// Result summarises a sync run.
type Result struct {
	Mode      Mode
	PageID    string
	URL       string
	Added     int
	Deleted   int
	Preserved int
	// DeleteErrors lists blocks left behind by best effort deletion.
	DeleteErrors []DeleteError
}

// Syncer reconciles converted blocks with pages.
type Syncer struct {
	api           BlockAPI
	log           *logger.Logger
	pageSize      int
	deleteWorkers int
}

// NewSyncer builds a Syncer over the given API.
func NewSyncer(api BlockAPI, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.Discard()
	}
	return &Syncer{
		api:           api,
		log:           log,
		pageSize:      defaultFetchPageSize,
		deleteWorkers: defaultDeleteWorkers,
	}
}

// Create makes a new page under parentID. Blocks beyond the per-request
// ceiling are dropped with a warning.
func (s *Syncer) Create(ctx context.Context, parentID, title string, blocks []notionapi.Block) (*Result, error) {
	blocks = s.truncate(blocks)
	page, err := s.api.CreatePage(ctx, parentID, title, blocks)
	if err != nil {
		return nil, err
	}
	return &Result{
		Mode:   ModeCreate,
		PageID: string(page.ID),
		URL:    page.URL,
		Added:  len(blocks),
	}, nil
}

// Append adds blocks to the end of an existing page.
func (s *Syncer) Append(ctx context.Context, pageID string, blocks []notionapi.Block) (*Result, error) {
	blocks = s.truncate(blocks)
	if err := s.api.AppendChildren(ctx, pageID, blocks); err != nil {
		return nil, err
	}
	return &Result{
		Mode:   ModeAppend,
		PageID: pageID,
		URL:    PageURL(pageID),
		Added:  len(blocks),
	}, nil
}

// ReplaceAll deletes every existing block on the page, then appends the
// new ones. Deletion is best effort; blocks that refuse to go are
// reported in the result rather than aborting the run.
func (s *Syncer) ReplaceAll(ctx context.Context, pageID string, blocks []notionapi.Block) (*Result, error) {
	return s.replace(ctx, ModeReplaceAll, pageID, blocks, false)
}

// ReplaceContent is ReplaceAll except child pages survive.
func (s *Syncer) ReplaceContent(ctx context.Context, pageID string, blocks []notionapi.Block) (*Result, error) {
	return s.replace(ctx, ModeReplaceContent, pageID, blocks, true)
}

func (s *Syncer) replace(ctx context.Context, mode Mode, pageID string, blocks []notionapi.Block, keepChildPages bool) (*Result, error) {
	existing, err := s.fetchAllChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var doomed []string
	preserved := 0
	for _, block := range existing {
		if keepChildPages && block.GetType() == notionapi.BlockTypeChildPage {
			preserved++
			continue
		}
		doomed = append(doomed, string(block.GetID()))
	}

	deleteErrors := s.deleteBlocks(ctx, doomed)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks = s.truncate(blocks)
	if err := s.api.AppendChildren(ctx, pageID, blocks); err != nil {
		return nil, err
	}

	return &Result{
		Mode:         mode,
		PageID:       pageID,
		URL:          PageURL(pageID),
		Added:        len(blocks),
		Deleted:      len(doomed) - len(deleteErrors),
		Preserved:    preserved,
		DeleteErrors: deleteErrors,
	}, nil
}

// fetchAllChildren pages through every child of a block. Any fetch error
// aborts: replacing on top of a partial listing would lose content.
func (s *Syncer) fetchAllChildren(ctx context.Context, pageID string) ([]notionapi.Block, error) {
	var all []notionapi.Block
	var cursor notionapi.Cursor
	for {
		resp, err := s.api.GetChildren(ctx, pageID, cursor, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", pageID, err)
		}
		all = append(all, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
}

func (s *Syncer) deleteBlocks(ctx context.Context, ids []string) []DeleteError {
	var mu sync.Mutex
	var failures []DeleteError

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deleteWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.api.DeleteBlock(ctx, id); err != nil {
				s.log.Warn("failed to delete block", "block_id", id, "error", err)
				mu.Lock()
				failures = append(failures, DeleteError{BlockID: id, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

func (s *Syncer) truncate(blocks []notionapi.Block) []notionapi.Block {
	if len(blocks) > MaxBlocksPerCall {
		s.log.Warn("truncating blocks to API limit", "total", len(blocks), "limit", MaxBlocksPerCall)
		return blocks[:MaxBlocksPerCall]
	}
	return blocks
}
