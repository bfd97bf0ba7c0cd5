package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
)

const apiBaseURL = "https://api.notion.com/v1"

// Client wraps the notionapi client with rate limiting.
type Client struct {
	client      *notionapi.Client
	rateLimiter *rateLimiter
}

// NewClient creates a rate limited Notion API client.
func NewClient(token string) *Client {
	return &Client{
		client:      notionapi.NewClient(notionapi.Token(token)),
		rateLimiter: newRateLimiter(),
	}
}

// CreatePage creates a child page under parentID with the given title and
// initial blocks. The caller is responsible for keeping blocks within the
// per-request limit.
func (c *Client) CreatePage(ctx context.Context, parentID, title string, blocks []notionapi.Block) (*notionapi.Page, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	page, err := c.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: title},
				}},
			},
		},
		Children: blocks,
	})
	if err != nil {
		c.noteRateLimited(err)
		return nil, fmt.Errorf("create page under %s: %w", parentID, err)
	}

	return page, nil
}

// AppendChildren appends blocks to the end of a page or block.
func (c *Client) AppendChildren(ctx context.Context, blockID string, blocks []notionapi.Block) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	_, err := c.client.Block.AppendChildren(ctx, notionapi.BlockID(blockID), &notionapi.AppendBlockChildrenRequest{
		Children: blocks,
	})
	if err != nil {
		c.noteRateLimited(err)
		return fmt.Errorf("append children to %s: %w", blockID, err)
	}

	return nil
}

// GetChildren retrieves one page of child blocks.
func (c *Client) GetChildren(ctx context.Context, blockID string, cursor notionapi.Cursor, pageSize int) (*notionapi.GetChildrenResponse, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	pagination := &notionapi.Pagination{PageSize: pageSize}
	if cursor != "" {
		pagination.StartCursor = cursor
	}

	resp, err := c.client.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
	if err != nil {
		c.noteRateLimited(err)
		return nil, fmt.Errorf("get children of %s: %w", blockID, err)
	}

	return resp, nil
}

// DeleteBlock archives a block.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	if _, err := c.client.Block.Delete(ctx, notionapi.BlockID(blockID)); err != nil {
		c.noteRateLimited(err)
		return fmt.Errorf("delete block %s: %w", blockID, err)
	}

	return nil
}

// noteRateLimited opens the limiter's backoff window after a 429 answer.
// The client library drops the Retry-After header, so the default window
// applies.
func (c *Client) noteRateLimited(err error) {
	if isRateLimited(err) {
		c.rateLimiter.recordRateLimit(0)
	}
}

// isRateLimited reports whether err is the API telling us to slow down.
func isRateLimited(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests ||
			apiErr.Code == "rate_limited"
	}
	return false
}
