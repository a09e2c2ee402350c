// Package notion implements csync.TargetStore against the Notion REST
// API. It owns cursor pagination, property serialization, and retry on
// transient failures.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"csync-go/internal/csync"
)

const apiVersion = "2022-06-28"

// Client talks to the Notion API with a single integration token.
type Client struct {
	baseURL  string
	token    string
	httpc    *http.Client
	maxTries uint
}

// NewClient creates a Notion client.
func NewClient(token string) *Client {
	return &Client{
		baseURL:  "https://api.notion.com",
		token:    token,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		maxTries: 4,
	}
}

type blockList struct {
	Results    []block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

type block struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Archived      bool   `json:"archived"`
	ChildDatabase *struct {
		Title string `json:"title"`
	} `json:"child_database"`
}

// ListChildStores implements csync.TargetStore. Only child databases are
// returned; other block types under the container are ignored.
func (c *Client) ListChildStores(parentID string) ([]csync.Store, error) {
	var stores []csync.Store
	cursor := ""

	for {
		path := fmt.Sprintf("/v1/blocks/%s/children?page_size=100", parentID)
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}
		body, err := c.do(http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", parentID, err)
		}

		var page blockList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding child list: %w", err)
		}
		for _, b := range page.Results {
			if b.Type != "child_database" || b.ChildDatabase == nil {
				continue
			}
			stores = append(stores, csync.Store{
				ID:       b.ID,
				Title:    b.ChildDatabase.Title,
				ParentID: parentID,
				Archived: b.Archived,
			})
		}

		if !page.HasMore || page.NextCursor == "" {
			return stores, nil
		}
		cursor = page.NextCursor
	}
}

// ReadSchema implements csync.TargetStore. The full database object is
// returned as-is; the core cleans it without interpreting it.
func (c *Client) ReadSchema(storeID string) (csync.Schema, error) {
	body, err := c.do(http.MethodGet, "/v1/databases/"+storeID, nil)
	if err != nil {
		return nil, fmt.Errorf("reading database %s: %w", storeID, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("decoding database %s: %w", storeID, err)
	}
	return csync.Schema(schema), nil
}

// CreateStore implements csync.TargetStore. A nil schema creates the
// baseline assignment-tracking field set.
func (c *Client) CreateStore(parentID, title string, schema csync.Schema) (string, error) {
	payload := map[string]any{
		"parent": map[string]any{
			"type":    "page_id",
			"page_id": parentID,
		},
		"title":      titleValue(title, schema),
		"properties": propertiesValue(schema),
	}

	body, err := c.do(http.MethodPost, "/v1/databases", payload)
	if err != nil {
		return "", fmt.Errorf("creating database: %w", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding created database: %w", err)
	}
	return created.ID, nil
}

// ArchiveStore implements csync.TargetStore.
func (c *Client) ArchiveStore(storeID string) error {
	_, err := c.do(http.MethodPatch, "/v1/databases/"+storeID, map[string]any{"archived": true})
	if err != nil {
		return fmt.Errorf("archiving database %s: %w", storeID, err)
	}
	return nil
}

// QueryByIdentity implements csync.TargetStore. It filters on the identity
// field holding the assignment's natural key and returns the first match.
func (c *Client) QueryByIdentity(storeID, key string) (string, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"property":  propCanvasID,
			"rich_text": map[string]any{"equals": key},
		},
		"page_size": 1,
	}
	body, err := c.do(http.MethodPost, fmt.Sprintf("/v1/databases/%s/query", storeID), payload)
	if err != nil {
		return "", fmt.Errorf("querying database %s: %w", storeID, err)
	}

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding query result: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

// CreateRecord implements csync.TargetStore.
func (c *Client) CreateRecord(storeID string, props csync.RecordProperties) error {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": storeID},
		"properties": recordProperties(props),
	}
	if _, err := c.do(http.MethodPost, "/v1/pages", payload); err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	return nil
}

// PatchRecord implements csync.TargetStore.
func (c *Client) PatchRecord(recordID string, props csync.RecordProperties) error {
	payload := map[string]any{"properties": recordProperties(props)}
	if _, err := c.do(http.MethodPatch, "/v1/pages/"+recordID, payload); err != nil {
		return fmt.Errorf("updating page %s: %w", recordID, err)
	}
	return nil
}

// do performs one API call and returns the response body. Network
// failures, 429, and 5xx are retried with exponential backoff; other
// non-2xx statuses fail immediately with a *csync.UpstreamError.
func (c *Client) do(method, path string, payload any) ([]byte, error) {
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	op := func() ([]byte, error) {
		var reqBody io.Reader
		if encoded != nil {
			reqBody = bytes.NewReader(encoded)
		}
		req, err := http.NewRequest(method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", apiVersion)
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err // transient, retry
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, upstreamError(resp)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, backoff.Permanent(upstreamError(resp))
		}
		return io.ReadAll(resp.Body)
	}

	return backoff.Retry(context.Background(), op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}

func upstreamError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &csync.UpstreamError{
		API:        "notion",
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}
