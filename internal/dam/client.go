package dam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shin2080/asset-selector-http-api/internal/transport"
)

// RequestError reports a non-success response from the DAM repository,
// carrying the status and raw body. A 401 here is authoritative over any
// locally computed token expiry.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("dam request rejected (status %d): %s", e.Status, e.Body)
}

// Client performs authenticated reads and metadata writes against the DAM
// repository's HTTP API. All calls are plain request/response exchanges;
// the caller owns the bearer token and retry policy.
type Client struct {
	client *http.Client
	host   string
	apiKey string
	logger *zap.Logger
}

// NewClient builds a DAM client for the given repository host. A zero
// timeout leaves deadline control to the request context.
func NewClient(host, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.L()
	}
	return &Client{
		client: transport.NewClient(timeout),
		host:   strings.TrimSuffix(host, "/"),
		apiKey: apiKey,
		logger: logger,
	}
}

// ListAssets fetches the listing for a repository folder (path relative to
// the DAM root, e.g. "travel") and normalizes whatever shape comes back.
func (c *Client) ListAssets(ctx context.Context, token, folder string) (AssetList, error) {
	endpoint := fmt.Sprintf("%s/api/assets/%s.json", c.host, strings.Trim(folder, "/"))
	payload, err := c.getJSON(ctx, token, endpoint)
	if err != nil {
		return AssetList{}, err
	}
	list, err := NormalizeAssetList(payload)
	if err != nil {
		return AssetList{}, err
	}
	if list.Raw != nil {
		c.logger.Warn("unrecognized listing shape", zap.String("folder", folder))
	}
	return list, nil
}

// AssetMetadata fetches the metadata node of one asset and normalizes it
// into the canonical schema.
func (c *Client) AssetMetadata(ctx context.Context, token, assetPath string) (MetadataSchema, error) {
	endpoint := fmt.Sprintf("%s%s/jcr:content/metadata.json", c.host, displayPath(assetPath))
	payload, err := c.getJSON(ctx, token, endpoint)
	if err != nil {
		return MetadataSchema{}, err
	}
	return NormalizeMetadataSchema(payload)
}

// UpdateMetadata writes metadata properties for one asset through the
// assets API.
func (c *Client) UpdateMetadata(ctx context.Context, token, assetPath string, properties map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"class":      "asset",
		"properties": properties,
	})
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/assets/%s", c.host, strings.Trim(strings.TrimPrefix(displayPath(assetPath), RootPath), "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return transport.ClassifyError(ctx, "update metadata", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return transport.ClassifyError(ctx, "update metadata", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &RequestError{Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transport.ClassifyError(ctx, "dam request", err)
	}
	c.authorize(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transport.ClassifyError(ctx, "dam request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transport.ClassifyError(ctx, "read dam response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(raw)}
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode dam response: %w", err)
	}
	return payload, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}

// displayPath roots a repository path under the DAM root if it is not
// already.
func displayPath(path string) string {
	if strings.HasPrefix(path, RootPath) {
		return path
	}
	return joinRoot(path)
}
