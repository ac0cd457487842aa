package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	backoff     time.Duration
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with connection pooling, disabled HTTP/2 (for large file stability)
// and a 10-minute timeout for very large files.
func NewClient(accessToken string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	return &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		backoff: 2 * time.Second,
	}
}

// SetBaseURL points the client at a different API root, e.g. a test server.
// The retry backoff is dropped as well so that fakes answer immediately.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	c.backoff = 0
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	// Anchored to ensure the entire URL matches the expected pattern.
	re := regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:/|\?|$)`)
	matches := re.FindStringSubmatch(figmaURL)

	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}

	return matches[1], nil
}

// GetFile retrieves the complete document tree of a file.
// Requests are retried (up to 3 attempts) on transport errors, 429 and 5xx responses.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	endpoint := fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileKey))

	var fileResp FileResponse
	if err := c.getJSON(ctx, endpoint, &fileResp); err != nil {
		return nil, err
	}

	return &fileResp, nil
}

// GetImages asks the render API to rasterize the given nodes.
// The response maps each node ID to a temporary download URL, or to an empty
// string when Figma could not render that node.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*ImagesResponse, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	q.Set("format", format)
	q.Set("scale", strconv.FormatFloat(scale, 'g', -1, 64))
	endpoint := fmt.Sprintf("%s/images/%s?%s", c.baseURL, url.PathEscape(fileKey), q.Encode())

	var imgResp ImagesResponse
	if err := c.getJSON(ctx, endpoint, &imgResp); err != nil {
		return nil, err
	}
	if imgResp.Err != "" {
		return nil, fmt.Errorf("render API error: %s", imgResp.Err)
	}

	return &imgResp, nil
}

// Download streams the body found at rawURL into w.
// Rendered image URLs are pre-signed, so no token is sent.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read image body: %w", err)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Figma-Token", c.accessToken)

		body, status, err := c.do(req)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d failed to execute request: %w", attempt, err)
			if attempt < maxRetries && ctx.Err() == nil {
				c.sleep(ctx, attempt)
				continue
			}
			return lastErr
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("API request failed with status %d: %s", status, string(body))
			if attempt < maxRetries && (status == http.StatusTooManyRequests || status >= 500) {
				c.sleep(ctx, attempt)
				continue
			}
			return lastErr
		}

		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return lastErr
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	t := time.NewTimer(time.Duration(attempt) * c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
