package farol

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	// Cap for error bodies kept in APIError.
	maxErrorBody = 512
)

type Item interface{}

// GetItems makes GET requests to a list endpoint and returns items from all pages.
// The API pages with limit/offset and signals the last page by returning fewer
// items than requested. maxItems <= 0 means no cap.
func (c *Client) GetItems(ctx context.Context, endpoint string, q url.Values, maxItems int) ([]Item, error) {
	var items []Item

	if q == nil {
		q = url.Values{}
	}

	offset := 0
	for {
		limit := pageSize
		if maxItems > 0 && maxItems-len(items) < limit {
			limit = maxItems - len(items)
		}

		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))

		var page []Item
		if err := c.getJSON(ctx, endpoint, q, &page); err != nil {
			return nil, err
		}

		items = append(items, page...)

		c.logger.Debug("got page from Farol API",
			zap.String("endpoint", endpoint),
			zap.Int("offset", offset),
			zap.Int("items", len(page)),
		)

		if len(page) < limit {
			break
		}
		if maxItems > 0 && len(items) >= maxItems {
			break
		}

		c.logger.Debug("additional request needed", zap.String("reason",
			fmt.Sprintf("page at offset %d is full (%d items)", offset, len(page))),
		)
		offset += len(page)
	}

	return items, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, http.StatusOK, target)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, 0, target)
}

// do executes the request and decodes the body into target. expected == 0
// accepts any 2xx status.
func (c *Client) do(req *http.Request, expected int, target interface{}) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if !statusOK(resp.StatusCode, expected) {
		body := data
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        req.URL.Path,
			Body:       string(body),
		}
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}

	return nil
}

func statusOK(got, expected int) bool {
	if expected != 0 {
		return got == expected
	}
	return got >= 200 && got < 300
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s%s", c.APIURL, path)
}
