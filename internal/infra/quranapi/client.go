// Package quranapi is a client of the public Quran.com v4 verse content API.
package quranapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUpstream is returned when the API answers with a non-2xx status.
var ErrUpstream = errors.New("quran api error")

// Options configures the verse requests.
type Options struct {
	BaseURL       string
	TranslationID int
	RecitationID  int
	PerPage       int
	Timeout       time.Duration
	UserAgent     string
}

// Client fetches verses page by page.
type Client struct {
	httpClient *http.Client
	opts       Options
}

// NewClient creates a new Client. A nil httpClient gets a default one with
// the configured timeout.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 300
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{httpClient: httpClient, opts: opts}
}

// VersesByChapter fetches one page of verses of a chapter.
func (c *Client) VersesByChapter(ctx context.Context, chapter, page int) (*VersesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.versesURL(chapter, page), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get verses of chapter %d page %d: %w", chapter, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: chapter %d page %d: %s", ErrUpstream, chapter, page, resp.Status)
	}

	var body VersesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verses of chapter %d page %d: %w", chapter, page, err)
	}

	return &body, nil
}

func (c *Client) versesURL(chapter, page int) string {
	q := url.Values{}
	q.Set("language", "en")
	q.Set("words", "true")
	q.Set("translations", strconv.Itoa(c.opts.TranslationID))
	q.Set("audio", strconv.Itoa(c.opts.RecitationID))
	q.Set("per_page", strconv.Itoa(c.opts.PerPage))
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}

	return fmt.Sprintf("%s/verses/by_chapter/%d?%s", c.opts.BaseURL, chapter, q.Encode())
}
