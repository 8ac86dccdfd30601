package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Client scrapes TikTok over plain HTTP: profile pages are server-rendered
// and carry the account data inline, and the unauthenticated item list API
// serves an account's recent uploads.
type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string

	// Per-operation rate limiting. TikTok tolerates roughly one profile
	// request per second; item list requests are kept at the same floor.
	profileDelay  time.Duration
	itemListDelay time.Duration
	lastProfile   time.Time
	lastItemList  time.Time
	profileMu     sync.Mutex
	itemListMu    sync.Mutex
}

func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

func New() *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		client: &http.Client{
			Jar:       jar,
			Timeout:   15 * time.Second,
			Transport: defaultTransport(),
		},
		baseURL:       "https://www.tiktok.com",
		userAgent:     defaultUserAgent,
		profileDelay:  time.Second,
		itemListDelay: time.Second,
	}
}

// WithBaseURL points the client at a different host. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithDelays overrides the per-operation rate limit floors.
func (c *Client) WithDelays(profile, itemList time.Duration) *Client {
	c.profileDelay = profile
	c.itemListDelay = itemList
	return c
}

// GetUser fetches an account profile by username via SSR HTML parsing.
func (c *Client) GetUser(ctx context.Context, username string) (Author, error) {
	if username == "" {
		return Author{}, fmt.Errorf("get user: username is required")
	}

	c.waitFor(&c.profileMu, &c.lastProfile, c.profileDelay)

	body, err := c.get(ctx, c.baseURL+"/@"+url.PathEscape(username))
	if err != nil {
		return Author{}, fmt.Errorf("get user %q: %w", username, err)
	}

	data, err := extractUniversalData(body)
	if err != nil {
		return Author{}, fmt.Errorf("parse user page %q: %w", username, err)
	}

	author, err := extractUserFromSSR(data)
	if err != nil {
		return Author{}, fmt.Errorf("extract user %q: %w", username, err)
	}

	return author, nil
}

// RecentVideos fetches an account's latest uploads, newest first, using the
// SecUID previously resolved by GetUser.
func (c *Client) RecentVideos(ctx context.Context, secUID string, count int) ([]Video, error) {
	if secUID == "" {
		return nil, fmt.Errorf("recent videos: secUid is required")
	}

	if count <= 0 {
		count = 10
	}

	c.waitFor(&c.itemListMu, &c.lastItemList, c.itemListDelay)

	endpoint := fmt.Sprintf(
		"%s/api/post/item_list/?secUid=%s&count=%d&cursor=0&aid=1988",
		c.baseURL, url.QueryEscape(secUID), count,
	)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("recent videos: %w", err)
	}

	var resp itemListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("recent videos: unmarshal item list: %w", err)
	}

	if resp.StatusCode != 0 {
		return nil, fmt.Errorf("%w: item list status %d", ErrInvalidResponse, resp.StatusCode)
	}

	videos := make([]Video, 0, len(resp.ItemList))
	for _, raw := range resp.ItemList {
		videos = append(videos, parseVideo(raw))
	}

	return videos, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

// waitFor enforces a minimum delay between consecutive calls of one
// operation type.
func (c *Client) waitFor(mu *sync.Mutex, last *time.Time, delay time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	if wait := delay - time.Since(*last); wait > 0 {
		time.Sleep(wait)
	}

	*last = time.Now()
}
