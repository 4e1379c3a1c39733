// Package provider talks to the web font service: requests stylesheets for
// every font format and downloads referenced font files.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"wfc/common"
	"wfc/config"
)

// maximum accepted response body size
const maxPayload = 64 << 20

// StatusError is returned when provider responds with non successful status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.URL, e.Status)
}

// Client issues requests to the provider identifying itself differently
// for every font format.
type Client struct {
	cfg  *config.ProviderConfig
	http *http.Client
	log  *zap.Logger
}

// NewClient creates provider client. Proxy from configuration takes
// precedence over environment settings.
func NewClient(cfg *config.ProviderConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("bad provider url: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if len(cfg.Proxy) > 0 {
		proxy, err := url.Parse(string(cfg.Proxy))
		if err != nil || proxy.Host == "" {
			// do not leak credentials into the log
			return nil, fmt.Errorf("bad proxy url (%s)", cfg.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Transport: transport},
		log:  log.Named("provider"),
	}, nil
}

// StylesheetURL builds stylesheet request for family and variants.
func (c *Client) StylesheetURL(family string, sel Selector) string {
	sep := "?"
	if strings.Contains(c.cfg.URL, "?") {
		sep = "&"
	}
	return c.cfg.URL + sep + "family=" + url.QueryEscape(family) + ":" + sel.String()
}

// Stylesheet requests stylesheet provider generates for the format.
func (c *Client) Stylesheet(ctx context.Context, family string, sel Selector, format common.FontFormat) (string, error) {
	u := c.StylesheetURL(family, sel)
	body, err := c.get(ctx, u, format, true)
	if err != nil {
		return "", fmt.Errorf("unable to get %s stylesheet: %w", format, err)
	}
	c.log.Debug("Received stylesheet", zap.Stringer("format", format), zap.String("url", u), zap.Int("bytes", len(body)))
	return string(body), nil
}

// Fetch downloads resource identifying itself as the client for format.
func (c *Client) Fetch(ctx context.Context, rawURL string, format common.FontFormat) ([]byte, error) {
	body, err := c.get(ctx, rawURL, format, false)
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", rawURL, err)
	}
	c.log.Debug("Downloaded", zap.String("url", rawURL), zap.Int("bytes", len(body)))
	return body, nil
}

func (c *Client) get(ctx context.Context, rawURL string, format common.FontFormat, text bool) ([]byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgents.For(format))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain to allow connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}

	var r io.Reader = io.LimitReader(resp.Body, maxPayload+1)
	if text {
		if r, err = charset.NewReader(r, resp.Header.Get("Content-Type")); err != nil {
			return nil, fmt.Errorf("unable to decode response: %w", err)
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) > maxPayload {
		return nil, fmt.Errorf("response is too large (over %d bytes)", maxPayload)
	}
	return data, nil
}
