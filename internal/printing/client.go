// Package printing forwards rendered ticket PDFs to the on-site print
// server. Printing is best-effort: a failure here never fails the
// registration that produced the ticket.
package printing

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient builds a print client. An empty baseURL or token yields a
// disabled client (Enabled reports false, Send refuses).
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.token != ""
}

// Send posts the PDF to the print server's /print/pdf endpoint.
func (c *Client) Send(ctx context.Context, pdf []byte) error {
	if !c.Enabled() {
		return fmt.Errorf("print server not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/print/pdf", bytes.NewReader(pdf))
	if err != nil {
		return fmt.Errorf("build print request: %w", err)
	}
	req.Header.Set("X-Token", c.token)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send to print server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("print server responded %d", resp.StatusCode)
	}
	c.logger.Info("ticket sent to print server", zap.Int("bytes", len(pdf)))
	return nil
}
