// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/clause-classifier/internal/classify"
	"github.com/pdiddy/clause-classifier/internal/httputil"
	"github.com/pdiddy/clause-classifier/internal/logging"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

const webhookTimeout = 30 * time.Second

// WebhookSink posts the JSON report to URL. Token, when set, is sent as a
// bearer token.
type WebhookSink struct {
	URL        string
	Token      string
	Client     *http.Client
	MaxRetries int
	Log        logging.Logger
}

// Write implements classify.Sink.
func (s WebhookSink) Write(ctx context.Context, r *types.RunReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Run-ID", r.RunID)
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: webhookTimeout}
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, s.MaxRetries, s.Log)
	if err != nil {
		return fmt.Errorf("posting report to %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook %s returned %s: %s", req.URL.Redacted(), resp.Status, bytes.TrimSpace(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

var _ classify.Sink = WebhookSink{}
