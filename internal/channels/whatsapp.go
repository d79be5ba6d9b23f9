package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppClient posts rendered alerts to a webhook bridge. The HTTP client
// timeout bounds the call so a hung webhook cannot stall the relay.
type WhatsAppClient struct {
	webhookURL  string
	bearerToken string
	client      *http.Client
}

func NewWhatsAppClient(webhookURL string, timeout time.Duration, bearerToken string) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WhatsAppClient{
		webhookURL:  webhookURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// Send delivers the message text plus the structured payload. Any non-2xx
// response is a failure.
func (c *WhatsAppClient) Send(ctx context.Context, text string, payload map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"text":  text,
		"event": payload,
	})
	if err != nil {
		return fmt.Errorf("marshal whatsapp body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whatsapp webhook returned %d", resp.StatusCode)
	}
	return nil
}
