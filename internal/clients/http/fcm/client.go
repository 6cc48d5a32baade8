// Package fcm is a thin client for the FCM legacy HTTP send API.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://fcm.googleapis.com/fcm/send"

// Message is one push send request: a single device token plus the visible
// notification and optional data payload.
type Message struct {
	To           string            `json:"to"`
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

// Notification is the user-visible part of a push message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Client sends push messages through FCM.
type Client struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

// NewClient instantiates the FCM client with sane defaults. An empty
// endpoint falls back to the production send URL.
func NewClient(serverKey, endpoint string, httpClient *http.Client) (*Client, error) {
	serverKey = strings.TrimSpace(serverKey)
	if serverKey == "" {
		return nil, errors.New("fcm server key is required")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{endpoint: endpoint, serverKey: serverKey, httpClient: httpClient}, nil
}

// Send relays the message and returns the provider's decoded response body.
func (c *Client) Send(ctx context.Context, message Message) (map[string]any, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("fcm client not configured")
	}
	if strings.TrimSpace(message.To) == "" {
		return nil, errors.New("device token is required")
	}
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encode fcm message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call fcm: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read fcm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fcm returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode fcm response: %w", err)
	}
	return result, nil
}
