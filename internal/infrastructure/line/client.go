package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-market-api/internal/config"
	"github.com/go-market-api/internal/domain"
)

const (
	defaultEndpoint = "https://api.line.me"
	pushPath        = "/v2/bot/message/push"

	// LINE caps buttons-template text at 160 characters.
	maxTemplateText = 160
)

// Client pushes messages through the LINE Messaging API.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	channelToken string
}

func NewClient(cfg *config.Config) *Client {
	endpoint := cfg.LineAPIEndpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		endpoint:     endpoint,
		channelToken: cfg.LineChannelToken,
	}
}

type pushRequest struct {
	To                   string        `json:"to"`
	Messages             []interface{} `json:"messages"`
	NotificationDisabled bool          `json:"notificationDisabled,omitempty"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateMessage struct {
	Type     string          `json:"type"`
	AltText  string          `json:"altText"`
	Template buttonsTemplate `json:"template"`
}

type buttonsTemplate struct {
	Type    string      `json:"type"`
	Text    string      `json:"text"`
	Actions []uriAction `json:"actions"`
}

type uriAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}

func (c *Client) SendText(ctx context.Context, to, text string, priority domain.Priority) error {
	return c.push(ctx, to, priority, textMessage{Type: "text", Text: text})
}

// SendTextWithLink pushes a buttons template: the text plus one URI action
// opening linkURL.
func (c *Client) SendTextWithLink(ctx context.Context, to, text, linkURL, linkLabel string, priority domain.Priority) error {
	return c.push(ctx, to, priority, templateMessage{
		Type:    "template",
		AltText: text,
		Template: buttonsTemplate{
			Type: "buttons",
			Text: truncate(text, maxTemplateText),
			Actions: []uriAction{
				{Type: "uri", Label: linkLabel, URI: linkURL},
			},
		},
	})
}

func (c *Client) push(ctx context.Context, to string, priority domain.Priority, message interface{}) error {
	body, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []interface{}{message},
		// Low priority content should not buzz the recipient's phone.
		NotificationDisabled: priority == domain.PriorityLow,
	})
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+pushPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Include the response body: LINE error payloads carry the reason
		// (invalid token, blocked user, rate limit) needed to diagnose.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line push: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
