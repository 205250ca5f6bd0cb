// Package line is the LINE Messaging API collaborator: webhook payload
// types, signature verification, and the reply call.
package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const replyEndpoint = "https://api.line.me/v2/bot/message/reply"

// ValidateSignature checks the X-Line-Signature header against the raw
// request body: base64 of HMAC-SHA256 keyed with the channel secret.
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Client sends reply messages through the LINE Messaging API.
type Client struct {
	accessToken string
	httpClient  *http.Client
	endpoint    string
}

func NewClient(accessToken string) (*Client, error) {
	if accessToken == "" {
		return nil, errors.New("missing channel access token")
	}
	return &Client{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		endpoint:    replyEndpoint,
	}, nil
}

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends one text message for the given reply token. Reply tokens
// are single-use; a failed reply is logged and returned but never
// retried here, LINE rejects reused tokens anyway.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	payload := replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.ErrorContext(ctx, "LINE reply failed",
			"status", resp.StatusCode,
			"body", string(respBody))
		return fmt.Errorf("reply rejected with status %d", resp.StatusCode)
	}

	return nil
}
