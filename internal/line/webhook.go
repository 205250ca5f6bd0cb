package line

import "encoding/json"

// WebhookBody is the envelope LINE posts to the webhook endpoint.
type WebhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only text message events are acted on;
// everything else is ignored.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
}

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// IsTextMessage reports whether the event carries user text to parse.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}

// ParseWebhookBody decodes a raw webhook payload.
func ParseWebhookBody(body []byte) (*WebhookBody, error) {
	var wb WebhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, err
	}
	return &wb, nil
}
