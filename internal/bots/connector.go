package bots

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/models"
)

// ConnectorClient posts reply activities back to the channel's connector
// service.
type ConnectorClient struct {
	httpClient *http.Client
	token      string
}

// NewConnectorClient creates a client that authenticates with a static
// bearer token when token is non-empty.
func NewConnectorClient(httpClient *http.Client, token string) *ConnectorClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ConnectorClient{httpClient: httpClient, token: token}
}

// ReplyURL is {serviceUrl}/v3/conversations/{conversationId}/activities/{replyToId}.
// Without an incoming id the reply is posted to the conversation itself.
func ReplyURL(incoming *models.Activity) (string, error) {
	base := strings.TrimRight(incoming.ServiceURL, "/")
	if base == "" {
		return "", fmt.Errorf("activity has no serviceUrl")
	}

	u := base + "/v3/conversations/" + url.PathEscape(incoming.Conversation.ID) + "/activities"
	if incoming.ID != "" {
		u += "/" + url.PathEscape(incoming.ID)
	}
	return u, nil
}

func (c *ConnectorClient) SendReply(ctx context.Context, incoming, reply *models.Activity) error {
	target, err := ReplyURL(incoming)
	if err != nil {
		return apperrors.NewReplySendFailedError(err)
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return apperrors.NewReplySendFailedError(fmt.Errorf("encode reply: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewReplySendFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewReplySendFailedError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewReplySendFailedError(fmt.Errorf("connector returned status %d", resp.StatusCode))
	}
	return nil
}
