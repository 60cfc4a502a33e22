package channel

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTelegramAPIBase = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
	telegramChannelName    = "telegram"
)

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// TelegramChannel delivers alerts to a Telegram chat via the Bot API with a
// single synchronous sendMessage call per alert.
type TelegramChannel struct {
	client  *resty.Client
	apiBase string
	token   string
	chatID  string
}

func NewTelegramChannel(token, chatID string) (*TelegramChannel, error) {
	client := resty.New()
	client.SetTimeout(defaultTelegramTimeout)
	client.SetRetryCount(0)

	return NewTelegramChannelWithClient(token, chatID, defaultTelegramAPIBase, client)
}

func NewTelegramChannelWithClient(token, chatID, apiBase string, client *resty.Client) (*TelegramChannel, error) {
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	trimmedChatID := strings.TrimSpace(chatID)
	if trimmedChatID == "" {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	trimmedBase := strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if trimmedBase == "" {
		trimmedBase = defaultTelegramAPIBase
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultTelegramTimeout)
	}
	client.SetRetryCount(0)

	return &TelegramChannel{
		client:  client,
		apiBase: trimmedBase,
		token:   trimmedToken,
		chatID:  trimmedChatID,
	}, nil
}

func (c *TelegramChannel) Name() string { return telegramChannelName }

func (c *TelegramChannel) Deliver(ctx context.Context, content string) (*Result, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("telegram channel is not initialized")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required")
	}

	var parsed sendMessageResponse
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendMessageRequest{ChatID: c.chatID, Text: content}).
		SetResult(&parsed).
		SetError(&parsed).
		Post(endpoint)
	if err != nil {
		return nil, &DeliveryError{
			Message: "telegram request failed",
			Cause:   err,
		}
	}
	if response == nil {
		return nil, &DeliveryError{Message: "telegram returned empty response"}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices && parsed.OK {
		return &Result{
			MessageID: strconv.FormatInt(parsed.Result.MessageID, 10),
			Content:   content,
		}, nil
	}

	return nil, &DeliveryError{
		StatusCode: statusCode,
		Message:    telegramErrorMessage(statusCode, parsed.Description),
	}
}

func telegramErrorMessage(statusCode int, description string) string {
	base := fmt.Sprintf("telegram returned status %d", statusCode)
	if strings.TrimSpace(description) == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, strings.TrimSpace(description))
}
