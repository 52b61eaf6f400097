// Package notify renders enriched contact submissions and delivers them to
// the Telegram Bot API. Delivery is a single synchronous attempt.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
	"github.com/onegateway/site-notify/internal/pkg/httpclient"
)

// Dispatcher delivers one notification per record.
type Dispatcher interface {
	Notify(ctx context.Context, rec domain.EnrichedRecord) (Receipt, error)
}

// Receipt identifies the delivered message.
type Receipt struct {
	MessageID int64
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// TelegramDispatcher posts formatted messages to sendMessage.
type TelegramDispatcher struct {
	endpoint  string
	token     string
	chatID    string
	parseMode string
	timeout   time.Duration
	client    httpclient.HTTPDoer
	formatter *Formatter
}

// NewTelegramDispatcher creates a dispatcher. If client is nil a client
// bounded by the configured timeout is used.
func NewTelegramDispatcher(cfg config.TelegramConfig, formatter *Formatter, client httpclient.HTTPDoer) *TelegramDispatcher {
	if client == nil {
		client = httpclient.New(cfg.Timeout())
	}
	return &TelegramDispatcher{
		endpoint:  fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(cfg.BaseURL, "/"), cfg.BotToken),
		token:     cfg.BotToken,
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		timeout:   cfg.Timeout(),
		client:    client,
		formatter: formatter,
	}
}

// Notify formats rec and sends it.
func (d *TelegramDispatcher) Notify(ctx context.Context, rec domain.EnrichedRecord) (Receipt, error) {
	text, err := d.formatter.Format(rec)
	if err != nil {
		return Receipt{}, err
	}
	return d.Send(ctx, text)
}

// Send posts text to the configured chat exactly once.
func (d *TelegramDispatcher) Send(ctx context.Context, text string) (Receipt, error) {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodPost, d.endpoint, sendMessageRequest{
		ChatID:    d.chatID,
		Text:      text,
		ParseMode: d.parseMode,
	})
	if err != nil {
		return Receipt{}, &DeliveryError{Err: err}
	}

	resp, err := httpclient.Send(d.client, req, d.timeout)
	if err != nil {
		return Receipt{}, &DeliveryError{Err: d.scrub(err)}
	}
	if !resp.OK() {
		return Receipt{}, &DeliveryError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var result sendMessageResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return Receipt{}, &DeliveryError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if !result.OK {
		return Receipt{}, &DeliveryError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: errors.New(result.Description)}
	}
	return Receipt{MessageID: result.Result.MessageID}, nil
}

// scrubbedError carries a transport error whose text no longer contains the
// bot token. The original stays reachable through Unwrap.
type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }

// scrub rewrites any error from the transport so that neither the request
// URL nor the token appears in its text; the URL path embeds the token.
func (d *TelegramDispatcher) scrub(err error) error {
	inner := err
	var uerr *url.Error
	if errors.As(err, &uerr) {
		inner = uerr.Err
	}
	msg := "sendMessage: " + inner.Error()
	if d.token != "" {
		msg = strings.ReplaceAll(msg, d.token, "<redacted>")
	}
	return &scrubbedError{msg: msg, err: err}
}
