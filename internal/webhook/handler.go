// Package webhook receives LINE webhook deliveries, acknowledges them
// immediately, and dispatches the contained events to the bot with bounded
// concurrency.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/yumekitchen/recipe-linebot-go/internal/bot"
	"github.com/yumekitchen/recipe-linebot-go/internal/ctxutil"
	"github.com/yumekitchen/recipe-linebot-go/internal/logger"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// MessageHandler processes one unwrapped inbound text message.
type MessageHandler interface {
	HandleTextMessage(ctx context.Context, msg bot.Incoming) error
}

// Handler handles LINE webhook deliveries.
type Handler struct {
	channelSecret string
	client        *messaging_api.MessagingApiAPI
	bot           MessageHandler
	metrics       *metrics.Metrics
	logger        *logger.Logger

	sem *semaphore.Weighted // bounds concurrent event processing
	wg  sync.WaitGroup

	maxEventsPerWebhook int
}

// HandlerConfig holds configuration for creating a Handler.
type HandlerConfig struct {
	ChannelSecret string
	Client        *messaging_api.MessagingApiAPI
	Bot           MessageHandler
	Metrics       *metrics.Metrics
	Logger        *logger.Logger

	// Workers bounds how many events are processed concurrently.
	Workers int
	// MaxEventsPerWebhook caps events accepted per delivery.
	MaxEventsPerWebhook int
}

// NewHandler creates a webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              cfg.Client,
		bot:                 cfg.Bot,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		sem:                 semaphore.NewWeighted(int64(workers)),
		maxEventsPerWebhook: cfg.MaxEventsPerWebhook,
	}
}

// Handle is the Gin handler for the webhook endpoint.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			h.metrics.RecordHTTPError("signature_invalid")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			h.metrics.RecordHTTPError("parse_failed")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// LINE expects a prompt acknowledgement; everything else is async.
	c.Status(http.StatusOK)

	start := time.Now()
	h.metrics.RecordWebhookReceived()

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events so the batch survives the HTTP handler returning.
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Go(func() {
		// Detached from the request so processing survives the 200 going
		// out, but keeps any tracing values the middleware attached.
		ctx := ctxutil.PreserveTracing(c.Request.Context())
		for _, event := range events {
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return
			}
			h.wg.Go(func() {
				defer h.sem.Release(1)
				defer func() {
					if r := recover(); r != nil {
						h.logger.WithField("panic", r).Error("Panic in event processing")
					}
				}()
				h.processEvent(ctx, event, start)
			})
		}
	})
}

// processEvent handles a single webhook event. Only one-on-one text messages
// drive the bot; anything else is skipped.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, batchStart time.Time) {
	msgEvent, ok := event.(webhook.MessageEvent)
	if !ok {
		h.logger.WithField("event_type", fmt.Sprintf("%T", event)).Debug("Unsupported event type")
		return
	}

	textMsg, ok := msgEvent.Message.(webhook.TextMessageContent)
	if !ok {
		h.logger.WithField("message_type", msgEvent.Message.GetType()).Debug("Non-text message ignored")
		return
	}

	userSource, ok := msgEvent.Source.(webhook.UserSource)
	if !ok {
		h.logger.Debug("Non-user source ignored")
		return
	}

	eventID := msgEvent.WebhookEventId
	if eventID == "" {
		eventID = uuid.NewString()
	}
	ctx = ctxutil.WithRequestID(ctx, eventID)
	ctx = ctxutil.WithUserID(ctx, userSource.UserId)

	log := h.logger.WithRequestID(eventID)
	if msgEvent.DeliveryContext != nil && msgEvent.DeliveryContext.IsRedelivery {
		log = log.WithField("is_redelivery", true)
	}

	// Loading dots in the chat while the completion call runs.
	if err := h.showLoadingAnimation(userSource.UserId); err != nil {
		log.WithError(err).Warn("Failed to show loading animation")
	}

	eventStart := time.Now()
	err := h.bot.HandleTextMessage(ctx, bot.Incoming{
		UserID:     userSource.UserId,
		ReplyToken: msgEvent.ReplyToken,
		Text:       textMsg.Text,
	})

	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).Error("Failed to handle message")
	}
	h.metrics.RecordWebhook("message", status, time.Since(eventStart).Seconds())

	log.WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(batchStart).Milliseconds()).
		Info("Event processed")
}

// showLoadingAnimation shows the typing indicator in the user's chat.
// LINE accepts 5-60 seconds in multiples of 5; 60 covers a slow completion.
func (h *Handler) showLoadingAnimation(chatID string) error {
	if h.client == nil || chatID == "" {
		return nil
	}

	_, err := h.client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 60,
	})
	if err != nil {
		return fmt.Errorf("show loading animation: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight event processing to finish. It returns an
// error if the context is canceled first.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
