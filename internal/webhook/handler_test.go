package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumekitchen/recipe-linebot-go/internal/bot"
	"github.com/yumekitchen/recipe-linebot-go/internal/ctxutil"
	"github.com/yumekitchen/recipe-linebot-go/internal/logger"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
)

const testChannelSecret = "test-channel-secret"

// recordingBot captures every message the webhook hands to the bot, along
// with the tracing values on the handed-in context.
type recordingBot struct {
	mu         sync.Mutex
	messages   []bot.Incoming
	requestIDs []string
	userIDs    []string
	block      chan struct{} // when set, handlers wait on it
}

func (b *recordingBot) HandleTextMessage(ctx context.Context, msg bot.Incoming) error {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
	requestID, _ := ctxutil.GetRequestID(ctx)
	b.requestIDs = append(b.requestIDs, requestID)
	b.userIDs = append(b.userIDs, ctxutil.GetUserID(ctx))
	return nil
}

func (b *recordingBot) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func newTestHandler(t *testing.T, rb *recordingBot) *Handler {
	t.Helper()
	h := NewHandler(HandlerConfig{
		ChannelSecret:       testChannelSecret,
		Bot:                 rb,
		Metrics:             metrics.New(prometheus.NewRegistry()),
		Logger:              logger.NewWithWriter("error", io.Discard),
		Workers:             4,
		MaxEventsPerWebhook: 100,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/callback", h.Handle)
	return router
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func textMessageEvent(eventID, userID, replyToken, text string) string {
	return fmt.Sprintf(`{
		"type": "message",
		"mode": "active",
		"timestamp": 1756500000000,
		"webhookEventId": %q,
		"deliveryContext": {"isRedelivery": false},
		"replyToken": %q,
		"source": {"type": "user", "userId": %q},
		"message": {"type": "text", "id": "msg-1", "quoteToken": "qt", "text": %q}
	}`, eventID, replyToken, userID, text)
}

func webhookBody(events ...string) []byte {
	return fmt.Appendf(nil, `{"destination": "dest", "events": [%s]}`, strings.Join(events, ","))
}

func TestHandleRejectsInvalidSignature(t *testing.T) {
	rb := &recordingBot{}
	router := newTestRouter(newTestHandler(t, rb))

	body := webhookBody(textMessageEvent("evt-1", "U123", "reply-token-000001", "hello"))
	w := postWebhook(router, body, "bad-signature")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, rb.count())
}

func TestHandleDispatchesTextMessage(t *testing.T) {
	rb := &recordingBot{}
	router := newTestRouter(newTestHandler(t, rb))

	body := webhookBody(textMessageEvent("evt-1", "U123", "reply-token-000001", "今日は暑い"))
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool { return rb.count() == 1 }, time.Second, 5*time.Millisecond)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	msg := rb.messages[0]
	assert.Equal(t, "U123", msg.UserID)
	assert.Equal(t, "reply-token-000001", msg.ReplyToken)
	assert.Equal(t, "今日は暑い", msg.Text)
}

func TestEventContextCarriesTracingValues(t *testing.T) {
	rb := &recordingBot{}
	router := newTestRouter(newTestHandler(t, rb))

	body := webhookBody(textMessageEvent("evt-42", "U123", "reply-token-000001", "hello"))
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Eventually(t, func() bool { return rb.count() == 1 }, time.Second, 5*time.Millisecond)

	// The bot sees the event ID and user ID on its context even though
	// processing outlives the HTTP request.
	rb.mu.Lock()
	defer rb.mu.Unlock()
	assert.Equal(t, "evt-42", rb.requestIDs[0])
	assert.Equal(t, "U123", rb.userIDs[0])
}

func TestHandleProcessesBatchedEvents(t *testing.T) {
	rb := &recordingBot{}
	router := newTestRouter(newTestHandler(t, rb))

	body := webhookBody(
		textMessageEvent("evt-1", "U1", "reply-token-000001", "a"),
		textMessageEvent("evt-2", "U2", "reply-token-000002", "b"),
		textMessageEvent("evt-3", "U3", "reply-token-000003", "c"),
	)
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Eventually(t, func() bool { return rb.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestHandleTruncatesOversizedBatch(t *testing.T) {
	rb := &recordingBot{}
	h := NewHandler(HandlerConfig{
		ChannelSecret:       testChannelSecret,
		Bot:                 rb,
		Metrics:             metrics.New(prometheus.NewRegistry()),
		Logger:              logger.NewWithWriter("error", io.Discard),
		Workers:             4,
		MaxEventsPerWebhook: 2,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	}()
	router := newTestRouter(h)

	body := webhookBody(
		textMessageEvent("evt-1", "U1", "reply-token-000001", "a"),
		textMessageEvent("evt-2", "U2", "reply-token-000002", "b"),
		textMessageEvent("evt-3", "U3", "reply-token-000003", "c"),
	)
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Eventually(t, func() bool { return rb.count() == 2 }, time.Second, 5*time.Millisecond)

	// The third event stays dropped.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, rb.count())
}

func TestHandleIgnoresNonTextAndGroupEvents(t *testing.T) {
	rb := &recordingBot{}
	router := newTestRouter(newTestHandler(t, rb))

	sticker := `{
		"type": "message",
		"mode": "active",
		"timestamp": 1756500000000,
		"webhookEventId": "evt-s",
		"deliveryContext": {"isRedelivery": false},
		"replyToken": "reply-token-000009",
		"source": {"type": "user", "userId": "U123"},
		"message": {"type": "sticker", "id": "msg-2", "quoteToken": "qt", "packageId": "1", "stickerId": "2"}
	}`
	group := `{
		"type": "message",
		"mode": "active",
		"timestamp": 1756500000000,
		"webhookEventId": "evt-g",
		"deliveryContext": {"isRedelivery": false},
		"replyToken": "reply-token-000010",
		"source": {"type": "group", "groupId": "G1", "userId": "U123"},
		"message": {"type": "text", "id": "msg-3", "quoteToken": "qt", "text": "hi"}
	}`
	follow := `{
		"type": "follow",
		"mode": "active",
		"timestamp": 1756500000000,
		"webhookEventId": "evt-f",
		"deliveryContext": {"isRedelivery": false},
		"replyToken": "reply-token-000011",
		"source": {"type": "user", "userId": "U123"}
	}`

	body := webhookBody(sticker, group, follow)
	w := postWebhook(router, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rb.count())
}

func TestShutdownWaitsForInFlightEvents(t *testing.T) {
	rb := &recordingBot{block: make(chan struct{})}
	h := newTestHandler(t, rb)
	router := newTestRouter(h)

	body := webhookBody(textMessageEvent("evt-1", "U1", "reply-token-000001", "a"))
	postWebhook(router, body, sign(body))

	// Shutdown must block while the handler is stuck.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.Shutdown(ctx), context.DeadlineExceeded)

	// Unblock and drain.
	close(rb.block)
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	assert.NoError(t, h.Shutdown(ctx2))
	assert.Equal(t, 1, rb.count())
}
