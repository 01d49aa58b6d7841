// Package bot implements the conversation flow: a free-text mood message
// yields a pushed list of dish suggestions, and a following numeric pick
// yields the full recipe for the chosen dish.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/yumekitchen/recipe-linebot-go/internal/apperrors"
	"github.com/yumekitchen/recipe-linebot-go/internal/completion"
	"github.com/yumekitchen/recipe-linebot-go/internal/ctxutil"
	"github.com/yumekitchen/recipe-linebot-go/internal/lineutil"
	"github.com/yumekitchen/recipe-linebot-go/internal/logger"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
	"github.com/yumekitchen/recipe-linebot-go/internal/quota"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
	"github.com/yumekitchen/recipe-linebot-go/internal/session"
	"golang.org/x/text/width"
)

// Sender delivers messages to a LINE user. Reply consumes the single-use
// reply token; Push reaches the user on a fresh channel afterwards.
type Sender interface {
	Reply(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error
	Push(ctx context.Context, userID string, messages []messaging_api.MessageInterface) error
}

// Incoming is one inbound text message, already unwrapped from the webhook
// event envelope.
type Incoming struct {
	UserID     string
	ReplyToken string
	Text       string
}

// HandlerConfig holds dependencies for creating a Handler.
type HandlerConfig struct {
	Sessions  session.Store
	Quota     *quota.Tracker
	Completer completion.Completer
	Sender    Sender
	Metrics   *metrics.Metrics
	Logger    *logger.Logger

	// HeaderStyle selects the suggestion parser's header-detection strategy.
	HeaderStyle recipe.HeaderStyle

	// SlowResponseThreshold prepends a delay apology to the pushed results
	// when the suggestion completion took longer than this (0 = disabled).
	SlowResponseThreshold time.Duration
}

// Handler is the per-user conversation state machine. A user is idle until a
// suggestion set is stored for them, then awaiting a selection until the set
// is consumed, replaced, or expires.
type Handler struct {
	sessions      session.Store
	quota         *quota.Tracker
	completer     completion.Completer
	sender        Sender
	metrics       *metrics.Metrics
	logger        *logger.Logger
	headerStyle   recipe.HeaderStyle
	slowThreshold time.Duration
	senderInfo    *messaging_api.Sender
}

// NewHandler creates the conversation handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		sessions:      cfg.Sessions,
		quota:         cfg.Quota,
		completer:     cfg.Completer,
		sender:        cfg.Sender,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.WithModule("bot"),
		headerStyle:   cfg.HeaderStyle,
		slowThreshold: cfg.SlowResponseThreshold,
		senderInfo:    lineutil.NewSender(senderName, ""),
	}
}

// HandleTextMessage processes one inbound text message. A bare positive
// integer consumes the user's pending session when it lands in range; every
// other input, including a number with nothing pending, is a fresh mood
// request. All upstream failures are recovered into fixed user-facing texts.
func (h *Handler) HandleTextMessage(ctx context.Context, msg Incoming) error {
	text := strings.TrimSpace(msg.Text)
	log := h.logger.WithField("user_id", msg.UserID)
	if requestID, ok := ctxutil.GetRequestID(ctx); ok {
		log = log.WithRequestID(requestID)
	}

	if pick, ok := parsePick(text); ok {
		cand, err := h.sessions.Resolve(ctx, msg.UserID, pick)
		switch {
		case err == nil:
			h.metrics.RecordSessionOutcome("resolved")
			return h.sendDetail(ctx, msg, cand, log)
		case errors.Is(err, apperrors.ErrNoSession), errors.Is(err, apperrors.ErrInvalidInput):
			// Not a usable selection; treat the number as a new mood.
			h.metrics.RecordSessionOutcome("miss")
		default:
			// Store trouble must not silence the user.
			log.WithError(err).Error("Session resolve failed")
			h.metrics.RecordSessionOutcome("miss")
		}
	}

	return h.suggest(ctx, msg, text, log)
}

// sendDetail fetches the full recipe for the resolved candidate and replies
// with it. The session is already consumed: a failed fetch still leaves the
// user idle, so re-sending the number starts over instead of retrying.
func (h *Handler) sendDetail(ctx context.Context, msg Incoming, cand recipe.Candidate, log *logger.Logger) error {
	detail, _, err := h.complete(ctx, "detail", recipe.DetailPrompt(cand.Title))
	if err != nil {
		log.WithError(err).WithField("title", cand.Title).Error("Detail completion failed")
		return h.reply(ctx, msg.ReplyToken, lineutil.NewTextMessage(detailFailText))
	}

	log.WithField("title", cand.Title).Info("Recipe detail sent")
	return h.reply(ctx, msg.ReplyToken, detailMessage(cand.Title, detail))
}

// suggest runs the fresh-request flow: quota gate, immediate acknowledgement
// on the reply token, slow completion call, then results by push.
func (h *Handler) suggest(ctx context.Context, msg Incoming, mood string, log *logger.Logger) error {
	if err := h.quota.Allow(msg.UserID); errors.Is(err, apperrors.ErrQuotaExceeded) {
		log.Info("Daily quota exceeded")
		return h.reply(ctx, msg.ReplyToken, lineutil.NewTextMessage(quotaText))
	}

	// The reply token is single-use, so it carries the acknowledgement and
	// the results go out on a push once the completion returns.
	if err := h.reply(ctx, msg.ReplyToken, lineutil.NewTextMessage(thinkingText)); err != nil {
		log.WithError(err).Warn("Failed to send thinking notice")
	}

	raw, elapsed, err := h.complete(ctx, "suggest", recipe.SuggestionPrompt(mood))
	if err != nil {
		log.WithError(err).Error("Suggestion completion failed")
		return h.push(ctx, msg.UserID, lineutil.NewTextMessage(suggestFailText))
	}

	set := recipe.ParseSuggestions(raw, h.headerStyle)
	h.metrics.RecordParsedCandidates(len(set.Candidates), set.Summary != "")
	if set.Empty() {
		log.Warn("No candidates parsed from completion")
		if err := h.push(ctx, msg.UserID, lineutil.NewTextMessage(suggestFailText)); err != nil {
			return err
		}
		return apperrors.ErrEmptySuggestions
	}

	if _, err := h.sessions.Get(ctx, msg.UserID); err == nil {
		h.metrics.RecordSessionOutcome("replaced")
	}
	if err := h.sessions.Put(ctx, msg.UserID, set); err != nil {
		// Without a stored session the buttons would lead nowhere.
		log.WithError(err).Error("Failed to store session")
		return h.push(ctx, msg.UserID, lineutil.NewTextMessage(suggestFailText))
	}

	messages := suggestionMessages(mood, set)
	if h.slowThreshold > 0 && elapsed > h.slowThreshold {
		messages = append(
			[]messaging_api.MessageInterface{lineutil.NewTextMessageWithSender(slowResponseText, h.senderInfo)},
			messages...,
		)
	}

	log.WithField("candidates", len(set.Candidates)).
		WithField("has_summary", set.Summary != "").
		WithField("completion_ms", elapsed.Milliseconds()).
		Info("Suggestions sent")
	return h.push(ctx, msg.UserID, messages...)
}

// complete calls the completion service and records the outcome.
func (h *Handler) complete(ctx context.Context, kind, prompt string) (string, time.Duration, error) {
	start := time.Now()
	text, err := h.completer.Complete(ctx, kind, prompt)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	h.metrics.RecordCompletion(kind, status, elapsed.Seconds())

	return text, elapsed, err
}

func (h *Handler) reply(ctx context.Context, replyToken string, messages ...messaging_api.MessageInterface) error {
	for _, m := range messages {
		lineutil.SetSender(m, h.senderInfo)
	}
	return h.sender.Reply(ctx, replyToken, messages)
}

func (h *Handler) push(ctx context.Context, userID string, messages ...messaging_api.MessageInterface) error {
	for _, m := range messages {
		lineutil.SetSender(m, h.senderInfo)
	}
	return h.sender.Push(ctx, userID, messages)
}

// parsePick reports whether the text is a bare positive integer and returns
// it. Fullwidth digits are folded to ASCII first, matching how Japanese
// keyboards often type numbers.
func parsePick(text string) (int, bool) {
	text = width.Narrow.String(text)
	if text == "" || len(text) > 3 {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	pick, err := strconv.Atoi(text)
	if err != nil || pick < 1 {
		return 0, false
	}
	return pick, true
}
