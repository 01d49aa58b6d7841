package webhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/yumekitchen/recipe-linebot-go/internal/bot"
)

// LineSender delivers bot messages through the LINE Messaging API.
type LineSender struct {
	client *messaging_api.MessagingApiAPI

	// minReplyTokenLength rejects obviously malformed reply tokens before
	// spending an API call on them.
	minReplyTokenLength int
}

// NewLineSender creates a sender on an existing Messaging API client.
func NewLineSender(client *messaging_api.MessagingApiAPI, minReplyTokenLength int) *LineSender {
	return &LineSender{
		client:              client,
		minReplyTokenLength: minReplyTokenLength,
	}
}

// Reply sends messages on the single-use reply token.
func (s *LineSender) Reply(_ context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	if len(replyToken) < s.minReplyTokenLength {
		return fmt.Errorf("reply token too short (%d chars)", len(replyToken))
	}

	_, err := s.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends messages directly to the user. The retry key makes the delivery
// idempotent should the request be retried after a network error.
func (s *LineSender) Push(_ context.Context, userID string, messages []messaging_api.MessageInterface) error {
	_, err := s.client.PushMessage(&messaging_api.PushMessageRequest{
		To:       userID,
		Messages: messages,
	}, uuid.NewString())
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	return nil
}

var _ bot.Sender = (*LineSender)(nil)
