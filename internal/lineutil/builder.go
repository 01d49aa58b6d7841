// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   Action
}

// NewTextMessage creates a simple text message.
// LINE API limits: max 5000 characters per text message
func NewTextMessage(text string) *messaging_api.TextMessage {
	if len([]rune(text)) > MaxTextMessageLength {
		text = TruncateRunes(text, MaxTextMessageLength)
	}

	return &messaging_api.TextMessage{
		Text: text,
	}
}

// NewTextMessageWithSender creates a text message carrying sender information.
func NewTextMessageWithSender(text string, sender *messaging_api.Sender) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	msg.Sender = sender
	return msg
}

// NewSender creates sender information shown as the message avatar.
// Either field may be empty; LINE falls back to the channel defaults.
func NewSender(name, iconURL string) *messaging_api.Sender {
	sender := &messaging_api.Sender{}
	if name != "" {
		sender.Name = TruncateRunes(name, MaxSenderNameLength)
	}
	if iconURL != "" {
		sender.IconUrl = iconURL
	}
	return sender
}

// NewMessageAction creates a message action that sends a message when clicked.
// The label is displayed on the button, and text is the message that will be sent.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: TruncateDisplayWidth(label, MaxActionLabelWidth),
		Text:  text,
	}
}

// NewQuickReply creates a quick reply component from the given items.
// LINE API limits: max 13 items
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewFlexMessage creates a flex message with the given alt text and container.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	if len([]rune(altText)) > MaxAltTextLength {
		altText = TruncateRunes(altText, MaxAltTextLength)
	}

	return &messaging_api.FlexMessage{
		AltText:  altText,
		Contents: contents,
	}
}

// SetSender sets the Sender field on a message.
// Returns the same message for method chaining.
// Supports: TextMessage, FlexMessage, TemplateMessage
func SetSender(msg messaging_api.MessageInterface, sender *messaging_api.Sender) messaging_api.MessageInterface {
	if sender == nil {
		return msg
	}

	switch m := msg.(type) {
	case *messaging_api.TextMessage:
		m.Sender = sender
	case *messaging_api.FlexMessage:
		m.Sender = sender
	case *messaging_api.TemplateMessage:
		m.Sender = sender
	}

	return msg
}
