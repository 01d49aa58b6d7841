package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestNewTextMessage(t *testing.T) {
	msg := NewTextMessage("こんにちは")
	if msg.Text != "こんにちは" {
		t.Errorf("Text = %q, want %q", msg.Text, "こんにちは")
	}
}

func TestNewTextMessageTruncatesOverlongText(t *testing.T) {
	long := strings.Repeat("あ", MaxTextMessageLength+100)
	msg := NewTextMessage(long)
	if got := len([]rune(msg.Text)); got > MaxTextMessageLength {
		t.Errorf("text length = %d runes, want <= %d", got, MaxTextMessageLength)
	}
	if !strings.HasSuffix(msg.Text, "...") {
		t.Error("truncated text should end with ellipsis")
	}
}

func TestNewTextMessageWithSender(t *testing.T) {
	sender := NewSender("レシピボット", "https://example.com/icon.png")
	msg := NewTextMessageWithSender("hello", sender)
	if msg.Sender != sender {
		t.Error("sender not attached")
	}
	if sender.Name != "レシピボット" {
		t.Errorf("sender name = %q", sender.Name)
	}
}

func TestNewMessageAction(t *testing.T) {
	action := NewMessageAction("1. 冷やし中華", "1")
	ma, ok := action.(*messaging_api.MessageAction)
	if !ok {
		t.Fatalf("action type = %T, want *MessageAction", action)
	}
	if ma.Label != "1. 冷やし中華" {
		t.Errorf("label = %q", ma.Label)
	}
	if ma.Text != "1" {
		t.Errorf("text = %q", ma.Text)
	}
}

func TestNewMessageActionTruncatesWideLabel(t *testing.T) {
	label := strings.Repeat("冷", 30) // 60 display cells
	action := NewMessageAction(label, "1")
	ma := action.(*messaging_api.MessageAction)
	if w := DisplayWidth(ma.Label); w > MaxActionLabelWidth {
		t.Errorf("label width = %d, want <= %d", w, MaxActionLabelWidth)
	}
	if ma.Text != "1" {
		t.Error("selection payload must not be touched by truncation")
	}
}

func TestNewQuickReplyCapsItems(t *testing.T) {
	items := make([]QuickReplyItem, MaxQuickReplyItemCount+5)
	for i := range items {
		items[i] = QuickReplyItem{Action: NewMessageAction("label", "text")}
	}
	qr := NewQuickReply(items)
	if len(qr.Items) != MaxQuickReplyItemCount {
		t.Errorf("items = %d, want %d", len(qr.Items), MaxQuickReplyItemCount)
	}
}

func TestSetSender(t *testing.T) {
	sender := NewSender("bot", "")

	text := NewTextMessage("hi")
	SetSender(text, sender)
	if text.Sender != sender {
		t.Error("sender not set on text message")
	}

	flex := NewFlexMessage("alt", NewFlexBubble(nil, NewFlexBox("vertical"), nil).FlexBubble)
	SetSender(flex, sender)
	if flex.Sender != sender {
		t.Error("sender not set on flex message")
	}

	// nil sender is a no-op
	other := NewTextMessage("hi")
	SetSender(other, nil)
	if other.Sender != nil {
		t.Error("nil sender should leave message untouched")
	}
}
