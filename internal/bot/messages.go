package bot

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/yumekitchen/recipe-linebot-go/internal/lineutil"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
)

// User-facing texts. All fixed responses live here so upstream error detail
// never leaks into a chat.
const (
	thinkingText     = "メッセージ受け取りました。考え中です…🤔"
	suggestFailText  = "ちょっと調子が悪いみたいです💦 また後で試してみてください🙏"
	detailFailText   = "レシピ取得に失敗しました。後でもう一度お試しください。"
	quotaText        = "今日のレシピ提案は上限に達しました🙏 また明日試してみてください！"
	slowResponseText = "お待たせしてごめんなさい🙏 考えるのに時間がかかっちゃいました💦"

	suggestionAltText = "レシピの提案です"
)

// senderName labels pushed messages in the chat list.
const senderName = "レシピボット"

// suggestionMessages renders a suggestion set for the user: an optional
// standalone summary text followed by a bubble with one selection button per
// candidate. The button label shows the ordinal and title; the selection
// payload is the bare ordinal so the next inbound message resolves by number.
func suggestionMessages(mood string, set recipe.SuggestionSet) []messaging_api.MessageInterface {
	var messages []messaging_api.MessageInterface

	if set.Summary != "" {
		messages = append(messages, lineutil.NewTextMessage(set.Summary))
	}

	header := lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText(suggestionAltText).
			WithWeight("bold").
			WithSize("lg").
			WithColor(lineutil.ColorHeroText).
			FlexText,
	).
		WithBackgroundColor(lineutil.ColorHeroBg).
		WithPaddingAll(lineutil.SpacingL)

	body := lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText(fmt.Sprintf("「%s」にぴったりなレシピ、選んでね👇", mood)).
			WithWeight("bold").
			WithSize("md").
			WithColor(lineutil.ColorText).
			WithWrap(true).
			FlexText,
	).AddComponent(
		lineutil.NewFlexSeparator().
			WithMargin(lineutil.SpacingM).
			WithColor(lineutil.ColorSeparator).
			FlexSeparator,
	)

	footer := lineutil.NewFlexBox("vertical").WithSpacing(lineutil.SpacingS)
	for i, cand := range set.Candidates {
		n := i + 1
		footer.AddComponent(
			lineutil.NewFlexButton(
				lineutil.NewMessageAction(fmt.Sprintf("%d. %s", n, cand.Title), fmt.Sprintf("%d", n)),
			).
				WithStyle("primary").
				WithColor(lineutil.ColorPrimary).
				WithMargin(lineutil.SpacingS).
				FlexButton,
		)
	}

	bubble := lineutil.NewFlexBubble(header, body, footer)
	flexMsg := lineutil.NewFlexMessage(suggestionAltText, bubble.FlexBubble)

	// Number chips under the keyboard mirror the buttons, so a tap or a
	// typed digit both resolve the same way.
	items := make([]lineutil.QuickReplyItem, 0, len(set.Candidates))
	for i := range set.Candidates {
		n := fmt.Sprintf("%d", i+1)
		items = append(items, lineutil.QuickReplyItem{Action: lineutil.NewMessageAction(n, n)})
	}
	flexMsg.QuickReply = lineutil.NewQuickReply(items)

	messages = append(messages, flexMsg)

	return messages
}

// detailMessage renders a fetched recipe prefixed with the dish title.
func detailMessage(title, detail string) messaging_api.MessageInterface {
	return lineutil.NewTextMessage(fmt.Sprintf("%s の作り方です：\n\n%s", title, detail))
}
