package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template/Flex message alt text length
	MaxSenderNameLength  = 20   // Sender display name length

	// Quick Reply Limits
	MaxQuickReplyItemCount = 13 // Max items in a quick reply
)

// Safe Buffer Limits (Application-defined for safety or UX)
const (
	// MaxActionLabelWidth bounds button labels by display cell width so
	// fullwidth Japanese labels stay on one line on common devices.
	MaxActionLabelWidth = 40
)
