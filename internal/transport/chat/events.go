// Package chat is the platform-agnostic bot surface: inbound text and
// callback events come in, rendered messages with inline controls go out
// through the Messenger. The concrete Telegram client plugs in behind the
// Messenger interface.
package chat

import "context"

// TextEvent is an inbound plain text message, the trigger for a new search
// or a slash command. ChatTitle is empty for private chats.
type TextEvent struct {
	ChatID       int64
	ChatTitle    string
	MessageID    int64
	FromUserID   int64
	FromUserName string
	Text         string
}

// MediaEvent is a media post seen in an indexed source channel.
type MediaEvent struct {
	ChatID   int64
	FileID   string
	FileName string
	Caption  string
	FileSize int64
}

// CallbackEvent is an inline button tap.
type CallbackEvent struct {
	ID         string
	FromUserID int64
	ChatID     int64
	MessageID  int64
	Data       string
}

// Button is one inline control. Data and URL are mutually exclusive.
type Button struct {
	Text string
	Data string
	URL  string
}

// Messenger is the outbound side of the chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	SendMessageWithButtons(ctx context.Context, chatID int64, text string, rows [][]Button) (int64, error)
	EditMessage(ctx context.Context, chatID, messageID int64, text string, rows [][]Button) error
	SendFile(ctx context.Context, chatID int64, fileID, caption string) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}
