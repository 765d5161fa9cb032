package model

// Notice is an outbound user notification queued for delivery by the chat
// transport. Delivery is best effort; failed notices are dropped, not retried.
type Notice struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}
