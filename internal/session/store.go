// Package session keeps the per-conversation-turn search state that drives
// pagination controls. Stores are bounded (TTL or LRU) on purpose: a session
// that ages out is reported to the user as expired, never as an error.
package session

import (
	"context"
	"fmt"

	"autofilter-bot/internal/model"
)

// State is what a pagination callback needs to re-run its search. The offset
// travels in the callback payload, not here, so concurrent taps on the same
// message race only on tier switches (last write wins).
type State struct {
	Query string     `json:"query"`
	Tier  model.Tier `json:"tier"`
}

// Key derives the session key for one conversation turn.
func Key(chatID, messageID int64) string {
	return fmt.Sprintf("%d-%d", chatID, messageID)
}

// Store is the bounded session table. Get returns found=false for a missing
// or expired key.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Put(ctx context.Context, key string, st State) error
}
