package chat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"autofilter-bot/internal/model"
)

// Navigation actions carried in callback payloads.
const (
	ActionNext  = "next"
	ActionPrev  = "prev"
	ActionTier  = "tier"
	ActionPages = "pages"
	ActionClose = "close"
)

const filePrefix = "file#"

var ErrBadCallback = errors.New("malformed callback data")

// NavCallback is the wire format of a pagination or tier-switch control.
// It is private plumbing between the render step and the callback handler;
// fields are underscore-joined, which is safe because session keys and tier
// names never contain an underscore.
type NavCallback struct {
	Action      string
	RequesterID int64
	SessionKey  string
	Offset      int
	Tier        model.Tier
}

func (c NavCallback) Encode() string {
	switch c.Action {
	case ActionNext, ActionPrev:
		return fmt.Sprintf("%s_%d_%s_%d", c.Action, c.RequesterID, c.SessionKey, c.Offset)
	case ActionTier:
		return fmt.Sprintf("%s_%d_%s_%s", c.Action, c.RequesterID, c.SessionKey, c.Tier)
	default:
		return c.Action
	}
}

// ParseNavCallback decodes a navigation payload. It must round-trip Encode
// exactly for the controls on old messages to keep working.
func ParseNavCallback(data string) (NavCallback, error) {
	parts := strings.Split(data, "_")
	switch parts[0] {
	case ActionPages, ActionClose:
		if len(parts) != 1 {
			return NavCallback{}, ErrBadCallback
		}
		return NavCallback{Action: parts[0]}, nil
	case ActionNext, ActionPrev:
		if len(parts) != 4 {
			return NavCallback{}, ErrBadCallback
		}
		req, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return NavCallback{}, ErrBadCallback
		}
		offset, err := strconv.Atoi(parts[3])
		if err != nil || offset < 0 {
			return NavCallback{}, ErrBadCallback
		}
		return NavCallback{
			Action:      parts[0],
			RequesterID: req,
			SessionKey:  parts[2],
			Offset:      offset,
		}, nil
	case ActionTier:
		if len(parts) != 4 {
			return NavCallback{}, ErrBadCallback
		}
		req, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return NavCallback{}, ErrBadCallback
		}
		tier := model.Tier(parts[3])
		if !tier.IsStorage() && tier != model.TierAll {
			return NavCallback{}, ErrBadCallback
		}
		return NavCallback{
			Action:      parts[0],
			RequesterID: req,
			SessionKey:  parts[2],
			Tier:        tier,
		}, nil
	default:
		return NavCallback{}, ErrBadCallback
	}
}

// FileCallback encodes a file delivery control for one record.
func FileCallback(id string) string {
	return filePrefix + id
}

// ParseFileCallback extracts the file id, reporting whether data is a file
// payload at all.
func ParseFileCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, filePrefix) {
		return "", false
	}
	id := strings.TrimPrefix(data, filePrefix)
	if id == "" {
		return "", false
	}
	return id, true
}
