package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"autofilter-bot/internal/app"
	"autofilter-bot/internal/model"
	"autofilter-bot/internal/pkg/format"
	"autofilter-bot/internal/repository"
	"autofilter-bot/internal/search"
	"autofilter-bot/internal/session"
)

// Searcher resolves one page of results for a raw query.
type Searcher interface {
	Search(ctx context.Context, rawQuery string, maxResults, offset int, langFilter string, selector model.Tier) search.Result
}

// PremiumGate decides whether a user may search and receive files.
type PremiumGate interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// FileResolver looks a file up by id across the tiers.
type FileResolver interface {
	Details(ctx context.Context, id string) (*model.FileRecord, error)
}

// UserRegistry records users on first contact and knows who is banned.
type UserRegistry interface {
	EnsureUser(ctx context.Context, id int64, name string) (bool, error)
	IsBanned(ctx context.Context, id int64) (bool, error)
}

// ChatRegistry records group chats on first contact.
type ChatRegistry interface {
	EnsureChat(ctx context.Context, id int64, title string) (bool, error)
}

// PremiumPlans covers the self-service plan commands.
type PremiumPlans interface {
	Plan(ctx context.Context, userID int64) (*model.PremiumRecord, error)
	ActivateTrial(ctx context.Context, userID int64) (*model.PremiumRecord, error)
}

// FileIndexer stores media posts picked up from source channels.
type FileIndexer interface {
	Save(ctx context.Context, record *model.FileRecord, tier model.Tier) (repository.SaveStatus, error)
}

const (
	msgNotFound        = "No results found for your query."
	msgSearchExpired   = "Search expired, please send your query again."
	msgNotForYou       = "This is not for you."
	msgPremiumRequired = "This feature requires a premium subscription.\nUse /plan to see available plans."
	msgFileGone        = "File not found. It may have been removed."
)

// Handler turns inbound chat events into searches, pagination updates, and
// file deliveries.
type Handler struct {
	messenger Messenger
	engine    Searcher
	sessions  session.Store
	gate      PremiumGate
	plans     PremiumPlans
	files     FileResolver
	indexer   FileIndexer
	users     UserRegistry
	chats     ChatRegistry
	pageSize  int
	logger    *zap.Logger
}

func NewHandler(messenger Messenger, engine Searcher, sessions session.Store, gate PremiumGate, plans PremiumPlans, files FileResolver, indexer FileIndexer, users UserRegistry, chats ChatRegistry, pageSize int, logger *zap.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Handler{
		messenger: messenger,
		engine:    engine,
		sessions:  sessions,
		gate:      gate,
		plans:     plans,
		files:     files,
		indexer:   indexer,
		users:     users,
		chats:     chats,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// HandleText runs a fresh search for an inbound message, or dispatches it as
// a command when it starts with a slash.
func (h *Handler) HandleText(ctx context.Context, ev TextEvent) error {
	if _, err := h.users.EnsureUser(ctx, ev.FromUserID, ev.FromUserName); err != nil {
		h.logger.Warn("ensure user failed", zap.Int64("user_id", ev.FromUserID), zap.Error(err))
	}
	if ev.ChatID != ev.FromUserID {
		if _, err := h.chats.EnsureChat(ctx, ev.ChatID, ev.ChatTitle); err != nil {
			h.logger.Warn("ensure chat failed", zap.Int64("chat_id", ev.ChatID), zap.Error(err))
		}
	}
	if banned, err := h.users.IsBanned(ctx, ev.FromUserID); err == nil && banned {
		return nil
	}

	if strings.HasPrefix(ev.Text, "/") {
		return h.handleCommand(ctx, ev)
	}

	active, err := h.gate.IsActive(ctx, ev.FromUserID)
	if err != nil {
		return fmt.Errorf("premium check failed: %w", err)
	}
	if !active {
		_, err := h.messenger.SendMessage(ctx, ev.ChatID, msgPremiumRequired)
		return err
	}

	res := h.engine.Search(ctx, ev.Text, h.pageSize, 0, "", model.TierAll)
	if len(res.Files) == 0 {
		_, err := h.messenger.SendMessage(ctx, ev.ChatID, msgNotFound)
		return err
	}

	key := session.Key(ev.ChatID, ev.MessageID)
	if err := h.sessions.Put(ctx, key, session.State{Query: ev.Text, Tier: model.TierAll}); err != nil {
		return fmt.Errorf("store session failed: %w", err)
	}

	rows := ResultKeyboard(res, model.TierAll, ev.FromUserID, key, 0, h.pageSize)
	_, err = h.messenger.SendMessageWithButtons(ctx, ev.ChatID, h.header(ev.Text, res), rows)
	return err
}

func (h *Handler) handleCommand(ctx context.Context, ev TextEvent) error {
	cmd := strings.Fields(ev.Text)[0]
	switch cmd {
	case "/start":
		_, err := h.messenger.SendMessage(ctx, ev.ChatID,
			"Hi! Send me a movie or series name and I will look it up for you.")
		return err
	case "/plan":
		return h.handlePlan(ctx, ev)
	case "/trial":
		return h.handleTrial(ctx, ev)
	default:
		// Unknown commands are somebody else's business.
		return nil
	}
}

func (h *Handler) handlePlan(ctx context.Context, ev TextEvent) error {
	rec, err := h.plans.Plan(ctx, ev.FromUserID)
	if err != nil {
		return fmt.Errorf("load plan failed: %w", err)
	}

	var text string
	switch {
	case rec.Premium && rec.Expire != nil:
		text = fmt.Sprintf("Your %s plan is active.\nTime left: %s",
			rec.Plan, format.HumanDuration(time.Until(*rec.Expire)))
	case rec.Premium:
		text = fmt.Sprintf("Your %s plan is active and does not expire.", rec.Plan)
	default:
		text = "You have no active plan.\nUse /trial for a free 1 hour trial."
	}
	_, err = h.messenger.SendMessage(ctx, ev.ChatID, text)
	return err
}

func (h *Handler) handleTrial(ctx context.Context, ev TextEvent) error {
	rec, err := h.plans.ActivateTrial(ctx, ev.FromUserID)
	if err != nil {
		var text string
		switch {
		case errors.Is(err, app.ErrTrialUsed):
			text = "You have already used your free trial.\nUse /plan to see your subscription."
		case errors.Is(err, app.ErrTrialDisabled), errors.Is(err, app.ErrFeatureDisabled):
			text = "The free trial is not available right now."
		default:
			return fmt.Errorf("activate trial failed: %w", err)
		}
		_, sendErr := h.messenger.SendMessage(ctx, ev.ChatID, text)
		return sendErr
	}

	_, err = h.messenger.SendMessage(ctx, ev.ChatID, fmt.Sprintf(
		"Trial activated! You have premium access until %s.",
		rec.Expire.Format("2006-01-02 15:04:05")))
	return err
}

// HandleMedia indexes a media post from a source channel into the primary
// tier. Duplicates are quietly skipped.
func (h *Handler) HandleMedia(ctx context.Context, ev MediaEvent) error {
	if ev.FileID == "" || ev.FileName == "" {
		return nil
	}

	rec := &model.FileRecord{
		ID:       ev.FileID,
		FileName: ev.FileName,
		Caption:  ev.Caption,
		FileSize: ev.FileSize,
	}
	status, err := h.indexer.Save(ctx, rec, model.TierPrimary)
	if err != nil {
		return fmt.Errorf("index media failed: %w", err)
	}
	if status == repository.StatusSaved {
		h.logger.Info("indexed file",
			zap.String("file_id", rec.ID),
			zap.String("file_name", rec.FileName))
	}
	return nil
}

// HandleCallback dispatches an inline button tap.
func (h *Handler) HandleCallback(ctx context.Context, ev CallbackEvent) error {
	if id, ok := ParseFileCallback(ev.Data); ok {
		return h.handleFile(ctx, ev, id)
	}

	cb, err := ParseNavCallback(ev.Data)
	if err != nil {
		return h.messenger.AnswerCallback(ctx, ev.ID, "", false)
	}

	switch cb.Action {
	case ActionPages:
		return h.messenger.AnswerCallback(ctx, ev.ID, "", false)
	case ActionClose:
		if err := h.messenger.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
			h.logger.Warn("delete message failed", zap.Error(err))
		}
		return h.messenger.AnswerCallback(ctx, ev.ID, "", false)
	}

	// Navigation is private to the user who searched.
	if cb.RequesterID != ev.FromUserID {
		return h.messenger.AnswerCallback(ctx, ev.ID, msgNotForYou, false)
	}

	st, found, err := h.sessions.Get(ctx, cb.SessionKey)
	if err != nil {
		return fmt.Errorf("load session failed: %w", err)
	}
	if !found {
		return h.messenger.AnswerCallback(ctx, ev.ID, msgSearchExpired, true)
	}

	offset := cb.Offset
	tier := st.Tier
	if cb.Action == ActionTier {
		offset = 0
		tier = cb.Tier
		st.Tier = tier
		if err := h.sessions.Put(ctx, cb.SessionKey, st); err != nil {
			return fmt.Errorf("store session failed: %w", err)
		}
	}

	res := h.engine.Search(ctx, st.Query, h.pageSize, offset, "", tier)
	rows := ResultKeyboard(res, tier, ev.FromUserID, cb.SessionKey, offset, h.pageSize)
	if err := h.messenger.EditMessage(ctx, ev.ChatID, ev.MessageID, h.header(st.Query, res), rows); err != nil {
		h.logger.Warn("edit message failed", zap.Error(err))
	}
	return h.messenger.AnswerCallback(ctx, ev.ID, "", false)
}

func (h *Handler) handleFile(ctx context.Context, ev CallbackEvent, id string) error {
	active, err := h.gate.IsActive(ctx, ev.FromUserID)
	if err != nil {
		return fmt.Errorf("premium check failed: %w", err)
	}
	if !active {
		return h.messenger.AnswerCallback(ctx, ev.ID, msgPremiumRequired, true)
	}

	rec, err := h.files.Details(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve file failed: %w", err)
	}
	if rec == nil {
		return h.messenger.AnswerCallback(ctx, ev.ID, msgFileGone, true)
	}

	caption := fmt.Sprintf("%s\n%s", rec.FileName, rec.Caption)
	if err := h.messenger.SendFile(ctx, ev.ChatID, rec.ID, caption); err != nil {
		h.logger.Warn("send file failed", zap.String("file_id", id), zap.Error(err))
		return h.messenger.AnswerCallback(ctx, ev.ID, "Delivery failed, please try again.", true)
	}
	return h.messenger.AnswerCallback(ctx, ev.ID, "", false)
}

func (h *Handler) header(query string, res search.Result) string {
	return fmt.Sprintf("Results for %q (%d found)", query, res.Total)
}
