package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"autofilter-bot/internal/model"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrFeatureDisabled = errors.New("premium feature is disabled")
	ErrTrialDisabled   = errors.New("trial feature is disabled")
	ErrTrialUsed       = errors.New("trial already used")
	ErrNotPremium      = errors.New("user has no premium plan")
)

// PlanStore is the persistence contract for subscription records.
type PlanStore interface {
	GetPlan(ctx context.Context, userID int64) (*model.PremiumRecord, error)
	UpdatePlan(ctx context.Context, rec *model.PremiumRecord) error
	ListPremium(ctx context.Context) ([]model.PremiumRecord, error)
	CountPremium(ctx context.Context) (int64, error)
}

// Notifier delivers a text notice to a user. Failures are the caller's to
// swallow: a blocked bot or deleted account never aborts a batch.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string) error
}

// PremiumService is the subscription gate: grant/revoke/trial mutations, the
// activity check used before every search and file delivery, and the sweep
// that expires stale plans and sends reminders.
type PremiumService struct {
	plans    PlanStore
	notifier Notifier
	logger   *zap.Logger

	enabled      bool
	admins       map[int64]struct{}
	trialEnabled atomic.Bool

	now func() time.Time
}

func NewPremiumService(plans PlanStore, notifier Notifier, logger *zap.Logger, enabled bool, adminIDs []int64, trialEnabled bool) *PremiumService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	s := &PremiumService{
		plans:    plans,
		notifier: notifier,
		logger:   logger,
		enabled:  enabled,
		admins:   admins,
		now:      time.Now,
	}
	s.trialEnabled.Store(trialEnabled)
	return s
}

// IsAdmin reports whether the user is on the configured admin allowlist.
func (s *PremiumService) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

func (s *PremiumService) Enabled() bool { return s.enabled }

func (s *PremiumService) TrialEnabled() bool { return s.trialEnabled.Load() }

func (s *PremiumService) SetTrialEnabled(on bool) { s.trialEnabled.Store(on) }

// IsActive reports whether the user may search and receive files. Admins and
// a globally disabled gate pass unconditionally. The check is also the lazy
// expiry path: observing a past expiry flips the record and notifies the
// user right here.
func (s *PremiumService) IsActive(ctx context.Context, userID int64) (bool, error) {
	if !s.enabled {
		return true, nil
	}
	if s.IsAdmin(userID) {
		return true, nil
	}

	rec, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return false, err
	}
	if !rec.Premium {
		return false, nil
	}
	if rec.Expire == nil {
		return true, nil
	}
	if rec.Expire.Before(s.now()) {
		s.expireRecord(ctx, rec)
		return false, nil
	}
	return true, nil
}

// Grant activates or extends a plan. Repeat grants reset the expiry forward
// and re-arm the reminder flags.
func (s *PremiumService) Grant(ctx context.Context, userID int64, days int) (*model.PremiumRecord, error) {
	if !s.enabled {
		return nil, ErrFeatureDisabled
	}
	if days <= 0 {
		return nil, ErrInvalidInput
	}

	rec, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	expire := s.now().Add(time.Duration(days) * 24 * time.Hour)
	rec.Premium = true
	rec.Plan = fmt.Sprintf("%d days", days)
	rec.Expire = &expire
	rec.Reminded24h = false
	rec.Reminded6h = false
	rec.Reminded1h = false
	if err := s.plans.UpdatePlan(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("premium granted",
		zap.Int64("user_id", userID),
		zap.String("plan", rec.Plan),
		zap.Time("expire", expire))
	s.notify(ctx, userID, fmt.Sprintf(
		"Congratulations! You are now a premium user.\nPlan: %s\nExpires: %s",
		rec.Plan, expire.Format("2006-01-02 15:04:05")))
	return rec, nil
}

// Revoke clears a plan. The trial flag survives so the one-time trial stays
// used up.
func (s *PremiumService) Revoke(ctx context.Context, userID int64) error {
	if !s.enabled {
		return ErrFeatureDisabled
	}

	rec, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return err
	}
	if !rec.Premium {
		return ErrNotPremium
	}

	oldPlan := rec.Plan
	rec.ClearPlan()
	if err := s.plans.UpdatePlan(ctx, rec); err != nil {
		return err
	}

	s.logger.Info("premium revoked",
		zap.Int64("user_id", userID),
		zap.String("previous_plan", oldPlan))
	s.notify(ctx, userID,
		"Your premium subscription has been removed by admin.\nUse /plan to purchase a new subscription.")
	return nil
}

// ActivateTrial grants exactly one hour, once per user ever.
func (s *PremiumService) ActivateTrial(ctx context.Context, userID int64) (*model.PremiumRecord, error) {
	if !s.enabled {
		return nil, ErrFeatureDisabled
	}
	if !s.trialEnabled.Load() {
		return nil, ErrTrialDisabled
	}

	rec, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.Trial {
		return nil, ErrTrialUsed
	}

	expire := s.now().Add(time.Hour)
	rec.Premium = true
	rec.Trial = true
	rec.Plan = "1 hour trial"
	rec.Expire = &expire
	rec.Reminded24h = false
	rec.Reminded6h = false
	rec.Reminded1h = false
	if err := s.plans.UpdatePlan(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("trial activated", zap.Int64("user_id", userID), zap.Time("expire", expire))
	return rec, nil
}

// Plan returns the current record (zero-value for users without one).
func (s *PremiumService) Plan(ctx context.Context, userID int64) (*model.PremiumRecord, error) {
	return s.plans.GetPlan(ctx, userID)
}

func (s *PremiumService) ListPremium(ctx context.Context) ([]model.PremiumRecord, error) {
	return s.plans.ListPremium(ctx)
}

func (s *PremiumService) CountPremium(ctx context.Context) (int64, error) {
	return s.plans.CountPremium(ctx)
}

// SweepOnce runs one expiry-and-reminder pass over every premium-flagged
// user. An expired user is flipped and notified, then skipped for reminders
// this cycle. Otherwise at most one of the 24h/6h/1h one-shot reminders
// fires, each within a +/-30 minute window around its mark.
func (s *PremiumService) SweepOnce(ctx context.Context) error {
	recs, err := s.plans.ListPremium(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for i := range recs {
		rec := recs[i]
		if !rec.Premium || rec.Expire == nil {
			continue
		}

		left := rec.Expire.Sub(now)
		if left <= 0 {
			s.expireRecord(ctx, &rec)
			continue
		}

		hoursLeft := left.Hours()
		switch {
		case hoursLeft >= 23.5 && hoursLeft <= 24.5 && !rec.Reminded24h:
			rec.Reminded24h = true
			s.remind(ctx, &rec, "Your premium %s plan will expire in 24 hours.")
		case hoursLeft >= 5.5 && hoursLeft <= 6.5 && !rec.Reminded6h:
			rec.Reminded6h = true
			s.remind(ctx, &rec, "Your premium %s plan will expire in 6 hours.")
		case hoursLeft >= 0.5 && hoursLeft <= 1.5 && !rec.Reminded1h:
			rec.Reminded1h = true
			s.remind(ctx, &rec, "Your premium %s plan will expire in 1 hour!")
		}
	}
	return nil
}

func (s *PremiumService) remind(ctx context.Context, rec *model.PremiumRecord, format string) {
	if err := s.plans.UpdatePlan(ctx, rec); err != nil {
		s.logger.Error("persist reminder flag failed",
			zap.Int64("user_id", rec.UserID), zap.Error(err))
		return
	}
	s.notify(ctx, rec.UserID, fmt.Sprintf(format, rec.Plan)+
		fmt.Sprintf("\nExpiry time: %s\nUse /plan to renew your subscription.",
			rec.Expire.Format("2006-01-02 15:04:05")))
}

func (s *PremiumService) expireRecord(ctx context.Context, rec *model.PremiumRecord) {
	plan := rec.Plan
	rec.ClearPlan()
	if err := s.plans.UpdatePlan(ctx, rec); err != nil {
		s.logger.Error("expire plan failed",
			zap.Int64("user_id", rec.UserID), zap.Error(err))
		return
	}

	s.logger.Info("premium expired",
		zap.Int64("user_id", rec.UserID),
		zap.String("plan", plan))
	s.notify(ctx, rec.UserID, fmt.Sprintf(
		"Your premium %s plan has expired.\nUse /plan to renew your subscription.", plan))
}

// notify swallows delivery errors: an unreachable user must not halt the
// calling operation.
func (s *PremiumService) notify(ctx context.Context, userID int64, text string) {
	if err := s.notifier.NotifyUser(ctx, userID, text); err != nil {
		s.logger.Warn("notify user failed",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
