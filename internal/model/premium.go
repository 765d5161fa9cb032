package model

import "time"

// PremiumRecord is the per-user subscription state. Expire == nil means the
// plan has no deadline (legacy/unlimited grants); the trial flag is one-way.
type PremiumRecord struct {
	UserID      int64      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Premium     bool       `gorm:"not null;default:false" json:"premium"`
	Plan        string     `gorm:"size:64" json:"plan"`
	Expire      *time.Time `json:"expire,omitempty"`
	Trial       bool       `gorm:"not null;default:false" json:"trial"`
	Reminded24h bool       `gorm:"column:reminded_24h;not null;default:false" json:"reminded_24h"`
	Reminded6h  bool       `gorm:"column:reminded_6h;not null;default:false" json:"reminded_6h"`
	Reminded1h  bool       `gorm:"column:reminded_1h;not null;default:false" json:"reminded_1h"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClearPlan resets the record to the no-plan state, keeping the trial flag so
// the one-time trial cannot be reused.
func (p *PremiumRecord) ClearPlan() {
	p.Premium = false
	p.Plan = ""
	p.Expire = nil
	p.Reminded24h = false
	p.Reminded6h = false
	p.Reminded1h = false
}
