package model

import "time"

// Chat is a group chat the bot has been added to.
type Chat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string    `gorm:"size:256" json:"title"`
	Disabled  bool      `gorm:"not null;default:false" json:"disabled"`
	Reason    string    `gorm:"size:256" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
