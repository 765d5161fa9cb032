package model

import "time"

// User is a chat user seen by the bot, registered on first contact.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Banned    bool      `gorm:"not null;default:false" json:"banned"`
	BanReason string    `gorm:"size:256" json:"ban_reason"`
	CreatedAt time.Time `json:"created_at"`
}
