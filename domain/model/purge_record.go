package model

import "time"

// PurgeRecord is the audit row for one deleted message.
type PurgeRecord struct {
	ID          uint   `gorm:"primary_key"`
	ChannelID   string `gorm:"type:varchar(50)"`
	ChannelName string `gorm:"type:varchar(80)"`
	Timestamp   string `gorm:"type:varchar(20)"` // Slack ts of the deleted message
	MaxAgeDays  int
	PurgedAt    time.Time
	CreatedAt   time.Time
}
