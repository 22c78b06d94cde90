package domain

import "time"

// Message is one row of an imported chat export
type Message struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SentAt   time.Time `gorm:"not null;index:idx_messages_sent_at" json:"date"`
	UserName string    `gorm:"type:varchar(100);not null;index:idx_messages_user_name" json:"user"`
	Text     string    `gorm:"column:content;type:text;not null" json:"message"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}
