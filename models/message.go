package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents one entry in an order's conversation thread. Rows are
// append-only; display order is the message timestamp, not insertion order,
// so concurrent sends from admin and customer are both preserved.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Sender    string         `gorm:"not null" json:"sender"`         // "admin" or "customer"
	Text      string         `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
