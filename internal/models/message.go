package models

import "time"

// Message is a direct message between two profiles.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Content     string    `db:"content" json:"content"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageDetail joins a message with counterpart display names.
type MessageDetail struct {
	Message
	SenderName    string `db:"sender_name" json:"sender_name"`
	RecipientName string `db:"recipient_name" json:"recipient_name"`
}

// MessageBox selects which side of the conversation to list.
type MessageBox string

const (
	MessageBoxInbox MessageBox = "inbox"
	MessageBoxSent  MessageBox = "sent"
)

// MessageStats summarises a user's messages.
type MessageStats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
	Sent   int `json:"sent"`
}
