package model

import "time"

type Message struct {
	ID         int64     `json:"id"`
	MatchID    int64     `json:"match_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	IsRead     bool      `json:"is_read"`
}
