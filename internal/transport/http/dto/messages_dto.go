package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	ID         int64     `json:"id"`
	MatchID    int64     `json:"match_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	IsRead     bool      `json:"is_read"`
}

type MessagesResponse struct {
	Items []MessageResponse `json:"items"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}
